package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/shared/envelope"
	"github.com/labelboard/backend/internal/shared/types"
)

// failureMark is the generic marker recorded with an operational failure;
// the response detail carries the specifics.
const failureMark = "request failed"

// CallError is the bookkeeping entry for the most recent operational
// failure of one operation. It exists if and only if that operation's
// latest completed call failed (not 404, not success).
type CallError struct {
	Error    string                 `json:"error"`
	Response map[string]interface{} `json:"response,omitempty"`
	At       time.Time              `json:"at"`
}

// LastErrors returns a copy of the per-operation error map
func (s *Session) LastErrors() map[string]*CallError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*CallError, len(s.lastErrors))
	for op, ce := range s.lastErrors {
		copied := *ce
		out[op] = &copied
	}
	return out
}

// apiCall invokes a named remote operation and classifies the outcome.
// Success clears the operation's recorded error; 404 is silent and leaves
// the bookkeeping untouched; any other failure is recorded and raises a
// notification. The envelope is always returned to the caller; only a
// transport fault comes back as a Go error.
func (s *Session) apiCall(ctx context.Context, op string, params map[string]string, body interface{}) (*envelope.Result, error) {
	result, err := s.remote.Call(ctx, op, params, body)
	if err != nil {
		return nil, err
	}

	switch {
	case !result.Failed():
		s.clearError(op)

	case result.NotFound():
		// Benign: callers decide locally how to react to a 404.

	default:
		if result.Response != nil {
			s.recordError(op, &CallError{
				Error:    failureMark,
				Response: result.Response,
				At:       time.Now(),
			})
		}
		message := result.Detail()
		if message == "" {
			message = result.Error
		}
		s.logger.Warn("operation failed",
			zap.String("operation", op),
			zap.Int("status", result.Status),
			zap.String("message", message),
		)
		s.ui.Notify(types.Notification{
			Severity:  types.SeverityError,
			Operation: op,
			Message:   message,
		})
	}

	return result, nil
}

func (s *Session) recordError(op string, ce *CallError) {
	s.mu.Lock()
	s.lastErrors[op] = ce
	n := len(s.lastErrors)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetLastErrors(n)
	}
}

// clearError drops the recorded error on recovery; silent on purpose.
func (s *Session) clearError(op string) {
	s.mu.Lock()
	delete(s.lastErrors, op)
	n := len(s.lastErrors)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetLastErrors(n)
	}
}
