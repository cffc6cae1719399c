package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labelboard/backend/internal/shared/types"
)

// DefaultConfirmTimeout bounds how long a blocking confirmation waits for an
// answer before it is treated as declined.
const DefaultConfirmTimeout = 30 * time.Second

// ConfirmRequest is the payload published for a blocking confirmation. The
// UI answers through Notifier.Resolve with the request id.
type ConfirmRequest struct {
	ID           string             `json:"id"`
	Confirmation types.Confirmation `json:"confirmation"`
}

// Notifier bridges the session's user-facing side effects onto the bus.
// Notify publishes transient failure toasts; Confirm publishes a blocking
// prompt and waits for a decision (websocket clients answer via Resolve).
type Notifier struct {
	bus     *Bus
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan bool
}

// NewNotifier creates a bus-backed notifier
func NewNotifier(bus *Bus) *Notifier {
	return &Notifier{
		bus:     bus,
		timeout: DefaultConfirmTimeout,
		pending: make(map[string]chan bool),
	}
}

// WithTimeout overrides the confirmation timeout
func (n *Notifier) WithTimeout(d time.Duration) *Notifier {
	n.timeout = d
	return n
}

// Notify publishes a notification event
func (n *Notifier) Notify(note types.Notification) {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	n.bus.Publish(TypeNotification, note)
}

// Confirm publishes a confirmation request and blocks until it is resolved,
// the context ends, or the timeout elapses. Unanswered prompts decline.
func (n *Notifier) Confirm(ctx context.Context, c types.Confirmation) bool {
	id := uuid.New().String()
	ch := make(chan bool, 1)

	n.mu.Lock()
	n.pending[id] = ch
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		delete(n.pending, id)
		n.mu.Unlock()
	}()

	n.bus.Publish(TypeConfirmRequested, ConfirmRequest{ID: id, Confirmation: c})

	select {
	case accepted := <-ch:
		return accepted
	case <-ctx.Done():
		return false
	case <-time.After(n.timeout):
		return false
	}
}

// Resolve answers a pending confirmation. It reports whether the id matched
// an open prompt.
func (n *Notifier) Resolve(id string, accepted bool) bool {
	n.mu.Lock()
	ch, ok := n.pending[id]
	if ok {
		delete(n.pending, id)
	}
	n.mu.Unlock()

	if !ok {
		return false
	}
	ch <- accepted
	return true
}
