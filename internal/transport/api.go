package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/shared/envelope"
)

// route maps a named operation onto the wire
type route struct {
	method string
	path   string
}

// Operation names are the contract between the session's API call wrapper
// and this client; the wrapper keys its error bookkeeping on them.
var routes = map[string]route{
	"project":      {http.MethodGet, "/api/project"},
	"actions":      {http.MethodGet, "/api/dm/actions"},
	"invokeAction": {http.MethodPost, "/api/dm/actions"},
	"columns":      {http.MethodGet, "/api/dm/columns"},
	"views":        {http.MethodGet, "/api/dm/views"},
	"task":         {http.MethodGet, "/api/tasks/{id}"},
}

// Call invokes a named remote operation. Params become path or query
// parameters depending on the route; body is JSON-encoded for mutating
// methods. The returned envelope is non-nil whenever the server answered.
func (c *Client) Call(ctx context.Context, op string, params map[string]string, body interface{}) (*envelope.Result, error) {
	rt, ok := routes[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", op)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req := c.resty.R().SetContext(ctx)
	path := rt.path
	for key, val := range params {
		placeholder := "{" + key + "}"
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, val)
		} else {
			req.SetQueryParam(key, val)
		}
	}
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", op, err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(encoded)
	}

	start := time.Now()
	resp, err := c.execute(func() (*resty.Response, error) {
		return req.Execute(rt.method, path)
	})
	if err != nil {
		c.observe(op, "fault", time.Since(start))
		c.logger.Warn("remote call fault",
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil, err
	}

	result := classify(resp.StatusCode(), resp.Body())
	outcome := "ok"
	if result.Failed() {
		outcome = "error"
	}
	c.observe(op, outcome, time.Since(start))
	c.logger.Debug("remote call",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// classify folds an HTTP exchange into the result envelope
func classify(status int, body []byte) *envelope.Result {
	var decoded map[string]interface{}
	if len(body) > 0 {
		// Non-JSON bodies stay opaque; the envelope still carries status.
		_ = sonic.Unmarshal(body, &decoded)
	}

	if status < http.StatusBadRequest {
		return envelope.OK(status, decoded).WithRaw(body)
	}

	errMsg := http.StatusText(status)
	if decoded != nil {
		if m, ok := decoded["error"].(string); ok && m != "" {
			errMsg = m
		}
	}
	return envelope.Fail(status, errMsg, decoded).WithRaw(body)
}

func (c *Client) observe(op, outcome string, took time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordRemoteCall(op, outcome, took)
	}
}
