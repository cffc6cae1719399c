// Package envelope defines the uniform result shape every remote operation
// resolves to. Callers classify outcomes from the envelope instead of
// handling transport errors: only a genuine transport fault surfaces as a
// Go error alongside a nil Result.
package envelope

import (
	"net/http"

	"github.com/bytedance/sonic"
)

// Result is the `{error?, status?, response?}` contract. Error is empty on
// success; Status carries the HTTP status when the server answered at all;
// Response holds the decoded body either way (failure bodies often carry a
// human-readable detail field).
type Result struct {
	Error    string                 `json:"error,omitempty"`
	Status   int                    `json:"status,omitempty"`
	Response map[string]interface{} `json:"response,omitempty"`

	raw []byte
}

// OK builds a success result around a decoded response body
func OK(status int, response map[string]interface{}) *Result {
	return &Result{Status: status, Response: response}
}

// Fail builds a failure result. The error string is required; response may
// be nil when the server sent nothing usable.
func Fail(status int, errMsg string, response map[string]interface{}) *Result {
	return &Result{Error: errMsg, Status: status, Response: response}
}

// WithRaw attaches the undecoded response bytes so Decode can produce typed
// values without a second map conversion.
func (r *Result) WithRaw(body []byte) *Result {
	r.raw = body
	return r
}

// Failed reports whether the call was a semantic failure
func (r *Result) Failed() bool {
	return r.Error != ""
}

// NotFound reports the benign not-found outcome: callers decide locally how
// to react, nothing is recorded or surfaced.
func (r *Result) NotFound() bool {
	return r.Status == http.StatusNotFound
}

// Detail returns the response's detail field when the server provided one
func (r *Result) Detail() string {
	if r.Response == nil {
		return ""
	}
	detail, _ := r.Response["detail"].(string)
	return detail
}

// Decode unmarshals the response into a typed value. It prefers the raw
// bytes captured at the transport boundary and falls back to re-encoding
// the response map for results built by hand (tests, fakes).
func (r *Result) Decode(v interface{}) error {
	body := r.raw
	if body == nil {
		b, err := sonic.Marshal(r.Response)
		if err != nil {
			return err
		}
		body = b
	}
	return sonic.Unmarshal(body, v)
}
