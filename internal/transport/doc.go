// Package transport implements the outbound client for the annotation API.
//
// Every remote operation the orchestrator consumes is addressed by name
// ("project", "actions", "invokeAction", ...) and resolves to the uniform
// result envelope. Transport faults (connection refused, timeout, circuit
// open) are the only outcomes returned as Go errors; any response the server
// actually produced, including failures, comes back inside the envelope
// for the caller to classify.
//
// The client stacks resty over a retryable HTTP transport, with a
// client-side rate limiter and a circuit breaker in front.
package transport
