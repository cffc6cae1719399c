// Command server runs the labelboard backend: the review-session
// orchestrator and its HTTP/websocket API surface.
package main
