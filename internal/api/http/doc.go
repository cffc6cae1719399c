// Package http is the inbound API surface: session state, labeling flow,
// bulk actions, view selection, and navigation endpoints for the UI.
package http
