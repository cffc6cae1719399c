// Package history synchronizes the session's selection with navigation
// history entries.
//
// The browser history object of the original UI is abstracted behind the
// Navigator interface so the synchronizer is testable without a browser:
// Memory is the injectable implementation the HTTP surface drives with
// back/forward requests.
package history
