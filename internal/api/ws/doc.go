// Package ws streams session events and notifications to UI clients over a
// websocket, and routes confirmation answers back to the pending prompts.
package ws
