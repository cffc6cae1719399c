// Package session implements the orchestration core: the mode and selection
// state machine, the uniform API call wrapper with per-operation error
// bookkeeping, the project metadata polling loop, the bulk action pipeline,
// and the initial load sequence.
//
// The Session is created once at server start and lives for the process
// lifetime. Remote calls run without holding the session lock, so handlers
// interleave between suspension points exactly as the guards assume: the
// poll task never overlaps itself, a store's in-flight load blocks a second
// selection change, and the view lock serializes bulk actions.
package session
