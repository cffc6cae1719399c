// Package types provides shared data structures for the labelboard backend.
//
// This package defines the core types used across the orchestration
// components, ensuring consistent shapes between the session state machine,
// the per-target data stores, the view subsystem, and the API surface.
//
// Core Types:
//   - Project: remote project metadata with the labeling-configured flag
//   - Action: server-defined bulk operation descriptor
//   - Column: column definition that drives store provisioning
//   - SelectionSnapshot: wire form of "which rows are selected"
//   - NavState: flat navigation record round-tripped through history
//   - Task, Annotation, Item: the reviewable entities
//
// State Management:
//   - Mode: session mode enum (browsing, labelstream)
//   - Target: closed enumeration of entity types
//   - SessionState: read-only snapshot served to UI clients
//
// Side-Effect Payloads:
//   - Notification: transient failure toast
//   - Confirmation: blocking setup prompt
package types
