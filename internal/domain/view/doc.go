// Package view implements the saved-view collaborator: ordering, filters,
// row selection, and the cooperative lock that serializes bulk actions.
//
// The lock is a view-level flag, not a server-side lock: the UI disables
// action triggers while a view is locked, and unlocking an unlocked view is
// a guaranteed no-op. Views come from YAML presets (seeder) merged with the
// definitions the views() remote operation returns.
package view
