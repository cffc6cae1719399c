// Package store provides the per-target data stores and the registry that
// provisions them.
//
// Stores are never referenced directly by the session: they are created once
// from the column definitions the server declares, registered under a name
// derived from their target ("tasksStore", "annotationsStore"), and looked
// up by that name afterwards. Unknown targets are skipped silently; a
// constructor failure aborts the load sequence.
package store
