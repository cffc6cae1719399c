package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/types"
)

func taskView(id int) types.ViewDef {
	return types.ViewDef{ID: id, Title: "Default", Target: types.TargetTasks, Ordering: []string{"-id"}}
}

func TestSnapshotDefaultsToAllForm(t *testing.T) {
	v := New(taskView(1))

	snap := v.Snapshot()
	assert.True(t, snap.All)
	assert.Empty(t, snap.Excluded)
}

func TestSnapshotExplicitSelection(t *testing.T) {
	v := New(taskView(1))
	v.SelectRow(7)
	v.SelectRow(3)

	snap := v.Snapshot()
	assert.False(t, snap.All)
	assert.Equal(t, []int{3, 7}, snap.Included)
}

func TestDeselectInAllModeExcludes(t *testing.T) {
	v := New(taskView(1))
	v.DeselectRow(5)

	snap := v.Snapshot()
	assert.True(t, snap.All)
	assert.Equal(t, []int{5}, snap.Excluded)
}

func TestDeselectInExplicitModeShrinks(t *testing.T) {
	v := New(taskView(1))
	v.SelectRow(7)
	v.SelectRow(3)
	v.DeselectRow(7)

	snap := v.Snapshot()
	assert.False(t, snap.All)
	assert.Equal(t, []int{3}, snap.Included)
}

func TestClearSelectionRestoresAllForm(t *testing.T) {
	v := New(taskView(1))
	v.SelectRow(7)
	v.DeselectRow(9)
	v.ClearSelection()

	snap := v.Snapshot()
	assert.True(t, snap.All)
	assert.Empty(t, snap.Excluded)
}

func TestUnlockWithoutLockIsNoOp(t *testing.T) {
	v := New(taskView(1))

	v.Unlock()
	assert.False(t, v.Locked())

	v.Lock()
	assert.True(t, v.Locked())
	v.Unlock()
	v.Unlock()
	assert.False(t, v.Locked())
}

func TestReloadHook(t *testing.T) {
	v := New(taskView(1))
	require.NoError(t, v.Reload(context.Background())) // no hook yet

	var calls int
	v.OnReload(func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, v.Reload(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestFiltersDefaultConjunction(t *testing.T) {
	v := New(taskView(1))
	assert.Equal(t, types.FilterConjunctionAnd, v.Filters().Conjunction)

	v.SetFilters(types.Filters{Items: []types.Filter{{Column: "id", Operator: "gt", Value: 5}}})
	f := v.Filters()
	assert.Equal(t, types.FilterConjunctionAnd, f.Conjunction)
	assert.Len(t, f.Items, 1)
}

func TestHubApplyAndCurrent(t *testing.T) {
	hub := NewHub(events.NewBus())
	assert.Nil(t, hub.Current())

	hub.Apply([]types.ViewDef{taskView(1), {ID: 2, Target: types.TargetAnnotations}})
	require.NotNil(t, hub.Current())
	assert.Equal(t, 1, hub.Current().ID())
	assert.Len(t, hub.List(), 2)
}

func TestHubApplyMergesExisting(t *testing.T) {
	hub := NewHub(events.NewBus())
	hub.Apply([]types.ViewDef{taskView(1)})

	v, _ := hub.Get(1)
	v.SelectRow(7)

	hub.Apply([]types.ViewDef{{ID: 1, Target: types.TargetTasks, Ordering: []string{"created"}}})
	merged, _ := hub.Get(1)
	assert.Equal(t, []string{"created"}, merged.Ordering())
	// Selection survives a definition refresh.
	assert.Equal(t, []int{7}, merged.Snapshot().Included)
	assert.Len(t, hub.List(), 1)
}

func TestHubSetCurrentPublishes(t *testing.T) {
	bus := events.NewBus()
	var changes []int
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.TypeViewChanged {
			changes = append(changes, e.Payload.(int))
		}
	})

	hub := NewHub(bus)
	hub.Apply([]types.ViewDef{taskView(1), {ID: 2, Target: types.TargetTasks}})

	assert.Error(t, hub.SetCurrent(99))
	require.NoError(t, hub.SetCurrent(2))
	require.NoError(t, hub.SetCurrent(2)) // unchanged, no event
	assert.Equal(t, []int{2}, changes)
}
