package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelboard/backend/internal/shared/types"
)

func sampleFetcher(tasks map[int]*types.Task) Fetcher {
	return func(_ context.Context, id int) (*types.Task, error) {
		return tasks[id], nil
	}
}

func TestCreateDataStoresGroupsByTarget(t *testing.T) {
	cols := []types.Column{
		{ID: "id", Target: types.TargetTasks},
		{ID: "agree", Target: types.TargetAnnotations},
		{ID: "data", Target: types.TargetTasks},
	}

	r := NewRegistry()
	require.NoError(t, r.CreateDataStores(cols, sampleFetcher(nil)))

	assert.Equal(t, []string{"tasksStore", "annotationsStore"}, r.Names())

	tasks, ok := r.ForTarget(types.TargetTasks)
	require.True(t, ok)
	assert.Len(t, tasks.Columns(), 2)

	anns, ok := r.ForTarget(types.TargetAnnotations)
	require.True(t, ok)
	assert.Len(t, anns.Columns(), 1)
}

func TestCreateDataStoresSkipsUnknownTargets(t *testing.T) {
	cols := []types.Column{
		{ID: "id", Target: types.TargetTasks},
		{ID: "weird", Target: types.Target("predictions")},
	}

	r := NewRegistry()
	require.NoError(t, r.CreateDataStores(cols, sampleFetcher(nil)))
	assert.Equal(t, []string{"tasksStore"}, r.Names())

	_, ok := r.Get("predictionsStore")
	assert.False(t, ok)
}

func TestCreateDataStoresRejectsReprovisioning(t *testing.T) {
	cols := []types.Column{{ID: "id", Target: types.TargetTasks}}

	r := NewRegistry()
	require.NoError(t, r.CreateDataStores(cols, sampleFetcher(nil)))
	assert.Error(t, r.CreateDataStores(cols, sampleFetcher(nil)))
}

func TestCreateDataStoresConstructorFailurePropagates(t *testing.T) {
	cols := []types.Column{{ID: "id", Target: types.TargetTasks}}

	// A task store without a fetcher cannot be built.
	r := NewRegistry()
	assert.Error(t, r.CreateDataStores(cols, nil))
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()
	s, err := newAnnotationStore(nil, nil)
	require.NoError(t, err)

	assert.Error(t, r.Register("", s))
	require.NoError(t, r.Register("annotationsStore", s))
	assert.Error(t, r.Register("annotationsStore", s))
}

func TestTaskStoreLoadAndSelect(t *testing.T) {
	task := &types.Task{ID: 7, Annotations: []types.Annotation{{ID: 3, TaskID: 7}}}
	s, err := newTaskStore(nil, sampleFetcher(map[int]*types.Task{7: task}))
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background(), 7, true))

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 7, selected)

	row, ok := s.(*taskStore).Row(7)
	require.True(t, ok)
	assert.Len(t, row.Annotations, 1)

	s.Unset()
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestTaskStoreLoadWithoutSelect(t *testing.T) {
	task := &types.Task{ID: 7}
	s, err := newTaskStore(nil, sampleFetcher(map[int]*types.Task{7: task}))
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background(), 7, false))
	_, ok := s.Selected()
	assert.False(t, ok)
}

// A Load racing an in-flight one must return without fetching: the loading
// flag is the duplicate-selection guard the session relies on.
func TestTaskStoreLoadGuard(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var fetches int

	blocking := func(_ context.Context, id int) (*types.Task, error) {
		fetches++
		close(entered)
		<-release
		return &types.Task{ID: id}, nil
	}

	s, err := newTaskStore(nil, blocking)
	require.NoError(t, err)

	done := make(chan error)
	go func() { done <- s.Load(context.Background(), 7, true) }()

	<-entered
	assert.True(t, s.Loading())
	require.NoError(t, s.Load(context.Background(), 8, true)) // guarded no-op

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fetches)
	assert.False(t, s.Loading())

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 7, selected)
}

func TestAnnotationStoreIngest(t *testing.T) {
	s, err := newAnnotationStore(nil, nil)
	require.NoError(t, err)

	task := &types.Task{ID: 7, Annotations: []types.Annotation{
		{ID: 3, TaskID: 7},
		{ID: 4, TaskID: 7},
	}}
	s.(*annotationStore).Ingest(task)

	row, ok := s.(*annotationStore).Row(3)
	require.True(t, ok)
	assert.Equal(t, 7, row.TaskID)

	require.NoError(t, s.Load(context.Background(), 4, true))
	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 4, selected)

	s.Invalidate()
	_, ok = s.(*annotationStore).Row(3)
	assert.False(t, ok)
}
