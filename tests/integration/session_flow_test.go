// Package integration exercises the orchestrator end to end: the real
// transport client against a fake annotation server, with the session,
// stores, views, and navigation wired the way the server assembles them.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelboard/backend/internal/domain/history"
	"github.com/labelboard/backend/internal/domain/session"
	"github.com/labelboard/backend/internal/domain/store"
	"github.com/labelboard/backend/internal/domain/view"
	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/types"
	"github.com/labelboard/backend/internal/transport"
)

// annotationServer is the fake remote API. It records action invocations so
// tests can inspect what went over the wire.
type annotationServer struct {
	mu      sync.Mutex
	actions []invocation
	*httptest.Server
}

type invocation struct {
	Query string
	Body  map[string]interface{}
}

func newAnnotationServer(t *testing.T) *annotationServer {
	t.Helper()
	srv := &annotationServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/project", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id": 1, "title": "Product Reviews", "labeling_configured": true, "task_count": 2,
		})
	})
	mux.HandleFunc("/api/dm/actions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			var decoded map[string]interface{}
			_ = json.Unmarshal(body, &decoded)
			srv.mu.Lock()
			srv.actions = append(srv.actions, invocation{Query: r.URL.RawQuery, Body: decoded})
			srv.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]interface{}{"processed": 2})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"actions": []interface{}{
				map[string]interface{}{"id": "delete_tasks", "title": "Delete tasks", "order": 1},
			},
		})
	})
	mux.HandleFunc("/api/dm/columns", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"columns": []interface{}{
				map[string]interface{}{"id": "id", "title": "ID", "target": "tasks", "type": "number"},
				map[string]interface{}{"id": "id", "title": "ID", "target": "annotations", "type": "number"},
			},
		})
	})
	mux.HandleFunc("/api/dm/views", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"views": []interface{}{
				map[string]interface{}{"id": 1, "title": "Default", "target": "tasks", "ordering": []interface{}{"-id"}},
			},
		})
	})
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
		if id != "7" {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "task not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id": 7,
			"annotations": []interface{}{
				map[string]interface{}{"id": 3, "task_id": 7},
			},
		})
	})

	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *annotationServer) invocations() []invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]invocation, len(s.actions))
	copy(out, s.actions)
	return out
}

type stack struct {
	backend *annotationServer
	bus     *events.Bus
	views   *view.Hub
	stores  *store.Registry
	nav     *history.Memory
	sess    *session.Session
}

func newStack(t *testing.T) *stack {
	t.Helper()
	backend := newAnnotationServer(t)

	cfg := transport.DefaultConfig(backend.URL)
	cfg.RetryMax = 0
	remote := transport.New(cfg)

	bus := events.NewBus()
	notifier := events.NewNotifier(bus)
	views := view.NewHub(bus)
	stores := store.NewRegistry()
	nav := history.NewMemory()

	sess := session.New(remote, notifier, views, stores, nav, bus, time.Hour)
	t.Cleanup(sess.Close)
	require.NoError(t, sess.Load(context.Background()))

	return &stack{backend: backend, bus: bus, views: views, stores: stores, nav: nav, sess: sess}
}

func TestFullSessionFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// Load provisioned everything.
	project := s.sess.Project()
	require.NotNil(t, project)
	assert.Equal(t, "Product Reviews", project.Title)
	assert.Equal(t, []string{"tasksStore", "annotationsStore"}, s.stores.Names())
	require.Len(t, s.sess.Actions(), 1)
	current := s.views.Current()
	require.NotNil(t, current)
	assert.Equal(t, 1, current.ID())

	// Pick a task, refine to an annotation.
	require.NoError(t, s.sess.StartLabeling(ctx, &types.Item{ID: 7}, session.StartOptions{}))
	task, annotation := s.sess.Selected()
	require.NotNil(t, task)
	assert.Equal(t, 7, *task)
	assert.Nil(t, annotation)

	annID := 3
	require.NoError(t, s.sess.StartLabeling(ctx, &types.Item{ID: 3, TaskID: task}, session.StartOptions{}))
	_, annotation = s.sess.Selected()
	require.NotNil(t, annotation)
	assert.Equal(t, annID, *annotation)

	// Leave labeling, then navigate back into it.
	s.sess.CloseLabeling(ctx)
	task, _ = s.sess.Selected()
	assert.Nil(t, task)

	require.True(t, s.nav.Back())
	task, annotation = s.sess.Selected()
	require.NotNil(t, task)
	assert.Equal(t, 7, *task)
	require.NotNil(t, annotation)
	assert.Equal(t, 3, *annotation)
}

func TestBulkActionOverTheWire(t *testing.T) {
	s := newStack(t)

	v := s.views.Current()
	require.NotNil(t, v)
	v.SelectRow(5)
	v.SelectRow(9)

	result, err := s.sess.InvokeAction(context.Background(), "delete_tasks", session.InvokeOptions{})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.False(t, v.Locked())

	sent := s.backend.invocations()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Query, "id=delete_tasks")
	assert.Contains(t, sent[0].Query, "tabID=1")
	assert.Equal(t, []interface{}{"-id"}, sent[0].Body["ordering"])

	selected, ok := sent[0].Body["selectedItems"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, selected["all"])
	assert.Equal(t, []interface{}{float64(5), float64(9)}, selected["included"])

	// The post-action reload cleared the explicit selection.
	assert.True(t, v.Snapshot().All)
}

func TestMissingTaskIsSilent(t *testing.T) {
	s := newStack(t)

	var notified []types.Notification
	var mu sync.Mutex
	sub := s.bus.Subscribe(func(e events.Event) {
		if e.Type == events.TypeNotification {
			mu.Lock()
			notified = append(notified, e.Payload.(types.Notification))
			mu.Unlock()
		}
	})
	defer sub.Close()

	require.NoError(t, s.sess.StartLabeling(context.Background(), &types.Item{ID: 99}, session.StartOptions{}))

	mu.Lock()
	assert.Empty(t, notified)
	mu.Unlock()
	assert.Empty(t, s.sess.LastErrors())
}
