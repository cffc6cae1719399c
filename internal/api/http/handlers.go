package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/domain/history"
	"github.com/labelboard/backend/internal/domain/session"
	"github.com/labelboard/backend/internal/domain/view"
	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/shared/types"
)

// Handlers exposes the orchestrator over HTTP
type Handlers struct {
	session *session.Session
	views   *view.Hub
	nav     *history.Memory
	logger  *logging.Logger
}

// NewHandlers creates the handler set
func NewHandlers(sess *session.Session, views *view.Hub, nav *history.Memory, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{session: sess, views: views, nav: nav, logger: logger}
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "labelboard-backend",
		"status":  "running",
	})
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GetState returns the session snapshot
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.State())
}

// GetProject returns the cached project metadata
func (h *Handlers) GetProject(c *gin.Context) {
	project := h.session.Project()
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not loaded"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetLastErrors returns the per-operation error bookkeeping
func (h *Handlers) GetLastErrors(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.LastErrors())
}

// ListActions returns the available bulk actions
func (h *Handlers) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": h.session.Actions()})
}

// invokeRequest is the action invocation body
type invokeRequest struct {
	Reload *bool                  `json:"reload"`
	Extra  map[string]interface{} `json:"extra"`
}

// InvokeAction runs a bulk action against the current view
func (h *Handlers) InvokeAction(c *gin.Context) {
	actionID := c.Param("id")

	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	opts := session.InvokeOptions{Extra: req.Extra}
	if req.Reload != nil && !*req.Reload {
		opts.SkipReload = true
	}

	result, err := h.session.InvokeAction(c.Request.Context(), actionID, opts)
	if err != nil {
		h.logger.Error("action invocation fault", zap.String("action", actionID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// modeRequest carries a mode transition
type modeRequest struct {
	Mode types.Mode `json:"mode" binding:"required"`
}

// SetMode transitions the session mode
func (h *Handlers) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode required"})
		return
	}
	if !req.Mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}
	h.session.SetMode(req.Mode)
	c.JSON(http.StatusOK, h.session.State())
}

// startLabelingRequest optionally names the picked item
type startLabelingRequest struct {
	Item *types.Item `json:"item"`
}

// StartLabeling enters labeling on an item (or label streaming without one)
func (h *Handlers) StartLabeling(c *gin.Context) {
	var req startLabelingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.session.StartLabeling(c.Request.Context(), req.Item, session.StartOptions{}); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.session.State())
}

// CloseLabeling leaves labeling and returns to browsing
func (h *Handlers) CloseLabeling(c *gin.Context) {
	h.session.CloseLabeling(c.Request.Context())
	c.JSON(http.StatusOK, h.session.State())
}

// selectTaskRequest addresses a task/annotation pair
type selectTaskRequest struct {
	TaskID       int  `json:"task_id" binding:"required"`
	AnnotationID *int `json:"annotation_id"`
}

// SelectTask selects a task (and optionally an annotation) directly
func (h *Handlers) SelectTask(c *gin.Context) {
	var req selectTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id required"})
		return
	}

	err := h.session.SetTask(c.Request.Context(), session.TaskSelection{
		TaskID:       req.TaskID,
		AnnotationID: req.AnnotationID,
		PushState:    true,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.session.State())
}

// ClearSelection unsets the task/annotation selection
func (h *Handlers) ClearSelection(c *gin.Context) {
	h.session.UnsetTask()
	c.JSON(http.StatusOK, h.session.State())
}

// viewSummary is the list projection of a view
type viewSummary struct {
	ID       int                     `json:"id"`
	Title    string                  `json:"title"`
	Target   types.Target            `json:"target"`
	Ordering []string                `json:"ordering"`
	Filters  types.Filters           `json:"filters"`
	Locked   bool                    `json:"locked"`
	Selected types.SelectionSnapshot `json:"selected"`
}

// ListViews returns all known views
func (h *Handlers) ListViews(c *gin.Context) {
	views := h.views.List()
	out := make([]viewSummary, 0, len(views))
	for _, v := range views {
		out = append(out, viewSummary{
			ID:       v.ID(),
			Title:    v.Title(),
			Target:   v.Target(),
			Ordering: v.Ordering(),
			Filters:  v.Filters(),
			Locked:   v.Locked(),
			Selected: v.Snapshot(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"views": out})
}

// SelectView switches the current view
func (h *Handlers) SelectView(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view id"})
		return
	}
	if err := h.session.SelectView(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.session.State())
}

// rowSelectionRequest toggles grid rows
type rowSelectionRequest struct {
	Select   []int `json:"select"`
	Deselect []int `json:"deselect"`
	Clear    bool  `json:"clear"`
}

// UpdateViewSelection mutates a view's row selection
func (h *Handlers) UpdateViewSelection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view id"})
		return
	}
	v, ok := h.views.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}

	var req rowSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if req.Clear {
		v.ClearSelection()
	}
	for _, rowID := range req.Select {
		v.SelectRow(rowID)
	}
	for _, rowID := range req.Deselect {
		v.DeselectRow(rowID)
	}
	c.JSON(http.StatusOK, gin.H{"selected": v.Snapshot()})
}

// GetNavigation returns the entry under the history cursor
func (h *Handlers) GetNavigation(c *gin.Context) {
	c.JSON(http.StatusOK, h.nav.Current())
}

// NavigateBack replays a back event into the synchronizer
func (h *Handlers) NavigateBack(c *gin.Context) {
	if !h.nav.Back() {
		c.JSON(http.StatusConflict, gin.H{"error": "no earlier entry"})
		return
	}
	c.JSON(http.StatusOK, h.session.State())
}

// NavigateForward replays a forward event into the synchronizer
func (h *Handlers) NavigateForward(c *gin.Context) {
	if !h.nav.Forward() {
		c.JSON(http.StatusConflict, gin.H{"error": "no later entry"})
		return
	}
	c.JSON(http.StatusOK, h.session.State())
}
