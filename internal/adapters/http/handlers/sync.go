package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// SyncHandler exposes the sync orchestrator and scheduler.
type SyncHandler struct {
	sync   *app.SyncService
	events *EventHub
}

// NewSyncHandler creates a new sync handler. events may be nil, in which
// case the event stream is not registered.
func NewSyncHandler(sync *app.SyncService, events *EventHub) *SyncHandler {
	if sync == nil {
		panic("SyncHandler: sync service is required")
	}

	return &SyncHandler{sync: sync, events: events}
}

// Trigger handles POST /api/v1/sync by running one sync cycle.
//
// The body is always the SyncSummary. The status code follows the outcome:
// 200 for ok and partial, 409 when a cycle is already running, and the
// mapped error status for a failed cycle.
func (h *SyncHandler) Trigger(c *gin.Context) {
	summary := h.sync.SyncOnce(c.Request.Context())

	c.JSON(syncHTTPStatus(summary), summary)
}

func syncHTTPStatus(s domain.SyncSummary) int {
	switch s.Status {
	case domain.SyncStatusOK, domain.SyncStatusPartial:
		return http.StatusOK
	case domain.SyncStatusAlreadySyncing:
		return http.StatusConflict
	}

	switch s.ErrorKind {
	case "network":
		return http.StatusBadGateway
	case "decode":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Status handles GET /api/v1/sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromSyncState(h.sync.State()))
}

// RegisterRoutes registers the sync routes on the given router group.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/sync")
	g.POST("", h.Trigger)
	g.GET("/status", h.Status)

	if h.events != nil {
		g.GET("/events", h.events.Stream)
	}
}
