package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appaudit "github.com/finledger/backend/internal/application/audit"
	"github.com/finledger/backend/internal/interfaces/http/middleware"
)

// HistoryHandler exposes the audit trail of a ledger entity
type HistoryHandler struct {
	BaseHandler
	history *appaudit.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *appaudit.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListForEntity returns an entity's change history, newest first. The limit
// query parameter caps the page; it defaults to the service limit.
func (h *HistoryHandler) ListForEntity(c *gin.Context) {
	entityID, err := parseIDParam(c, "entityID")
	if err != nil {
		h.BadRequest(c, "Malformed entity ID")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.BadRequest(c, "Malformed limit")
			return
		}
	}

	entries, err := h.history.ListForEntity(c.Request.Context(), middleware.WorkspaceID(c), entityID, middleware.ActorID(c), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
