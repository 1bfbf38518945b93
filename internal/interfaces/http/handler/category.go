package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/finledger/backend/internal/application/ledger"
	"github.com/finledger/backend/internal/interfaces/http/middleware"
)

// CategoryHandler exposes category operations
type CategoryHandler struct {
	BaseHandler
	categories *ledger.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *ledger.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Create creates a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req ledger.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categories.Create(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// List returns the workspace's categories sorted by name
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Rename renames a category
func (h *CategoryHandler) Rename(c *gin.Context) {
	id, err := parseIDParam(c, "categoryID")
	if err != nil {
		h.BadRequest(c, "Malformed category ID")
		return
	}
	var req ledger.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categories.Rename(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete removes an unused category
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "categoryID")
	if err != nil {
		h.BadRequest(c, "Malformed category ID")
		return
	}

	if err := h.categories.Delete(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
