package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/application/ledger"
	"github.com/finledger/backend/internal/interfaces/http/middleware"
)

// TransactionHandler exposes transaction operations, including the grouping
// and split lifecycles
type TransactionHandler struct {
	BaseHandler
	transactions *ledger.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *ledger.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Create records a transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	var req ledger.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	txn, err := h.transactions.Create(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// Get returns a single transaction
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "transactionID")
	if err != nil {
		h.BadRequest(c, "Malformed transaction ID")
		return
	}

	txn, err := h.transactions.Get(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// List returns a page of the workspace's transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter ledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	page, err := h.transactions.List(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Update edits a transaction
func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "transactionID")
	if err != nil {
		h.BadRequest(c, "Malformed transaction ID")
		return
	}
	var req ledger.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	txn, err := h.transactions.Update(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// MarkCleared marks a pending transaction as cleared
func (h *TransactionHandler) MarkCleared(c *gin.Context) {
	h.mutateByID(c, h.transactions.MarkCleared)
}

// Void voids a transaction
func (h *TransactionHandler) Void(c *gin.Context) {
	h.mutateByID(c, h.transactions.Void)
}

type assignGroupRequest struct {
	GroupID uuid.UUID `json:"group_id" binding:"required"`
}

// AssignGroup places a transaction in a transfer group
func (h *TransactionHandler) AssignGroup(c *gin.Context) {
	id, err := parseIDParam(c, "transactionID")
	if err != nil {
		h.BadRequest(c, "Malformed transaction ID")
		return
	}
	var req assignGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	txn, err := h.transactions.AssignGroup(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id, req.GroupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// RemoveFromGroup takes a transaction out of its transfer group
func (h *TransactionHandler) RemoveFromGroup(c *gin.Context) {
	h.mutateByID(c, h.transactions.RemoveFromGroup)
}

type splitRequest struct {
	Parts []ledger.SplitPartRequest `json:"parts" binding:"required,min=2"`
}

// Split divides a transaction into parts that sum to its amount
func (h *TransactionHandler) Split(c *gin.Context) {
	id, err := parseIDParam(c, "transactionID")
	if err != nil {
		h.BadRequest(c, "Malformed transaction ID")
		return
	}
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	txn, err := h.transactions.Split(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id, req.Parts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Unsplit collapses a split transaction back into a single row
func (h *TransactionHandler) Unsplit(c *gin.Context) {
	h.mutateByID(c, h.transactions.Unsplit)
}

// ListSplitParts returns the children of a split transaction
func (h *TransactionHandler) ListSplitParts(c *gin.Context) {
	id, err := parseIDParam(c, "transactionID")
	if err != nil {
		h.BadRequest(c, "Malformed transaction ID")
		return
	}

	parts, err := h.transactions.ListSplitParts(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parts)
}

func (h *TransactionHandler) mutateByID(
	c *gin.Context,
	fn func(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*ledger.TransactionResponse, error),
) {
	id, err := parseIDParam(c, "transactionID")
	if err != nil {
		h.BadRequest(c, "Malformed transaction ID")
		return
	}

	txn, err := fn(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}
