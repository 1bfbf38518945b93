package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/finledger/backend/internal/application/ledger"
	"github.com/finledger/backend/internal/interfaces/http/middleware"
)

// AccountHandler exposes account operations
type AccountHandler struct {
	BaseHandler
	accounts *ledger.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *ledger.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create creates an account
func (h *AccountHandler) Create(c *gin.Context) {
	var req ledger.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Get returns a single account
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "accountID")
	if err != nil {
		h.BadRequest(c, "Malformed account ID")
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List returns the workspace's accounts sorted by name
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Update edits an account's name and kind
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "accountID")
	if err != nil {
		h.BadRequest(c, "Malformed account ID")
		return
	}
	var req ledger.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Archive retires an account from active use
func (h *AccountHandler) Archive(c *gin.Context) {
	id, err := parseIDParam(c, "accountID")
	if err != nil {
		h.BadRequest(c, "Malformed account ID")
		return
	}

	account, err := h.accounts.Archive(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Unarchive returns an archived account to active use
func (h *AccountHandler) Unarchive(c *gin.Context) {
	id, err := parseIDParam(c, "accountID")
	if err != nil {
		h.BadRequest(c, "Malformed account ID")
		return
	}

	account, err := h.accounts.Unarchive(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}
