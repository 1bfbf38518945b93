package handler

import (
	"github.com/gin-gonic/gin"

	appworkspace "github.com/finledger/backend/internal/application/workspace"
	"github.com/finledger/backend/internal/interfaces/http/middleware"
)

// WorkspaceHandler exposes workspace and membership operations
type WorkspaceHandler struct {
	BaseHandler
	members *appworkspace.MemberService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(members *appworkspace.MemberService) *WorkspaceHandler {
	return &WorkspaceHandler{members: members}
}

// Create creates a workspace owned by the caller
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req appworkspace.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.members.CreateWorkspace(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ws)
}

// Get returns a workspace the caller belongs to
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws, err := h.members.GetWorkspace(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// Rename renames a workspace
func (h *WorkspaceHandler) Rename(c *gin.Context) {
	var req appworkspace.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.members.RenameWorkspace(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// AddMember adds a user to the workspace
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	var req appworkspace.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.members.AddMember(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// ListMembers returns the workspace roster
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	members, err := h.members.ListMembers(c.Request.Context(), middleware.WorkspaceID(c), middleware.ActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeMemberRole changes a member's role
func (h *WorkspaceHandler) ChangeMemberRole(c *gin.Context) {
	memberID, err := parseIDParam(c, "memberID")
	if err != nil {
		h.BadRequest(c, "Malformed member ID")
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.members.ChangeMemberRole(c.Request.Context(), middleware.WorkspaceID(c), memberID, middleware.ActorID(c), req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// RemoveMember removes a member. Removing the last member deletes the
// workspace shortly after, once the cleanup handler has run.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	memberID, err := parseIDParam(c, "memberID")
	if err != nil {
		h.BadRequest(c, "Malformed member ID")
		return
	}

	if err := h.members.RemoveMember(c.Request.Context(), middleware.WorkspaceID(c), memberID, middleware.ActorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
