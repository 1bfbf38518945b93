package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/interfaces/http/dto"
)

// UserIDHeader identifies the acting user. Authentication happens upstream;
// the gateway strips any client-supplied value and injects the verified ID.
const UserIDHeader = "X-User-ID"

// Gin context keys set by the identity middlewares
const (
	ContextUserIDKey      = "user_id"
	ContextWorkspaceIDKey = "workspace_id"
)

// Identity resolves the acting user from the X-User-ID header and rejects
// requests without one. The ID is placed on both the gin context and the
// request context so request-scoped logs carry it.
func Identity(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Missing user identity")
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Malformed user identity")
			return
		}

		c.Set(ContextUserIDKey, userID)
		ctx, _ := logger.WithUserID(c.Request.Context(), log, userID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// WorkspaceScope parses the workspaceID path parameter for routes nested
// under a workspace and makes it available to handlers and logs.
func WorkspaceScope(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, err := uuid.Parse(c.Param("workspaceID"))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Malformed workspace ID")
			return
		}

		c.Set(ContextWorkspaceIDKey, workspaceID)
		ctx, _ := logger.WithWorkspaceID(c.Request.Context(), log, workspaceID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ActorID returns the authenticated user ID set by Identity
func ActorID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// WorkspaceID returns the workspace ID set by WorkspaceScope
func WorkspaceID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextWorkspaceIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func abortWithError(c *gin.Context, status int, code, message string) {
	requestID := c.GetString(ContextRequestIDKey)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, message, requestID))
}
