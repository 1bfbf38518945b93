package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/infrastructure/config"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/interfaces/http/handler"
	"github.com/finledger/backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Health       *handler.HealthHandler
	Workspaces   *handler.WorkspaceHandler
	Accounts     *handler.AccountHandler
	Categories   *handler.CategoryHandler
	Transactions *handler.TransactionHandler
	History      *handler.HistoryHandler
}

// New builds the gin engine with all middleware and routes mounted
func New(log *zap.Logger, httpCfg *config.HTTPConfig, h Handlers) *gin.Engine {
	r := gin.New()

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = httpCfg.CORSAllowOrigins

	r.Use(
		logger.Recovery(log),
		middleware.RequestID(log),
		logger.GinMiddleware(log),
		middleware.CORS(cors),
	)

	r.GET("/health", h.Health.Check)

	api := r.Group("/api/v1", middleware.Identity(log))

	api.POST("/workspaces", h.Workspaces.Create)

	ws := api.Group("/workspaces/:workspaceID", middleware.WorkspaceScope(log))
	{
		ws.GET("", h.Workspaces.Get)
		ws.PUT("", h.Workspaces.Rename)

		ws.GET("/members", h.Workspaces.ListMembers)
		ws.POST("/members", h.Workspaces.AddMember)
		ws.PUT("/members/:memberID/role", h.Workspaces.ChangeMemberRole)
		ws.DELETE("/members/:memberID", h.Workspaces.RemoveMember)

		ws.GET("/accounts", h.Accounts.List)
		ws.POST("/accounts", h.Accounts.Create)
		ws.GET("/accounts/:accountID", h.Accounts.Get)
		ws.PUT("/accounts/:accountID", h.Accounts.Update)
		ws.POST("/accounts/:accountID/archive", h.Accounts.Archive)
		ws.POST("/accounts/:accountID/unarchive", h.Accounts.Unarchive)

		ws.GET("/categories", h.Categories.List)
		ws.POST("/categories", h.Categories.Create)
		ws.PUT("/categories/:categoryID", h.Categories.Rename)
		ws.DELETE("/categories/:categoryID", h.Categories.Delete)

		ws.GET("/transactions", h.Transactions.List)
		ws.POST("/transactions", h.Transactions.Create)
		ws.GET("/transactions/:transactionID", h.Transactions.Get)
		ws.PUT("/transactions/:transactionID", h.Transactions.Update)
		ws.POST("/transactions/:transactionID/clear", h.Transactions.MarkCleared)
		ws.POST("/transactions/:transactionID/void", h.Transactions.Void)
		ws.POST("/transactions/:transactionID/group", h.Transactions.AssignGroup)
		ws.DELETE("/transactions/:transactionID/group", h.Transactions.RemoveFromGroup)
		ws.POST("/transactions/:transactionID/split", h.Transactions.Split)
		ws.DELETE("/transactions/:transactionID/split", h.Transactions.Unsplit)
		ws.GET("/transactions/:transactionID/split", h.Transactions.ListSplitParts)

		ws.GET("/entities/:entityID/history", h.History.ListForEntity)
	}

	return r
}
