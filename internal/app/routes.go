package app

import (
	"net/http"

	"github.com/owenmcgrath/todoist-projection/internal/auth"
	"github.com/owenmcgrath/todoist-projection/internal/config"
	"github.com/owenmcgrath/todoist-projection/internal/events"
	"github.com/owenmcgrath/todoist-projection/internal/handlers"
	"github.com/owenmcgrath/todoist-projection/internal/repo"
	"github.com/owenmcgrath/todoist-projection/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

const requestIDHeader = "X-Request-ID"

type routeDeps struct {
	sessions  *auth.Store
	auth      *service.AuthService
	snapshots *service.SnapshotService
	history   repo.HistoryRepo
	broker    *events.Broker
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, deps routeDeps) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, deps.snapshots))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.auth)
	tasksHandler := handlers.NewTasksHandler(deps.snapshots)
	webhookHandler := handlers.NewWebhookHandler(cfg.Todoist.ClientSecret, deps.history, deps.broker, deps.snapshots)
	eventsHandler := handlers.NewEventsHandler(deps.broker, cfg.Events.HeartbeatInterval.Duration(), cfg.Events.HeartbeatMax)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/webhook", webhookHandler.Receive)
	// EventSource cannot send headers, so the stream also takes ?token=.
	api.GET("/events", auth.RequireSession(deps.sessions, true), eventsHandler.Stream)

	protected := api.Group("", auth.RequireSession(deps.sessions, false))
	protected.POST("/auth/logout", authHandler.Logout)
	registerTaskRoutes(protected, tasksHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todoist projection",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"openapi": "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config, snapshots *service.SnapshotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := gin.H{"ok": true, "env": cfg.App.Env}
		if v, ok := snapshots.Peek(); ok {
			h["fetchedAt"] = v.Snapshot.FetchedAt
			h["stale"] = v.Stale
		}
		c.JSON(http.StatusOK, h)
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

// requestID tags every request with an id, reusing the caller's if given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TasksHandler) {
	api.GET("/tasks", h.Get)
	api.POST("/tasks/refresh", h.Refresh)
	api.GET("/refreshes", h.History)
}
