package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pollyhq/pollycoach/internal/api/handlers"
	"github.com/pollyhq/pollycoach/internal/api/middleware"
)

type Deps struct {
	History *handlers.HistoryHandler
	Topics  *handlers.TopicHandler
	WS      *handlers.WSHandler

	// JWTSecret guards the REST group when non-empty.
	JWTSecret string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	if d.JWTSecret != "" {
		api.Use(middleware.JWTAuth(d.JWTSecret))
	}

	api.GET("/sessions", d.History.Recent)
	api.GET("/sessions/:session_id", d.History.Get)
	api.GET("/sessions/:session_id/timeline", d.History.Timeline)
	api.GET("/stats", d.History.Stats)

	api.GET("/topics/random", d.Topics.Random)
	api.GET("/topics/categories", d.Topics.Categories)

	// WebSocket: session identity is the connection
	r.GET("/ws/:session_id", d.WS.SessionWS)
}
