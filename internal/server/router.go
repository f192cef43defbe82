package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/forgelabs/forgelabs/internal/logger"
)

// DefaultAllowOrigins are the dev-server origins allowed by CORS.
var DefaultAllowOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8788",
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), requestLogger(s.log))

	origins := s.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = DefaultAllowOrigins
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}))

	router.NoRoute(func(c *gin.Context) {
		RespondError(c, http.StatusNotFound, CodeNotFound, errors.New("not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		RespondError(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, errors.New("Method Not Allowed"))
	})

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	{
		api.POST("/ai-chat", s.chat)

		api.GET("/catalog", s.getCatalog)
		api.GET("/lessons/:id", s.getLesson)
		api.POST("/lessons/:id/complete", s.completeLesson)
		api.POST("/lessons/:id/quiz", s.submitQuiz)

		api.GET("/state", s.getState)
		api.GET("/profile", s.getProfile)
		api.POST("/actions", s.recordAction)

		api.GET("/events", s.events)
	}

	return router
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
