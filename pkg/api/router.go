// Package api exposes the plan operations over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the plan routes and the health endpoint
func NewRouter(h *Handler, checker *Checker, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	r.GET("/health", checker.Handler())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/years/:yearID/plan", h.GetPlan)
		v1.POST("/years/:yearID/plan", h.GeneratePlan)
		v1.DELETE("/years/:yearID/plan", h.DeletePlan)
		v1.POST("/years/:yearID/families/:familyID/join", h.JoinFamily)
		v1.POST("/years/:yearID/families/:familyID/leave", h.LeaveFamily)
		v1.POST("/years/:yearID/assignments", h.AssignManually)
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" {
			return
		}

		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
