// Package api exposes the operator-only status surface: liveness,
// readiness, and per-queue depth. The reader-facing query API is
// explicitly out of scope; this is infrastructure visibility, not a
// public endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ai-roundtable/observatory/pkg/database"
	"github.com/ai-roundtable/observatory/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueueHealth reports one queue's depth and worker-slot status.
type QueueHealth struct {
	Name  string             `json:"name"`
	Depth queue.Depth        `json:"depth"`
	Slots []queue.SlotHealth `json:"slots"`
}

// Server builds the operator status router.
type Server struct {
	pool    *pgxpool.Pool
	queues  map[string]*queue.Queue
	workers map[string]*queue.Worker
}

func NewServer(pool *pgxpool.Pool, queues map[string]*queue.Queue, workers map[string]*queue.Worker) *Server {
	return &Server{pool: pool, queues: queues, workers: workers}
}

// Router builds the gin engine serving /health, /readyz, /status/queues.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dbHealth, err := database.Health(reqCtx, s.pool)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbHealth,
				"error":    err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "database": dbHealth})
	})

	router.GET("/status/queues", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"queues": s.queueStatuses(c.Request.Context())})
	})

	return router
}

func (s *Server) queueStatuses(ctx context.Context) []QueueHealth {
	statuses := make([]QueueHealth, 0, len(s.queues))
	for name, q := range s.queues {
		depth, err := q.Depth(ctx)
		if err != nil {
			continue
		}
		var slots []queue.SlotHealth
		if w, ok := s.workers[name]; ok {
			slots = w.Health()
		}
		statuses = append(statuses, QueueHealth{Name: name, Depth: depth, Slots: slots})
	}
	return statuses
}
