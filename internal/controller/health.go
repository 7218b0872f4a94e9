package controller

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo-api/internal/cache"
)

// HealthController serves the liveness and readiness probes.
type HealthController struct {
	db    *sql.DB
	cache *cache.Cache
}

func NewHealthController(db *sql.DB, c *cache.Cache) *HealthController {
	return &HealthController{db: db, cache: c}
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *HealthController) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the database is reachable. Redis is reported but
// not required: the app serves without its cache.
func (h *HealthController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": h.cache.Ready(ctx)})
}
