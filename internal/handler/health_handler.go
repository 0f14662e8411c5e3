package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// EngineStatus reports the state of the shared engine handle without
// triggering construction.
type EngineStatus interface {
	Status() (ready bool, attempted bool, err error)
	ProviderName() string
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	engine        EngineStatus
	db            *sqlx.DB // nil when the audit log is disabled
	requireEngine bool
}

// NewHealthHandler creates a new HealthHandler. With requireEngine set,
// readiness fails until the first construction attempt has finished.
func NewHealthHandler(engine EngineStatus, db *sqlx.DB, requireEngine bool) *HealthHandler {
	return &HealthHandler{engine: engine, db: db, requireEngine: requireEngine}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}

	ready, attempted, err := h.engine.Status()
	info := gin.H{"provider": h.engine.ProviderName()}
	switch {
	case ready:
		info["state"] = "ready"
	case attempted:
		// Requests are still answered with degraded responses.
		info["state"] = "unavailable"
		info["error"] = err.Error()
	default:
		info["state"] = "pending"
		if h.requireEngine {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting", "engine": info})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "engine": info})
}

// EngineInfo handles GET /api/v1/engine
func (h *HealthHandler) EngineInfo(c *gin.Context) {
	ready, attempted, err := h.engine.Status()
	data := gin.H{
		"provider":  h.engine.ProviderName(),
		"ready":     ready,
		"attempted": attempted,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	RespondOK(c, data)
}
