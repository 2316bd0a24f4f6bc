// Package handler serves readiness/liveness for Kubernetes, load balancers, and CI.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports store reachability (e.g. *sql.DB).
type Pinger interface {
	Ping() error
}

// Handler serves GET /healthz.
type Handler struct {
	pinger Pinger
}

// NewHandler returns a health handler. pinger may be nil; then the check is
// plain liveness.
func NewHandler(pinger Pinger) *Handler {
	return &Handler{pinger: pinger}
}

// Check returns 200 when the service is up and the store (if wired) is
// reachable, 503 otherwise.
func (h *Handler) Check(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
