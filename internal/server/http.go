// Package server builds the HTTP router and wires handlers to their dependencies.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"task-forge/backend/internal/audit"
	authhandler "task-forge/backend/internal/auth/handler"
	authservice "task-forge/backend/internal/auth/service"
	healthhandler "task-forge/backend/internal/health/handler"
	"task-forge/backend/internal/server/middleware"
)

// Deps holds service dependencies for the HTTP handlers.
type Deps struct {
	// Auth is the auth service for register/login/refresh. Required.
	Auth *authservice.AuthService
	// Auditor records auth events. If nil, no events are recorded.
	Auditor audit.AuditLogger
	// HealthPinger is used by /healthz for readiness (e.g. *sql.DB). If nil, the check is liveness only.
	HealthPinger healthhandler.Pinger
	// AccessTTL and RefreshTTL set the token cookie max-ages.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// CORSOrigins is the allowed-origin list; empty or "*" allows all origins.
	CORSOrigins []string
	// Tracer and Meter enable per-request telemetry. If either is nil, requests are not instrumented.
	Tracer trace.Tracer
	Meter  metric.Meter
}

// NewRouter returns a gin engine with all routes registered.
//
// Route → handler mapping:
//   - POST /auth/register, POST /auth/login, GET /auth/refresh → internal/auth/handler
//   - GET /healthz → internal/health/handler
//   - GET / → liveness string
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(corsMiddleware(deps.CORSOrigins))
	if deps.Tracer != nil && deps.Meter != nil {
		r.Use(middleware.Telemetry(deps.Tracer, deps.Meter, map[string]bool{"/healthz": true}))
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "task-forge auth service running")
	})
	r.GET("/healthz", healthhandler.NewHandler(deps.HealthPinger).Check)

	auth := authhandler.NewHandler(deps.Auth, deps.Auditor, deps.AccessTTL, deps.RefreshTTL)
	auth.Register(r.Group("/auth"))

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
