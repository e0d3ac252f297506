package web

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

// HealthResponse is the body of the liveness endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ReadyResponse is the body of the readiness endpoint
type ReadyResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
}

// RegisterHealthRoutes adds GET /health and GET /ready.
// ready is called with a bounded context; nil means always ready.
func RegisterHealthRoutes(router Router, service string, ready func(ctx context.Context) error) {
	router.GET("/health", func(ctx *FastRequestContext) error {
		return ctx.JSON(fasthttp.StatusOK, HealthResponse{Status: "UP", Service: service})
	})

	router.GET("/ready", func(ctx *FastRequestContext) error {
		if ready == nil {
			return ctx.JSON(fasthttp.StatusOK, ReadyResponse{Status: "UP", Database: true})
		}
		c, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
		defer cancel()
		if err := ready(c); err != nil {
			return ctx.JSON(fasthttp.StatusServiceUnavailable, ReadyResponse{Status: "DOWN", Database: false})
		}
		return ctx.JSON(fasthttp.StatusOK, ReadyResponse{Status: "UP", Database: true})
	})
}
