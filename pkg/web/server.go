package web

import (
	"context"
	"net"
)

// Server represents an HTTP server abstraction
type Server interface {
	// Start listens on the configured address and blocks until the server stops
	Start() error

	// Serve serves connections from ln and blocks until the server stops
	Serve(ln net.Listener) error

	// Shutdown stops accepting connections and waits for in-flight requests
	Shutdown(ctx context.Context) error

	// Router returns the router
	Router() Router
}

// Router handles HTTP routing.
// Paths may contain ":name" segments, read back with FastRequestContext.Param.
type Router interface {
	// GET registers a GET handler
	GET(path string, handler FastRequestHandler)

	// POST registers a POST handler
	POST(path string, handler FastRequestHandler)

	// PUT registers a PUT handler
	PUT(path string, handler FastRequestHandler)

	// DELETE registers a DELETE handler
	DELETE(path string, handler FastRequestHandler)

	// Route registers a handler for any HTTP method
	Route(method, path string, handler FastRequestHandler)

	// Use adds middleware. Middleware wraps every request, including
	// requests that match no route.
	Use(middleware ...FastMiddleware)
}

// FastRequestHandler handles fasthttp requests
type FastRequestHandler func(ctx *FastRequestContext) error

// FastMiddleware is middleware for fasthttp
type FastMiddleware func(handler FastRequestHandler) FastRequestHandler
