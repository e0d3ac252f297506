package web

import (
	"strings"
	"sync"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/core/failfast"
	"github.com/valyala/fasthttp"
)

// fastRouter implements Router for fasthttp
type fastRouter struct {
	routes     []*fastRoute
	middleware []FastMiddleware
	notFound   FastRequestHandler
	onError    func(ctx *FastRequestContext, err error)
	mu         sync.RWMutex
}

type fastRoute struct {
	method  string
	path    string
	parts   []string
	handler FastRequestHandler
}

// newFastRouter creates a new fasthttp router
func newFastRouter() *fastRouter {
	return &fastRouter{
		routes:     make([]*fastRoute, 0),
		middleware: make([]FastMiddleware, 0),
		notFound:   notFoundHandler,
		onError:    func(ctx *FastRequestContext, err error) { _ = WriteError(ctx, err) },
	}
}

func notFoundHandler(ctx *FastRequestContext) error {
	return core.NotFound("Not Found")
}

// ServeFastHTTP dispatches the request through the middleware chain
func (r *fastRouter) ServeFastHTTP(ctx *FastRequestContext) {
	r.mu.RLock()
	handler := r.notFound
	path := splitPath(string(ctx.Path()))
	method := string(ctx.Method())
	for _, route := range r.routes {
		if route.method == method && matchPath(route.parts, path) {
			extractParams(route.parts, path, ctx.Params)
			ctx.route = route.path
			handler = route.handler
			break
		}
	}
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	onError := r.onError
	r.mu.RUnlock()

	if err := handler(ctx); err != nil {
		onError(ctx, err)
	}
}

func (r *fastRouter) GET(path string, handler FastRequestHandler) {
	r.Route(fasthttp.MethodGet, path, handler)
}

func (r *fastRouter) POST(path string, handler FastRequestHandler) {
	r.Route(fasthttp.MethodPost, path, handler)
}

func (r *fastRouter) PUT(path string, handler FastRequestHandler) {
	r.Route(fasthttp.MethodPut, path, handler)
}

func (r *fastRouter) DELETE(path string, handler FastRequestHandler) {
	r.Route(fasthttp.MethodDelete, path, handler)
}

// Route registers a handler for method and path
func (r *fastRouter) Route(method, path string, handler FastRequestHandler) {
	failfast.NotNil(handler, "handler")
	failfast.If(strings.HasPrefix(path, "/"), "route path %q must start with /", path)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = append(r.routes, &fastRoute{
		method:  method,
		path:    path,
		parts:   splitPath(path),
		handler: handler,
	})
}

// Use appends middleware; the first registered runs outermost
func (r *fastRouter) Use(middleware ...FastMiddleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// NotFound replaces the handler used when no route matches
func (r *fastRouter) NotFound(handler FastRequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func matchPath(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}

	for i, part := range pattern {
		if strings.HasPrefix(part, ":") {
			if path[i] == "" {
				return false
			}
			continue // Parameter
		}
		if part != path[i] {
			return false
		}
	}

	return true
}

func extractParams(pattern, path []string, params map[string]string) {
	for i, part := range pattern {
		if strings.HasPrefix(part, ":") && i < len(path) {
			params[strings.TrimPrefix(part, ":")] = path[i]
		}
	}
}
