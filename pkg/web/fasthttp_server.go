package web

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/valyala/fasthttp"
)

// FastHTTPServer implements Server using fasthttp.
// Each request runs on the goroutine fasthttp hands it; there is no queue.
type FastHTTPServer struct {
	router *fastRouter
	server *fasthttp.Server
	addr   string
	logger core.Logger
	// Metrics for monitoring
	totalRequests      int64 // Atomic counter for total requests
	successfulRequests int64 // Atomic counter for successful requests (200-299)
	errorRequests      int64 // Atomic counter for error requests (500-599)
}

// FastHTTPServerConfig configures the fasthttp server
type FastHTTPServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxConnsPerIP   int
	ReadBufferSize  int
	WriteBufferSize int
	Logger          core.Logger
}

// DefaultFastHTTPServerConfig returns default configuration
func DefaultFastHTTPServerConfig(addr string) *FastHTTPServerConfig {
	return &FastHTTPServerConfig{
		Addr:            addr,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ReadBufferSize:  8192,
		WriteBufferSize: 8192,
	}
}

// NewFastHTTPServer creates a new fasthttp server
func NewFastHTTPServer(config *FastHTTPServerConfig) *FastHTTPServer {
	if config == nil {
		config = DefaultFastHTTPServerConfig(":8080")
	}
	logger := config.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	s := &FastHTTPServer{
		router: newFastRouter(),
		addr:   config.Addr,
		logger: logger,
		server: &fasthttp.Server{
			ReadTimeout:                   config.ReadTimeout,
			WriteTimeout:                  config.WriteTimeout,
			MaxConnsPerIP:                 config.MaxConnsPerIP,
			ReadBufferSize:                config.ReadBufferSize,
			WriteBufferSize:               config.WriteBufferSize,
			DisableHeaderNamesNormalizing: false,
			NoDefaultServerHeader:         true,
			Logger:                        fasthttpLogger{logger},
		},
	}
	s.server.Handler = s.processRequest
	s.router.onError = s.handleError
	return s
}

// Start listens on the configured address (blocking call)
func (s *FastHTTPServer) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	return s.server.ListenAndServe(s.addr)
}

// Serve serves connections from ln (blocking call)
func (s *FastHTTPServer) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return s.server.Serve(ln)
}

// Shutdown gracefully stops the server
func (s *FastHTTPServer) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

// Router returns the router
func (s *FastHTTPServer) Router() Router {
	return s.router
}

// Handler returns the raw fasthttp handler, for tests and embedding
func (s *FastHTTPServer) Handler() fasthttp.RequestHandler {
	return s.processRequest
}

// Metrics returns current server metrics
func (s *FastHTTPServer) Metrics() ServerMetrics {
	return ServerMetrics{
		TotalRequests:      atomic.LoadInt64(&s.totalRequests),
		SuccessfulRequests: atomic.LoadInt64(&s.successfulRequests),
		ErrorRequests:      atomic.LoadInt64(&s.errorRequests),
	}
}

// ServerMetrics provides server request counters
type ServerMetrics struct {
	TotalRequests      int64 // Total requests processed
	SuccessfulRequests int64 // Total successful requests (200-299)
	ErrorRequests      int64 // Total error requests (500-599)
}

// processRequest processes a single request
func (s *FastHTTPServer) processRequest(ctx *fasthttp.RequestCtx) {
	// Generate or extract request ID from headers
	requestID := core.ResolveRequestID(string(ctx.Request.Header.Peek(core.RequestIDHeader)))
	reqCtx := NewFastRequestContext(ctx, requestID)

	// Set request ID in response header for tracing
	ctx.Response.Header.Set(core.RequestIDHeader, requestID)

	atomic.AddInt64(&s.totalRequests, 1)

	s.router.ServeFastHTTP(reqCtx)

	// Track response status
	statusCode := ctx.Response.StatusCode()
	if statusCode >= 200 && statusCode < 300 {
		atomic.AddInt64(&s.successfulRequests, 1)
	} else if statusCode >= 500 {
		atomic.AddInt64(&s.errorRequests, 1)
	}
}

// handleError renders handler errors; unexpected ones are logged with the request ID
func (s *FastHTTPServer) handleError(ctx *FastRequestContext, err error) {
	status, _ := StatusOf(err)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", ctx.RequestID(),
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"error", err)
	}
	if werr := WriteError(ctx, err); werr != nil {
		ctx.RequestCtx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
	}
}

// fasthttpLogger routes fasthttp's own messages to core.Logger
type fasthttpLogger struct {
	l core.Logger
}

func (f fasthttpLogger) Printf(format string, args ...interface{}) {
	f.l.Warnf(format, args...)
}
