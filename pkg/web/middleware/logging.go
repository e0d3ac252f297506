package middleware

import (
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/web"
)

// LoggingConfig configures access logging
type LoggingConfig struct {
	// Logger receives one entry per request (default: core.NewDefaultLogger())
	Logger core.Logger

	// SkipPaths are not logged, e.g. health probes
	SkipPaths []string
}

// Logging writes one line per request with method, path, status, duration and request ID.
// Errors returned by the handler are reported with the status they will be rendered with.
func Logging(config LoggingConfig) web.FastMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			path := string(ctx.Path())
			if _, ok := skip[path]; ok {
				return next(ctx)
			}

			start := time.Now()
			err := next(ctx)

			status := ctx.StatusCode()
			if err != nil {
				status, _ = web.StatusOf(err)
			}
			args := []interface{}{
				"method", string(ctx.Method()),
				"path", path,
				"status", status,
				"duration", time.Since(start),
				"request_id", ctx.RequestID(),
			}
			if status >= 500 {
				logger.Warn("request", args...)
			} else {
				logger.Info("request", args...)
			}
			return err
		}
	}
}
