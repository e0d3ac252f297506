package middleware

import (
	"fmt"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
)

// RecoveryConfig configures panic recovery middleware
type RecoveryConfig struct {
	// Logger is the logger to use for panic logging (default: core.NewDefaultLogger())
	Logger core.Logger

	// StackTrace includes the panic value in the error response (use with caution in production)
	StackTrace bool
}

// DefaultRecoveryConfig returns a default recovery configuration
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger:     core.NewDefaultLogger(),
		StackTrace: false,
	}
}

// Recovery middleware recovers from panics and returns 500 error
func Recovery(config RecoveryConfig) web.FastMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					// Log panic with request context
					fields := make(map[string]interface{})
					fields["request_id"] = ctx.RequestID()
					fields["method"] = string(ctx.Method())
					fields["path"] = string(ctx.Path())

					logger.WithFields(fields).Errorf("Panic recovered: %v", r)

					errorMsg := "Internal Server Error"
					if config.StackTrace {
						errorMsg = fmt.Sprintf("Panic: %v", r)
					}

					ctx.RequestCtx.ResetBody()
					err = ctx.JSON(fasthttp.StatusInternalServerError, web.ErrorResponse{
						Error:   web.ErrorInternal,
						Message: errorMsg,
					})
				}
			}()

			return next(ctx)
		}
	}
}
