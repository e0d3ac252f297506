package security

import (
	"github.com/fluxorio/todos/pkg/web"
)

// HeadersConfig configures security headers
type HeadersConfig struct {
	// X-Content-Type-Options
	XContentTypeOptions bool // nosniff

	// X-Frame-Options
	XFrameOptions string // DENY, SAMEORIGIN

	// Referrer-Policy
	ReferrerPolicy string // no-referrer, origin, etc.

	// Custom headers
	CustomHeaders map[string]string
}

// DefaultHeadersConfig returns headers suited to a JSON API
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		XContentTypeOptions: true,
		XFrameOptions:       "DENY",
		ReferrerPolicy:      "no-referrer",
	}
}

// Headers adds security headers to every response
func Headers(config HeadersConfig) web.FastMiddleware {
	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			if config.XContentTypeOptions {
				ctx.SetHeader("X-Content-Type-Options", "nosniff")
			}
			if config.XFrameOptions != "" {
				ctx.SetHeader("X-Frame-Options", config.XFrameOptions)
			}
			if config.ReferrerPolicy != "" {
				ctx.SetHeader("Referrer-Policy", config.ReferrerPolicy)
			}
			for k, v := range config.CustomHeaders {
				ctx.SetHeader(k, v)
			}
			return next(ctx)
		}
	}
}
