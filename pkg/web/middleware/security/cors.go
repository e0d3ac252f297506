package security

import (
	"strconv"
	"strings"

	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
)

// CORSConfig configures Cross-Origin Resource Sharing
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API; "*" allows any
	AllowedOrigins []string

	// AllowedMethods are advertised in preflight responses
	AllowedMethods []string

	// AllowedHeaders are advertised in preflight responses
	AllowedHeaders []string

	// ExposedHeaders are readable by browser scripts
	ExposedHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds (0 = not sent)
	MaxAge int
}

// DefaultCORSConfig allows every origin, method and header
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	}
}

// CORS sets CORS headers and answers OPTIONS preflight requests with 204
// without calling the next handler
func CORS(config CORSConfig) web.FastMiddleware {
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = DefaultCORSConfig().AllowedMethods
	}
	anyOrigin := false
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
	}
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			origin := ctx.Header("Origin")
			allowed := ""
			switch {
			case anyOrigin && !config.AllowCredentials:
				allowed = "*"
			case anyOrigin:
				// "*" is not honoured by browsers together with credentials
				allowed = origin
			default:
				for _, o := range config.AllowedOrigins {
					if o == origin {
						allowed = origin
						break
					}
				}
			}

			if allowed != "" {
				ctx.SetHeader("Access-Control-Allow-Origin", allowed)
				if allowed != "*" {
					ctx.RequestCtx.Response.Header.Add("Vary", "Origin")
				}
				if config.AllowCredentials {
					ctx.SetHeader("Access-Control-Allow-Credentials", "true")
				}
				if exposed != "" {
					ctx.SetHeader("Access-Control-Expose-Headers", exposed)
				}
			}

			if string(ctx.Method()) != fasthttp.MethodOptions {
				return next(ctx)
			}

			// Preflight
			if allowed != "" {
				ctx.SetHeader("Access-Control-Allow-Methods", methods)
				if headers == "*" {
					if req := ctx.Header("Access-Control-Request-Headers"); req != "" {
						ctx.SetHeader("Access-Control-Allow-Headers", req)
					} else {
						ctx.SetHeader("Access-Control-Allow-Headers", "*")
					}
				} else if headers != "" {
					ctx.SetHeader("Access-Control-Allow-Headers", headers)
				}
				if config.MaxAge > 0 {
					ctx.SetHeader("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}
			return ctx.Status(fasthttp.StatusNoContent)
		}
	}
}
