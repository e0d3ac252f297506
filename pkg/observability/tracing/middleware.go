package tracing

import (
	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fluxorio/todos/pkg/observability/tracing"

// headerCarrier adapts fasthttp request headers to propagation.TextMapCarrier
type headerCarrier struct {
	h *fasthttp.RequestHeader
}

func (c headerCarrier) Get(key string) string {
	return string(c.h.Peek(key))
}

func (c headerCarrier) Set(key, value string) {
	c.h.Set(key, value)
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0)
	c.h.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

var _ propagation.TextMapCarrier = headerCarrier{}

// Middleware starts a server span per request, continuing any incoming trace context.
// The span travels in ctx.Context() so downstream spans become its children.
func Middleware() web.FastMiddleware {
	tracer := otel.Tracer(tracerName)

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			method := string(ctx.Method())
			route := ctx.Route()
			name := method + " " + route
			if route == "" {
				name = method
			}

			parent := otel.GetTextMapPropagator().Extract(ctx.Context(), headerCarrier{&ctx.RequestCtx.Request.Header})
			spanCtx, span := tracer.Start(parent, name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", method),
					attribute.String("url.path", string(ctx.Path())),
					attribute.String("http.route", route),
					attribute.String("request.id", ctx.RequestID()),
				))
			defer span.End()
			ctx.SetContext(spanCtx)

			err := next(ctx)

			status := ctx.StatusCode()
			if err != nil {
				status, _ = web.StatusOf(err)
				span.RecordError(err)
			}
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= fasthttp.StatusInternalServerError {
				span.SetStatus(codes.Error, fasthttp.StatusMessage(status))
			}
			return err
		}
	}
}
