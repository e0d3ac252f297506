package prometheus

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// FastHTTPMetricsMiddleware creates middleware that records HTTP metrics.
// Requests are labelled by route pattern so ids do not explode cardinality.
func FastHTTPMetricsMiddleware(metrics *Metrics) web.FastMiddleware {
	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			start := time.Now()
			requestSize := int64(len(ctx.RequestCtx.PostBody()))

			err := next(ctx)

			status := ctx.StatusCode()
			responseSize := int64(len(ctx.RequestCtx.Response.Body()))
			if err != nil {
				// the router renders err after the chain returns
				var body web.ErrorResponse
				status, body = web.StatusOf(err)
				if data, encErr := core.JSONEncode(body); encErr == nil {
					responseSize = int64(len(data))
				}
			}
			route := ctx.Route()
			if route == "" {
				route = "unmatched"
			}

			metrics.RecordHTTPRequest(string(ctx.Method()), route, strconv.Itoa(status), time.Since(start), requestSize, responseSize)
			return err
		}
	}
}

// RegisterMetricsEndpoint serves gatherer in the Prometheus exposition format at path
func RegisterMetricsEndpoint(router web.Router, path string, gatherer prometheus.Gatherer) {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.GET(path, func(ctx *web.FastRequestContext) error {
		handler(ctx.RequestCtx)
		return nil
	})
}

// StatsSource reports connection pool statistics, e.g. *db.Pool
type StatsSource interface {
	Stats() sql.DBStats
}

// StartPoolStatsUpdater copies pool statistics into metrics every interval
// until ctx is done
func StartPoolStatsUpdater(ctx context.Context, metrics *Metrics, source StatsSource, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	metrics.UpdateDatabasePool(source.Stats())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDatabasePool(source.Stats())
			}
		}
	}()
}
