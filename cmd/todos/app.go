package main

import (
	"context"
	"net"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/db"
	"github.com/fluxorio/todos/pkg/events"
	"github.com/fluxorio/todos/pkg/observability/prometheus"
	"github.com/fluxorio/todos/pkg/observability/tracing"
	"github.com/fluxorio/todos/pkg/todo"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/fluxorio/todos/pkg/web/middleware"
	"github.com/fluxorio/todos/pkg/web/middleware/security"
	"github.com/pkg/errors"
)

// application owns every long-lived resource of the service
type application struct {
	cfg       AppConfig
	logger    core.Logger
	pool      *db.Pool
	publisher events.Publisher
	server    *web.FastHTTPServer
	tracing   tracing.ShutdownFunc
	stopStats context.CancelFunc
}

func newLogger(cfg LogConfig) core.Logger {
	return core.NewLogger(core.LoggerConfig{
		Name:  "todos",
		Level: cfg.Level,
		JSON:  cfg.Format == "json",
	})
}

// newApplication opens the database, connects optional collaborators and
// builds the HTTP server. On error everything opened so far is closed.
func newApplication(cfg AppConfig, logger core.Logger) (_ *application, err error) {
	app := &application{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.close(context.Background())
		}
	}()

	app.tracing, err = tracing.Initialize(tracing.Config{
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	poolCfg := db.DefaultPoolConfig(cfg.Database.DSN, cfg.Database.Driver)
	poolCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	poolCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	poolCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolCfg.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	app.pool, err = db.NewPool(poolCfg)
	if err != nil {
		return nil, err
	}

	store := todo.NewSQLStore(app.pool)
	if err = store.EnsureSchema(context.Background()); err != nil {
		return nil, err
	}

	app.publisher = events.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		nats, err := events.NewNATSPublisher(events.NATSConfig{
			URL:    cfg.Events.NATSURL,
			Prefix: cfg.Events.Prefix,
			Name:   "todos",
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		app.publisher = nats
		logger.Info("publishing events", "url", cfg.Events.NATSURL, "prefix", cfg.Events.Prefix)
	}

	serverCfg := web.DefaultFastHTTPServerConfig(cfg.Server.Addr)
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.Logger = logger
	app.server = web.NewFastHTTPServer(serverCfg)
	router := app.server.Router()

	corsCfg := security.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORS.AllowedOrigins
	router.Use(
		middleware.Logging(middleware.LoggingConfig{Logger: logger, SkipPaths: []string{"/health", "/ready", cfg.Metrics.Path}}),
		middleware.Recovery(middleware.RecoveryConfig{Logger: logger}),
		security.CORS(corsCfg),
		security.Headers(security.DefaultHeadersConfig()),
		tracing.Middleware(),
	)

	serviceCfg := todo.ServiceConfig{
		Store:     store,
		Publisher: app.publisher,
		Logger:    logger,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics := prometheus.NewMetrics(reg)
		app.pool.SetObserver(metrics.RecordDatabaseQuery)
		serviceCfg.Observer = metrics.RecordTodoOperation
		router.Use(prometheus.FastHTTPMetricsMiddleware(metrics))
		prometheus.RegisterMetricsEndpoint(router, cfg.Metrics.Path, reg)

		var statsCtx context.Context
		statsCtx, app.stopStats = context.WithCancel(context.Background())
		prometheus.StartPoolStatsUpdater(statsCtx, metrics, app.pool, 0)
	}

	web.RegisterHealthRoutes(router, "todos", app.pool.Ping)
	todo.NewHandler(todo.NewService(serviceCfg)).RegisterRoutes(router)

	return app, nil
}

// serve blocks until the server stops; ln may be nil to listen on the configured address
func (a *application) serve(ln net.Listener) error {
	if ln != nil {
		return a.server.Serve(ln)
	}
	return a.server.Start()
}

// shutdown stops the server, then releases the remaining resources
func (a *application) shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		err = errors.Wrap(a.server.Shutdown(ctx), "shutdown http server")
	}
	a.close(ctx)
	return err
}

func (a *application) close(ctx context.Context) {
	if a.stopStats != nil {
		a.stopStats()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("close event publisher", "error", err)
		}
	}
	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			a.logger.Warn("shutdown tracer provider", "error", err)
		}
	}
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
}
