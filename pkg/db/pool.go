package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/pkg/errors"
)

// QueryObserver is notified after every statement the pool runs.
// operation is "query", "query_row" or "exec".
type QueryObserver func(operation string, duration time.Duration, err error)

// PoolConfig configures the database connection pool
type PoolConfig struct {
	// DSN is the database connection string
	DSN string

	// DriverName is one of "sqlite3", "postgres" (lib/pq) or "pgx" (pgx stdlib)
	DriverName string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum amount of time a connection may be reused (0 = forever)
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle (0 = forever)
	ConnMaxIdleTime time.Duration

	// PingTimeout bounds the connectivity check in NewPool (default 5s)
	PingTimeout time.Duration

	// Observer receives statement timings; optional
	Observer QueryObserver
}

// DefaultPoolConfig returns the default pool configuration
func DefaultPoolConfig(dsn string, driverName string) PoolConfig {
	return PoolConfig{
		DSN:             dsn,
		DriverName:      driverName,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Validate checks the configuration without opening anything
func (c PoolConfig) Validate() error {
	switch {
	case c.DSN == "":
		return invalidConfig("DSN cannot be empty")
	case c.DriverName == "":
		return invalidConfig("DriverName cannot be empty")
	case c.MaxOpenConns <= 0:
		return invalidConfig("MaxOpenConns must be positive")
	case c.MaxIdleConns < 0:
		return invalidConfig("MaxIdleConns cannot be negative")
	case c.MaxIdleConns > c.MaxOpenConns:
		return invalidConfig("MaxIdleConns cannot exceed MaxOpenConns")
	case c.ConnMaxLifetime < 0:
		return invalidConfig("ConnMaxLifetime cannot be negative")
	case c.ConnMaxIdleTime < 0:
		return invalidConfig("ConnMaxIdleTime cannot be negative")
	}
	if _, err := DialectFor(c.DriverName); err != nil {
		return err
	}
	return nil
}

func invalidConfig(msg string) error {
	return &core.Error{Code: core.CodeInvalidConfig, Message: msg}
}

var (
	errNilPool    = &core.Error{Code: core.CodeInvalidState, Message: "pool cannot be nil"}
	errNotInit    = &core.Error{Code: core.CodeInvalidState, Message: "pool not initialized"}
	errEmptyQuery = &core.Error{Code: core.CodeInvalidInput, Message: "query cannot be empty"}
	errNilContext = &core.Error{Code: core.CodeInvalidInput, Message: "context cannot be nil"}
)

// Pool is a database connection pool bound to one SQL dialect.
// Statements are written with '?' placeholders and rebound for the dialect.
type Pool struct {
	db       *sql.DB
	config   PoolConfig
	dialect  Dialect
	observer QueryObserver
}

// NewPool validates config, opens the pool and verifies connectivity
func NewPool(config PoolConfig) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	dialect, _ := DialectFor(config.DriverName)

	db, err := sql.Open(config.DriverName, config.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", config.DriverName)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	timeout := config.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s database", config.DriverName)
	}

	return &Pool{
		db:       db,
		config:   config,
		dialect:  dialect,
		observer: config.Observer,
	}, nil
}

func (p *Pool) check(ctx context.Context, query string) error {
	if p == nil {
		return errNilPool
	}
	if p.db == nil {
		return errNotInit
	}
	if ctx == nil {
		return errNilContext
	}
	if query == "" {
		return errEmptyQuery
	}
	return nil
}

func (p *Pool) observe(operation string, start time.Time, err error) {
	if p.observer != nil {
		p.observer(operation, time.Since(start), err)
	}
}

// DB returns the underlying *sql.DB
func (p *Pool) DB() *sql.DB {
	if p == nil || p.db == nil {
		panic("pool not initialized")
	}
	return p.db
}

// Dialect returns the SQL dialect of the pool
func (p *Pool) Dialect() Dialect {
	return p.dialect
}

// SetObserver replaces the statement observer. Not safe for use while
// statements are running; call it during wiring.
func (p *Pool) SetObserver(o QueryObserver) {
	p.observer = o
}

// Close closes the connection pool
func (p *Pool) Close() error {
	if p == nil {
		return errNilPool
	}
	if p.db == nil {
		return &core.Error{Code: core.CodeInvalidState, Message: "pool already closed"}
	}
	return p.db.Close()
}

// Ping tests the connection
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.check(ctx, "ping"); err != nil {
		return err
	}
	return p.db.PingContext(ctx)
}

// Stats returns pool statistics; zero value when the pool is not initialized
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.db == nil {
		return sql.DBStats{}
	}
	return p.db.Stats()
}

// Query executes a query that returns rows
func (p *Pool) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := p.check(ctx, query); err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := p.db.QueryContext(ctx, p.dialect.Rebind(query), args...)
	p.observe("query", start, err)
	return rows, err
}

// QueryRow executes a query that returns at most one row.
// Invalid pool state panics, as *sql.Row cannot carry the error.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if err := p.check(ctx, query); err != nil {
		panic(err)
	}
	start := time.Now()
	row := p.db.QueryRowContext(ctx, p.dialect.Rebind(query), args...)
	p.observe("query_row", start, row.Err())
	return row
}

// Exec executes a statement
func (p *Pool) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := p.check(ctx, query); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := p.db.ExecContext(ctx, p.dialect.Rebind(query), args...)
	p.observe("exec", start, err)
	return res, err
}
