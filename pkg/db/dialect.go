package db

import (
	"strconv"
	"strings"

	"github.com/fluxorio/todos/pkg/core"

	// Registered drivers: "postgres" (lib/pq), "pgx" (pgx stdlib), "sqlite3".
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect is the SQL flavour spoken by a driver
type Dialect int

// Supported dialects
const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Driver names accepted by DialectFor
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
)

// Drivers lists the accepted driver names
var Drivers = []string{DriverSQLite, DriverPostgres, DriverPGX}

// DialectFor maps a driver name to its dialect
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite:
		return DialectSQLite, nil
	case DriverPostgres, DriverPGX:
		return DialectPostgres, nil
	default:
		return 0, &core.Error{
			Code:    core.CodeInvalidConfig,
			Message: "unsupported driver " + strconv.Quote(driver) + " (want one of " + strings.Join(Drivers, ", ") + ")",
		}
	}
}

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// Rebind rewrites '?' placeholders to the dialect's form.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// AutoIncrementPK is the column definition of an auto-assigned integer primary key
func (d Dialect) AutoIncrementPK() string {
	if d == DialectPostgres {
		return "SERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}
