package todo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fluxorio/todos/pkg/core/failfast"
	"github.com/fluxorio/todos/pkg/db"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fluxorio/todos/pkg/todo"

// Store persists todos
type Store interface {
	// FindAll returns every todo ordered by id; never nil
	FindAll(ctx context.Context) ([]Todo, error)

	// Insert stores d and returns the assigned id
	Insert(ctx context.Context, d Draft) (int64, error)

	// FindByID reports false when no todo has id
	FindByID(ctx context.Context, id int64) (Todo, bool, error)

	// DeleteByID removes the todo; an absent id is not an error
	DeleteByID(ctx context.Context, id int64) error

	// UpdateCompleted overwrites the completed flag only
	UpdateCompleted(ctx context.Context, id int64, completed bool) error
}

const (
	selectAllSQL       = "SELECT id, task, completed FROM todos ORDER BY id"
	selectByIDSQL      = "SELECT id, task, completed FROM todos WHERE id = ?"
	insertSQL          = "INSERT INTO todos(task, completed) VALUES(?, ?) RETURNING id"
	deleteByIDSQL      = "DELETE FROM todos WHERE id = ?"
	updateCompletedSQL = "UPDATE todos SET completed = ? WHERE id = ?"
)

// SQLStore implements Store on a db.Pool
type SQLStore struct {
	pool   *db.Pool
	tracer trace.Tracer
}

// NewSQLStore creates a store over pool
func NewSQLStore(pool *db.Pool) *SQLStore {
	failfast.NotNil(pool, "pool")
	return &SQLStore{pool: pool, tracer: otel.Tracer(tracerName)}
}

// EnsureSchema creates the todos table when it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	ctx, span := s.start(ctx, "ensure_schema")
	defer span.End()

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS todos (
	id %s,
	task TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
)`, s.pool.Dialect().AutoIncrementPK())

	_, err := s.pool.Exec(ctx, ddl)
	return s.fail(span, errors.Wrap(err, "create todos table"))
}

func (s *SQLStore) FindAll(ctx context.Context) ([]Todo, error) {
	ctx, span := s.start(ctx, "find_all")
	defer span.End()

	rows, err := s.pool.Query(ctx, selectAllSQL)
	if err != nil {
		return nil, s.fail(span, errors.Wrap(err, "list todos"))
	}
	defer rows.Close()

	todos := make([]Todo, 0)
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Task, &t.Completed); err != nil {
			return nil, s.fail(span, errors.Wrap(err, "scan todo"))
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(span, errors.Wrap(err, "list todos"))
	}
	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	return todos, nil
}

func (s *SQLStore) Insert(ctx context.Context, d Draft) (int64, error) {
	ctx, span := s.start(ctx, "insert")
	defer span.End()

	var id int64
	if err := s.pool.QueryRow(ctx, insertSQL, d.Task, d.Completed).Scan(&id); err != nil {
		return 0, s.fail(span, errors.Wrap(err, "insert todo"))
	}
	span.SetAttributes(attribute.Int64("todo.id", id))
	return id, nil
}

func (s *SQLStore) FindByID(ctx context.Context, id int64) (Todo, bool, error) {
	ctx, span := s.start(ctx, "find_by_id")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	var t Todo
	err := s.pool.QueryRow(ctx, selectByIDSQL, id).Scan(&t.ID, &t.Task, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Todo{}, false, nil
	}
	if err != nil {
		return Todo{}, false, s.fail(span, errors.Wrapf(err, "find todo %d", id))
	}
	return t, true, nil
}

func (s *SQLStore) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := s.start(ctx, "delete_by_id")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id))

	_, err := s.pool.Exec(ctx, deleteByIDSQL, id)
	return s.fail(span, errors.Wrapf(err, "delete todo %d", id))
}

func (s *SQLStore) UpdateCompleted(ctx context.Context, id int64, completed bool) error {
	ctx, span := s.start(ctx, "update_completed")
	defer span.End()
	span.SetAttributes(attribute.Int64("todo.id", id), attribute.Bool("todo.completed", completed))

	_, err := s.pool.Exec(ctx, updateCompletedSQL, completed, id)
	return s.fail(span, errors.Wrapf(err, "update todo %d", id))
}

func (s *SQLStore) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "todo.store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", s.pool.Dialect().String())))
}

// fail records err on span and returns it unchanged; nil is a no-op
func (s *SQLStore) fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
