package todo

import (
	"context"
	"strings"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/core/failfast"
	"github.com/fluxorio/todos/pkg/events"
)

// Messages returned to clients
const (
	MsgAdded       = "Todo added successfully"
	MsgDeleted     = "Todo deleted successfully"
	MsgUpdated     = "Todo updated successfully"
	MsgTaskEmpty   = "Task cannot be empty"
	MsgNotFound    = "Todo not found"
	MsgMissingDone = "Missing 'completed' field in request body"
	MsgInvalidBody = "Invalid request body"
	MsgInvalidID   = "Invalid todo id"
)

// Operation names and outcomes passed to OperationObserver
const (
	OpList     = "list"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpComplete = "complete"

	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// OperationObserver is told the outcome of every service call
type OperationObserver func(operation, outcome string)

// CreateInput is the parsed body of a create request.
// Nil fields were absent from the body.
type CreateInput struct {
	Task      *string `json:"task"`
	Completed *bool   `json:"completed"`
}

// CompleteInput is the parsed body of a complete request
type CompleteInput struct {
	Completed *bool `json:"completed"`
}

// ServiceConfig configures a Service
type ServiceConfig struct {
	Store     Store
	Publisher events.Publisher  // default: events.NopPublisher
	Logger    core.Logger       // default: core.NewNopLogger()
	Observer  OperationObserver // optional
}

// Service implements the todo operations independent of HTTP.
// Failures are *core.Error for client mistakes and wrapped storage errors otherwise.
type Service struct {
	store     Store
	publisher events.Publisher
	logger    core.Logger
	observer  OperationObserver
}

// NewService creates a service
func NewService(config ServiceConfig) *Service {
	failfast.NotNil(config.Store, "store")
	s := &Service{
		store:     config.Store,
		publisher: config.Publisher,
		logger:    config.Logger,
		observer:  config.Observer,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = core.NewNopLogger()
	}
	return s
}

// List returns all todos in id order
func (s *Service) List(ctx context.Context) (todos []Todo, err error) {
	defer s.record(OpList, &err)
	return s.store.FindAll(ctx)
}

// Create validates in and stores a new todo. The task is stored as submitted;
// only the emptiness check ignores surrounding whitespace.
func (s *Service) Create(ctx context.Context, in CreateInput) (todo Todo, err error) {
	defer s.record(OpCreate, &err)

	if in.Task == nil || strings.TrimSpace(*in.Task) == "" {
		return Todo{}, core.BadRequest(MsgTaskEmpty)
	}
	draft := Draft{Task: *in.Task}
	if in.Completed != nil {
		draft.Completed = *in.Completed
	}

	id, err := s.store.Insert(ctx, draft)
	if err != nil {
		return Todo{}, err
	}
	todo = draft.Persisted(id)
	s.publish(ctx, events.TodoCreated, todo)
	return todo, nil
}

// Delete removes the todo with id
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer s.record(OpDelete, &err)

	todo, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return core.NotFound(MsgNotFound)
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TodoDeleted, todo)
	return nil
}

// Complete sets the completed flag of the todo with id. Existence is checked
// before the input, so an unknown id is NotFound even without a flag.
// The returned todo is the record read before the update with the new flag.
func (s *Service) Complete(ctx context.Context, id int64, in CompleteInput) (todo Todo, err error) {
	defer s.record(OpComplete, &err)

	todo, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Todo{}, err
	}
	if !found {
		return Todo{}, core.NotFound(MsgNotFound)
	}
	if in.Completed == nil {
		return Todo{}, core.BadRequest(MsgMissingDone)
	}

	if err := s.store.UpdateCompleted(ctx, id, *in.Completed); err != nil {
		return Todo{}, err
	}
	todo.Completed = *in.Completed
	s.publish(ctx, events.TodoCompleted, todo)
	return todo, nil
}

func (s *Service) publish(ctx context.Context, eventType string, todo Todo) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, todo)); err != nil {
		s.logger.Warn("publish event failed",
			"event", eventType,
			"todo_id", todo.ID,
			"request_id", core.GetRequestID(ctx),
			"error", err)
	}
}

func (s *Service) record(op string, errp *error) {
	if s.observer == nil {
		return
	}
	s.observer(op, Outcome(*errp))
}

// Outcome classifies err for metrics
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case core.IsCode(err, core.CodeBadRequest):
		return OutcomeInvalid
	case core.IsCode(err, core.CodeNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
