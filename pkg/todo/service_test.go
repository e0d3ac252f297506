package todo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingStore fails every call with err
type failingStore struct{ err error }

func (f failingStore) FindAll(context.Context) ([]Todo, error)            { return nil, f.err }
func (f failingStore) Insert(context.Context, Draft) (int64, error)       { return 0, f.err }
func (f failingStore) DeleteByID(context.Context, int64) error            { return f.err }
func (f failingStore) UpdateCompleted(context.Context, int64, bool) error { return f.err }
func (f failingStore) FindByID(context.Context, int64) (Todo, bool, error) {
	return Todo{}, false, f.err
}

type outcome struct{ op, outcome string }

func newTestService(t *testing.T) (*Service, *recordingPublisher, *[]outcome) {
	t.Helper()

	pub := &recordingPublisher{}
	var outcomes []outcome
	svc := NewService(ServiceConfig{
		Store:     newTestStore(t),
		Publisher: pub,
		Observer:  func(op, o string) { outcomes = append(outcomes, outcome{op, o}) },
	})
	return svc, pub, &outcomes
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestService_Create(t *testing.T) {
	svc, pub, outcomes := newTestService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, CreateInput{Task: strPtr("Buy milk")})
	require.NoError(t, err)
	assert.Positive(t, todo.ID)
	assert.Equal(t, "Buy milk", todo.Task)
	assert.False(t, todo.Completed)

	todo, err = svc.Create(ctx, CreateInput{Task: strPtr(" padded "), Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, " padded ", todo.Task)
	assert.True(t, todo.Completed)

	assert.Equal(t, []string{events.TodoCreated, events.TodoCreated}, pub.types())
	assert.Equal(t, []outcome{{OpCreate, OutcomeSuccess}, {OpCreate, OutcomeSuccess}}, *outcomes)
}

func TestService_CreateRejectsEmptyTask(t *testing.T) {
	svc, pub, outcomes := newTestService(t)

	for _, in := range []CreateInput{
		{},
		{Task: strPtr("")},
		{Task: strPtr("   \t\n")},
	} {
		_, err := svc.Create(context.Background(), in)
		require.Error(t, err)
		assert.True(t, core.IsCode(err, core.CodeBadRequest))
		assert.Equal(t, MsgTaskEmpty, err.Error())
	}

	todos, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, todos)
	assert.Empty(t, pub.types())
	assert.Equal(t, outcome{OpCreate, OutcomeInvalid}, (*outcomes)[0])
}

func TestService_Delete(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, CreateInput{Task: strPtr("a")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, todo.ID))

	err = svc.Delete(ctx, todo.ID)
	assert.True(t, core.IsCode(err, core.CodeNotFound))
	assert.Equal(t, MsgNotFound, err.Error())

	assert.Equal(t, []string{events.TodoCreated, events.TodoDeleted}, pub.types())
}

func TestService_Complete(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Task: strPtr("a")})
	require.NoError(t, err)

	todo, err := svc.Complete(ctx, created.ID, CompleteInput{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, Todo{ID: created.ID, Task: "a", Completed: true}, todo)

	// idempotent
	todo, err = svc.Complete(ctx, created.ID, CompleteInput{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, todo.Completed)

	todo, err = svc.Complete(ctx, created.ID, CompleteInput{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, todo.Completed)

	assert.Equal(t, []string{events.TodoCreated, events.TodoCompleted, events.TodoCompleted, events.TodoCompleted}, pub.types())
}

func TestService_CompleteChecksExistenceFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Complete(ctx, 999, CompleteInput{})
	assert.True(t, core.IsCode(err, core.CodeNotFound))

	created, err := svc.Create(ctx, CreateInput{Task: strPtr("a")})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, created.ID, CompleteInput{})
	assert.True(t, core.IsCode(err, core.CodeBadRequest))
	assert.Equal(t, MsgMissingDone, err.Error())
}

func TestService_PublishFailureIgnored(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	svc := NewService(ServiceConfig{Store: newTestStore(t), Publisher: pub})

	todo, err := svc.Create(context.Background(), CreateInput{Task: strPtr("a")})
	require.NoError(t, err)
	assert.Positive(t, todo.ID)
}

func TestService_StorageFailure(t *testing.T) {
	var outcomes []outcome
	svc := NewService(ServiceConfig{
		Store:    failingStore{err: errors.New("disk I/O error")},
		Observer: func(op, o string) { outcomes = append(outcomes, outcome{op, o}) },
	})
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.Equal(t, core.CodeInternal, core.CodeOf(err))

	_, err = svc.Create(ctx, CreateInput{Task: strPtr("a")})
	assert.Error(t, err)

	err = svc.Delete(ctx, 1)
	assert.Equal(t, core.CodeInternal, core.CodeOf(err))

	_, err = svc.Complete(ctx, 1, CompleteInput{Completed: boolPtr(true)})
	assert.Equal(t, core.CodeInternal, core.CodeOf(err))

	assert.Equal(t, []outcome{
		{OpList, OutcomeError},
		{OpCreate, OutcomeError},
		{OpDelete, OutcomeError},
		{OpComplete, OutcomeError},
	}, outcomes)
}
