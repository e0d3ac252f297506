package todo

import (
	"context"
	"testing"

	"github.com/fluxorio/todos/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *db.Pool {
	t.Helper()

	config := db.DefaultPoolConfig(":memory:", db.DriverSQLite)
	// a single connection keeps one in-memory database for the whole test
	config.MaxOpenConns = 1
	config.MaxIdleConns = 1
	config.ConnMaxLifetime = 0
	config.ConnMaxIdleTime = 0

	pool, err := db.NewPool(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()

	store := NewSQLStore(newTestPool(t))
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func TestSQLStore_EnsureSchemaIdempotent(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.EnsureSchema(context.Background()))
}

func TestSQLStore_FindAllEmpty(t *testing.T) {
	store := newTestStore(t)

	todos, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestSQLStore_InsertAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Insert(ctx, Draft{Task: "buy milk"})
	require.NoError(t, err)
	id2, err := store.Insert(ctx, Draft{Task: "  walk dog  ", Completed: true})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, found, err := store.FindByID(ctx, id2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Todo{ID: id2, Task: "  walk dog  ", Completed: true}, got)

	todos, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Todo{
		{ID: id1, Task: "buy milk", Completed: false},
		{ID: id2, Task: "  walk dog  ", Completed: true},
	}, todos)
}

func TestSQLStore_FindByIDMissing(t *testing.T) {
	store := newTestStore(t)

	got, found, err := store.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Todo{}, got)
}

func TestSQLStore_UpdateCompleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, Draft{Task: "write tests"})
	require.NoError(t, err)

	require.NoError(t, store.UpdateCompleted(ctx, id, true))
	got, _, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "write tests", got.Task)

	require.NoError(t, store.UpdateCompleted(ctx, id, false))
	got, _, err = store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestSQLStore_DeleteByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, Draft{Task: "temp"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteByID(ctx, id))
	_, found, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	// absent id is a no-op
	assert.NoError(t, store.DeleteByID(ctx, id))
}

func TestSQLStore_IDsNotReused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Insert(ctx, Draft{Task: "a"})
	require.NoError(t, err)
	require.NoError(t, store.DeleteByID(ctx, id1))

	id2, err := store.Insert(ctx, Draft{Task: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestSQLStore_StorageFailure(t *testing.T) {
	pool := newTestPool(t)
	store := NewSQLStore(pool)
	// no schema: every statement fails

	_, err := store.FindAll(context.Background())
	assert.Error(t, err)

	_, err = store.Insert(context.Background(), Draft{Task: "x"})
	assert.Error(t, err)

	_, _, err = store.FindByID(context.Background(), 1)
	assert.Error(t, err)
}
