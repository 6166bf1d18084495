package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "abc123", []byte(`{"n":1}`)))

	data, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"n":1}`), data)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc123", []byte("x")))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "abc123", []byte(`{"n":1}`)))

	data, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"n":1}`), data)

	// Overwrite keeps the newest value
	require.NoError(t, store.Put(ctx, "abc123", []byte(`{"n":2}`)))
	data, err = store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"n":2}`), data)
}

func TestPostgresStoreUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS draft_rejections")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewPostgresStore(ctx, db)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO draft_rejections")).
		WithArgs("abc123", []byte(`{"n":1}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Put(ctx, "abc123", []byte(`{"n":1}`)))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM draft_rejections")).
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow([]byte(`{"n":1}`)))
	data, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"n":1}`), data)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM draft_rejections")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"record"}))
	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// failingStore simulates an unreachable backend.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("connection refused")
}
func (failingStore) Name() string { return "failing" }

func TestDualStoreReadFallsBackToDurable(t *testing.T) {
	durable, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, durable.Put(ctx, "abc123", []byte("v")))

	dual := NewDualStore(failingStore{}, durable, time.Second)
	data, err := dual.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

func TestDualStoreBackfillsFastTier(t *testing.T) {
	fast, _ := setupRedis(t)
	durable, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, durable.Put(ctx, "abc123", []byte("v")))

	dual := NewDualStore(fast, durable, time.Second)
	_, err = dual.Get(ctx, "abc123")
	require.NoError(t, err)

	data, err := fast.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

func TestDualStoreWriteToleratesOneFailure(t *testing.T) {
	durable, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	dual := NewDualStore(failingStore{}, durable, time.Second)
	require.NoError(t, dual.Put(ctx, "abc123", []byte("v")))

	data, err := durable.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

func TestDualStoreTotalFailure(t *testing.T) {
	ctx := context.Background()
	dual := NewDualStore(failingStore{}, failingStore{}, time.Second)

	assert.Error(t, dual.Put(ctx, "abc123", []byte("v")))

	// Reads degrade to "not found" rather than surfacing backend errors
	_, err := dual.Get(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}
