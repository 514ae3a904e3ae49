package inventory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// STOCKROOM_TEST_PG_DSN points at a disposable database. The suite truncates
// inventory_items before running.
func newPostgresRepo(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("STOCKROOM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("STOCKROOM_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE inventory_items`)
	require.NoError(t, err)
	return repo
}

func TestPostgresRepositoryLifecycle(t *testing.T) {
	repo := newPostgresRepo(t)
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.AddItem(ctx, newItemInput("PG-1", "Tools", 3, 2, 5))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, newItemInput("PG-1", "Tools", 3, 2, 5))
	require.ErrorIs(t, err, ErrDuplicateKey)

	got, found, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "PG-1", got.SKU)
	require.InDelta(t, 5.0, got.UnitPrice, 0.001)

	_, err = svc.UpdateItem(ctx, created.ID, Patch{Quantity: ptr(int64(0)), ExpectedVersion: ptr(int64(1))})
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, created.ID, Patch{Quantity: ptr(int64(1)), ExpectedVersion: ptr(int64(1))})
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.DeleteItem(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.DeleteItem(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepositoryRejectsMalformedIDs(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "not-a-uuid")
	require.NoError(t, err)
	require.False(t, found)
	require.ErrorIs(t, repo.Remove(ctx, "not-a-uuid"), ErrNotFound)
	require.ErrorIs(t, repo.CompareAndSwap(ctx, uuid.NewString(), 1, Item{SKU: "X"}), ErrNotFound)
}

func TestPostgresRepositoryRevisionTracksWrites(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	item := Item{ID: uuid.NewString(), SKU: "REV-1", Name: "Rev", Quantity: 1, Version: 1, CreatedAt: now, UpdatedAt: now}

	start, err := repo.Revision(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Insert(ctx, item))
	require.ErrorIs(t, repo.Insert(ctx, Item{ID: uuid.NewString(), SKU: "REV-1", Name: "Dup", Version: 1, CreatedAt: now, UpdatedAt: now}), ErrDuplicateKey)
	rev, err := repo.Revision(ctx)
	require.NoError(t, err)
	require.Equal(t, start+1, rev)

	next := item
	next.Version = 2
	require.NoError(t, repo.CompareAndSwap(ctx, item.ID, 1, next))
	require.ErrorIs(t, repo.CompareAndSwap(ctx, item.ID, 1, next), ErrVersionConflict)
	require.NoError(t, repo.Remove(ctx, item.ID))

	rev, err = repo.Revision(ctx)
	require.NoError(t, err)
	require.Equal(t, start+3, rev)
}
