package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockroom/internal/inventory"
)

func ptr[T any](v T) *T { return &v }

func TestInventoryStackMemoryWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &Config{
		StoreDriver:       StoreDriverMemory,
		RedisAddr:         mr.Addr(),
		CacheEnabled:      true,
		CacheTTL:          time.Minute,
		ReorderThreshold:  5,
		ReorderThresholds: map[string]int64{"Bulk": 100},
	}
	stack, err := NewInventoryStack(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, stack.Close()) })

	_, cached := stack.Repository.(*inventory.CachedRepository)
	require.True(t, cached)
	require.Contains(t, stack.Checks, "redis")
	require.NoError(t, stack.Checks["redis"](context.Background()))

	item, err := stack.Service.AddItem(context.Background(), inventory.NewItem{
		SKU: ptr("B-1"), Name: ptr("Washers"), Category: ptr("bulk"), Quantity: ptr(int64(60)),
		Location: ptr("C-3"), UnitCost: ptr(0.02), UnitPrice: ptr(0.05), Supplier: ptr("Acme"),
	})
	require.NoError(t, err)

	view, found, err := stack.Presenter.GetItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, inventory.StockStatusLowStock, view.StockStatus)
}

func TestInventoryStackSkipsUnreachableCache(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &Config{StoreDriver: StoreDriverMemory, RedisAddr: addr, CacheEnabled: true, CacheTTL: time.Minute}
	stack, err := NewInventoryStack(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	_, isMemory := stack.Repository.(*inventory.MemoryRepository)
	require.True(t, isMemory)
	require.Empty(t, stack.Checks)
}
