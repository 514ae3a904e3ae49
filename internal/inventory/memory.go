package inventory

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps items in process memory. Used for local runs and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items    map[string]Item
	bySKU    map[string]string
	revision int64
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]Item),
		bySKU: make(map[string]string),
	}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *MemoryRepository) GetBySKU(ctx context.Context, sku string) (Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySKU[sku]
	if !ok {
		return Item{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySKU[item.SKU]; ok {
		return ErrDuplicateKey
	}
	if _, ok := r.items[item.ID]; ok {
		return ErrDuplicateKey
	}
	r.items[item.ID] = item
	r.bySKU[item.SKU] = item.ID
	r.revision++
	return nil
}

func (r *MemoryRepository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	if owner, taken := r.bySKU[item.SKU]; taken && owner != id {
		return ErrDuplicateKey
	}
	item.ID = id
	delete(r.bySKU, current.SKU)
	r.items[id] = item
	r.bySKU[item.SKU] = id
	r.revision++
	return nil
}

func (r *MemoryRepository) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	delete(r.bySKU, current.SKU)
	r.revision++
	return nil
}

func (r *MemoryRepository) Revision(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision, nil
}
