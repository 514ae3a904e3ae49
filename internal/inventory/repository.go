package inventory

import "context"

// Repository is the storage contract the service and presenter depend on.
// Every call is atomic on its own; callers never compose multi-step transactions.
type Repository interface {
	Get(ctx context.Context, id string) (Item, bool, error)
	GetBySKU(ctx context.Context, sku string) (Item, bool, error)
	// List returns live items in no particular order.
	List(ctx context.Context) ([]Item, error)
	// Insert fails with ErrDuplicateKey when the sku is taken.
	Insert(ctx context.Context, item Item) error
	// CompareAndSwap replaces the record only if its stored version equals
	// expectedVersion. It fails with ErrVersionConflict, ErrNotFound or
	// ErrDuplicateKey.
	CompareAndSwap(ctx context.Context, id string, expectedVersion int64, item Item) error
	// Remove fails with ErrNotFound when the id is absent.
	Remove(ctx context.Context, id string) error
	// Revision advances with every successful write, in the same atomic step
	// as the write, so any reader observing a revision also observes every
	// write up to it.
	Revision(ctx context.Context) (int64, error)
}
