package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newItemInput(sku, category string, qty int64, cost, price float64) NewItem {
	return NewItem{
		SKU:       ptr(sku),
		Name:      ptr("Item " + sku),
		Category:  ptr(category),
		Quantity:  ptr(qty),
		Location:  ptr("A-01"),
		UnitCost:  ptr(cost),
		UnitPrice: ptr(price),
		Supplier:  ptr("Acme"),
	}
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) ObserveMutation(op, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, op+":"+outcome)
}

func (o *recordingObserver) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}

func newTestService(t *testing.T, repo Repository) (*Service, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	svc := NewService(repo, nil, obs)
	clock := &stepClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	return svc, obs
}

func seedItems(t *testing.T, svc *Service, inputs ...NewItem) []Item {
	t.Helper()
	out := make([]Item, 0, len(inputs))
	for _, in := range inputs {
		item, err := svc.AddItem(context.Background(), in)
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}
