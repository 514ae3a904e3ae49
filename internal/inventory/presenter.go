package inventory

import (
	"context"
	"fmt"
)

// Presenter is the read path. It never mutates the repository and always
// returns derived views.
type Presenter struct {
	repo       Repository
	thresholds Thresholds
}

// NewPresenter builds Presenter.
func NewPresenter(repo Repository, thresholds Thresholds) *Presenter {
	return &Presenter{repo: repo, thresholds: thresholds}
}

// Thresholds exposes the reorder configuration applied to views.
func (p *Presenter) Thresholds() Thresholds {
	return p.thresholds
}

// GetAllItems validates q, then filters, searches and sorts in that order.
func (p *Presenter) GetAllItems(ctx context.Context, q Query) ([]ItemView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	items, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	items, err = Filter(items, q.Criteria, p.thresholds)
	if err != nil {
		return nil, err
	}
	items = Search(items, q.Search)
	items, err = Sort(items, q.Sort, p.thresholds)
	if err != nil {
		return nil, err
	}
	return p.views(items), nil
}

// SearchItems runs a free-text search over all items.
func (p *Presenter) SearchItems(ctx context.Context, term string) ([]ItemView, error) {
	return p.GetAllItems(ctx, Query{Search: term})
}

// GetItemByID returns found=false for a missing id rather than an error.
func (p *Presenter) GetItemByID(ctx context.Context, id string) (ItemView, bool, error) {
	item, ok, err := p.repo.Get(ctx, id)
	if err != nil {
		return ItemView{}, false, fmt.Errorf("inventory: get item: %w", err)
	}
	if !ok {
		return ItemView{}, false, nil
	}
	if err := CheckRecord(item); err != nil {
		return ItemView{}, false, err
	}
	return p.thresholds.View(item), true, nil
}

// Summary aggregates stock status counts over the filtered set.
type Summary struct {
	Total      int                 `json:"total"`
	ByStatus   map[StockStatus]int `json:"byStatus"`
	TotalUnits int64               `json:"totalUnits"`
	StockValue float64             `json:"stockValue"`
}

// Summary reports counts per stock status and total stock value for items
// matching c.
func (p *Presenter) Summary(ctx context.Context, c Criteria) (Summary, error) {
	views, err := p.GetAllItems(ctx, Query{Criteria: c})
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		ByStatus: map[StockStatus]int{
			StockStatusOutOfStock: 0,
			StockStatusLowStock:   0,
			StockStatusInStock:    0,
		},
	}
	for _, v := range views {
		sum.Total++
		sum.ByStatus[v.StockStatus]++
		sum.TotalUnits += v.Quantity
		sum.StockValue += v.StockValue
	}
	sum.StockValue = round2(sum.StockValue)
	return sum, nil
}

func (p *Presenter) load(ctx context.Context) ([]Item, error) {
	items, err := p.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list items: %w", err)
	}
	for _, item := range items {
		if err := CheckRecord(item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Presenter) views(items []Item) []ItemView {
	out := make([]ItemView, len(items))
	for i, item := range items {
		out[i] = p.thresholds.View(item)
	}
	return out
}
