package inventory

import (
	"math"
	"strings"
	"time"
)

// StockStatus classifies item availability derived from quantity.
type StockStatus string

const (
	// StockStatusOutOfStock applies when quantity is zero.
	StockStatusOutOfStock StockStatus = "out_of_stock"
	// StockStatusLowStock applies when quantity is at or below the reorder threshold.
	StockStatusLowStock StockStatus = "low_stock"
	// StockStatusInStock applies above the reorder threshold.
	StockStatusInStock StockStatus = "in_stock"
)

// stockStatusRank orders statuses by severity, most severe first.
var stockStatusRank = map[StockStatus]int{
	StockStatusOutOfStock: 0,
	StockStatusLowStock:   1,
	StockStatusInStock:    2,
}

// ParseStockStatus validates a raw status value.
func ParseStockStatus(raw string) (StockStatus, bool) {
	status := StockStatus(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := stockStatusRank[status]
	return status, ok
}

// Item is the stored inventory record.
type Item struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  int64     `json:"quantity"`
	Location  string    `json:"location"`
	UnitCost  float64   `json:"unitCost"`
	UnitPrice float64   `json:"unitPrice"`
	Supplier  string    `json:"supplier"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemView is the caller-facing representation with derived fields attached.
type ItemView struct {
	Item
	StockStatus      StockStatus `json:"stockStatus"`
	ReorderThreshold int64       `json:"reorderThreshold"`
	Margin           float64     `json:"margin"`
	MarginPercent    float64     `json:"marginPercent"`
	StockValue       float64     `json:"stockValue"`
}

// Thresholds resolves the reorder threshold applied to an item.
type Thresholds struct {
	Default    int64
	ByCategory map[string]int64
}

// NewThresholds normalises category keys so lookups ignore case.
func NewThresholds(def int64, byCategory map[string]int64) Thresholds {
	t := Thresholds{Default: def, ByCategory: make(map[string]int64, len(byCategory))}
	for cat, n := range byCategory {
		t.ByCategory[normalizeKey(cat)] = n
	}
	return t
}

// For returns the threshold for the given category.
func (t Thresholds) For(category string) int64 {
	if n, ok := t.ByCategory[normalizeKey(category)]; ok {
		return n
	}
	return t.Default
}

// Status derives the stock status of an item.
func (t Thresholds) Status(item Item) StockStatus {
	return statusFor(item.Quantity, t.For(item.Category))
}

func statusFor(quantity, threshold int64) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= threshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// View attaches derived fields to a stored item.
func (t Thresholds) View(item Item) ItemView {
	threshold := t.For(item.Category)
	margin := item.UnitPrice - item.UnitCost
	var marginPct float64
	if item.UnitPrice > 0 {
		marginPct = round2(margin / item.UnitPrice * 100)
	}
	return ItemView{
		Item:             item,
		StockStatus:      statusFor(item.Quantity, threshold),
		ReorderThreshold: threshold,
		Margin:           round2(margin),
		MarginPercent:    marginPct,
		StockValue:       round2(float64(item.Quantity) * item.UnitCost),
	}
}

// CheckRecord reports structurally invalid stored records.
func CheckRecord(item Item) error {
	var missing []string
	if strings.TrimSpace(item.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(item.SKU) == "" {
		missing = append(missing, "sku")
	}
	if strings.TrimSpace(item.Name) == "" {
		missing = append(missing, "name")
	}
	if item.Quantity < 0 {
		missing = append(missing, "quantity")
	}
	if item.UnitCost < 0 || math.IsNaN(item.UnitCost) {
		missing = append(missing, "unitCost")
	}
	if item.UnitPrice < 0 || math.IsNaN(item.UnitPrice) {
		missing = append(missing, "unitPrice")
	}
	if item.Version < 1 {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return &CorruptRecordError{ID: item.ID, Fields: missing}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
