package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/odyssey-erp/stockroom/internal/app"
	"github.com/odyssey-erp/stockroom/internal/inventory"
)

type sampleItem struct {
	sku       string
	name      string
	category  string
	quantity  int64
	location  string
	unitCost  float64
	unitPrice float64
	supplier  string
}

var samples = []sampleItem{
	{"ELEC-001", "USB-C Cable 1m", "Electronics", 120, "Warehouse A", 1.80, 4.99, "Voltline"},
	{"ELEC-002", "Wireless Mouse", "Electronics", 8, "Warehouse A", 6.50, 17.90, "Voltline"},
	{"ELEC-003", "27in Monitor", "Electronics", 0, "Warehouse B", 129.00, 219.00, "Panelworks"},
	{"OFF-001", "A4 Copy Paper (500)", "Office", 340, "Warehouse B", 2.10, 5.49, "Paperhouse"},
	{"OFF-002", "Stapler", "Office", 10, "Shelf 3", 3.25, 8.00, "Paperhouse"},
	{"OFF-003", "Whiteboard Marker Set", "Office", 4, "Shelf 3", 2.75, 6.95, "Inkwell"},
	{"FURN-001", "Ergonomic Chair", "Furniture", 12, "Warehouse C", 85.00, 189.00, "Seatco"},
	{"FURN-002", "Standing Desk", "Furniture", 0, "Warehouse C", 210.00, 449.00, "Seatco"},
	{"TOOL-001", "Cordless Drill", "Tools", 25, "Warehouse A", 48.00, 99.00, "Torque Bros"},
	{"TOOL-002", "Tape Measure 5m", "Tools", 3, "Shelf 1", 2.40, 6.50, "Torque Bros"},
}

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg)

	stack, err := app.NewInventoryStack(ctx, cfg, logger, nil)
	if err != nil {
		log.Fatalf("init inventory: %v", err)
	}
	defer stack.Close()

	fmt.Println("→ Seeding inventory items...")
	created, skipped := 0, 0
	for _, s := range samples {
		_, err := stack.Service.AddItem(ctx, s.toNewItem())
		switch {
		case err == nil:
			created++
		case errors.Is(err, inventory.ErrDuplicateKey):
			skipped++
		default:
			logger.Error("seed item", slog.String("sku", s.sku), slog.Any("error", err))
			log.Fatalf("seed %s: %v", s.sku, err)
		}
	}

	summary, err := stack.Presenter.Summary(ctx, inventory.Criteria{})
	if err != nil {
		log.Fatalf("summarise inventory: %v", err)
	}
	fmt.Printf("  created=%d skipped=%d total=%d out_of_stock=%d low_stock=%d\n",
		created, skipped, summary.Total,
		summary.ByStatus[inventory.StockStatusOutOfStock],
		summary.ByStatus[inventory.StockStatusLowStock])
	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func (s sampleItem) toNewItem() inventory.NewItem {
	return inventory.NewItem{
		SKU:       &s.sku,
		Name:      &s.name,
		Category:  &s.category,
		Quantity:  &s.quantity,
		Location:  &s.location,
		UnitCost:  &s.unitCost,
		UnitPrice: &s.unitPrice,
		Supplier:  &s.supplier,
	}
}
