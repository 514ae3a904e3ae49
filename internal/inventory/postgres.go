package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/stockroom/internal/platform/db"
)

const uniqueViolation = "23505"

const itemColumns = `id, sku, name, category, quantity, location, unit_cost, unit_price, supplier, version, created_at, updated_at`

var schemaStatements = []string{`
CREATE TABLE IF NOT EXISTS inventory_items (
	id          UUID PRIMARY KEY,
	sku         TEXT NOT NULL,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	quantity    BIGINT NOT NULL CHECK (quantity >= 0),
	location    TEXT NOT NULL DEFAULT '',
	unit_cost   NUMERIC(14,2) NOT NULL CHECK (unit_cost >= 0),
	unit_price  NUMERIC(14,2) NOT NULL CHECK (unit_price >= 0),
	supplier    TEXT NOT NULL DEFAULT '',
	version     BIGINT NOT NULL DEFAULT 1,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_inventory_items_sku ON inventory_items (sku)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_created ON inventory_items (created_at, id)`,
	`CREATE TABLE IF NOT EXISTS inventory_revision (
	id    BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
	value BIGINT NOT NULL DEFAULT 0
)`,
	`INSERT INTO inventory_revision (id, value) VALUES (TRUE, 0) ON CONFLICT (id) DO NOTHING`,
}

const bumpRevision = `UPDATE inventory_revision SET value = value + 1`

// PostgresRepository persists inventory items in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies the schema. Safe to run repeatedly.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if err := db.Migrate(ctx, r.pool, schemaStatements...); err != nil {
		return fmt.Errorf("inventory: migrate: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Item, bool, error) {
	if uuid.Validate(id) != nil {
		return Item{}, false, nil
	}
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
	return scanOne(row)
}

func (r *PostgresRepository) GetBySKU(ctx context.Context, sku string) (Item, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE sku = $1`, sku)
	return scanOne(row)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("inventory: scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Insert(ctx context.Context, item Item) error {
	err := db.WithTxLevel(ctx, r.pool, pgx.ReadCommitted, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory_items (`+itemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			item.ID, item.SKU, item.Name, item.Category, item.Quantity, item.Location,
			item.UnitCost, item.UnitPrice, item.Supplier, item.Version, item.CreatedAt, item.UpdatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, bumpRevision)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("inventory: insert: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, item Item) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	err := db.WithTxLevel(ctx, r.pool, pgx.ReadCommitted, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE inventory_items
			SET sku = $3, name = $4, category = $5, quantity = $6, location = $7,
			    unit_cost = $8, unit_price = $9, supplier = $10, version = $11, updated_at = $12
			WHERE id = $1 AND version = $2`,
			id, expectedVersion, item.SKU, item.Name, item.Category, item.Quantity, item.Location,
			item.UnitCost, item.UnitPrice, item.Supplier, item.Version, item.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			_, err := tx.Exec(ctx, bumpRevision)
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM inventory_items WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("inventory: update check: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVersionConflict):
		return err
	case isUniqueViolation(err):
		return ErrDuplicateKey
	default:
		return fmt.Errorf("inventory: update: %w", err)
	}
}

func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	err := db.WithTxLevel(ctx, r.pool, pgx.ReadCommitted, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, bumpRevision)
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("inventory: delete: %w", err)
	}
}

func (r *PostgresRepository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	if err := r.pool.QueryRow(ctx, `SELECT value FROM inventory_revision WHERE id`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("inventory: revision: %w", err)
	}
	return rev, nil
}

func scanOne(row pgx.Row) (Item, bool, error) {
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, false, nil
		}
		return Item{}, false, fmt.Errorf("inventory: get: %w", err)
	}
	return item, true, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.SKU, &item.Name, &item.Category, &item.Quantity, &item.Location,
		&item.UnitCost, &item.UnitPrice, &item.Supplier, &item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
