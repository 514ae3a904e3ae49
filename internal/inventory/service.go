package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MutationObserver receives the outcome of every write.
type MutationObserver interface {
	ObserveMutation(op, outcome string)
}

// Service is the only writer path into the repository.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	observer MutationObserver
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds Service. observer may be nil.
func NewService(repo Repository, logger *slog.Logger, observer MutationObserver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		observer: observer,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DeleteConfirmation acknowledges a removed item.
type DeleteConfirmation struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	DeletedAt time.Time `json:"deletedAt"`
}

// AddItem validates and stores a new item with version 1.
func (s *Service) AddItem(ctx context.Context, in NewItem) (item Item, err error) {
	defer func() { s.record(ctx, "add", err, slog.String("sku", deref(in.SKU))) }()

	if err := validateItem(s.validate, in); err != nil {
		return Item{}, err
	}
	item = in.toItem()
	if _, exists, err := s.repo.GetBySKU(ctx, item.SKU); err != nil {
		return Item{}, fmt.Errorf("inventory: add item: %w", err)
	} else if exists {
		return Item{}, fmt.Errorf("%w: %q", ErrDuplicateKey, item.SKU)
	}

	now := s.now()
	item.ID = uuid.NewString()
	item.Version = 1
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := s.repo.Insert(ctx, item); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return Item{}, fmt.Errorf("%w: %q", ErrDuplicateKey, item.SKU)
		}
		return Item{}, fmt.Errorf("inventory: add item: %w", err)
	}
	return item, nil
}

// UpdateItem applies a partial update guarded by optimistic concurrency.
func (s *Service) UpdateItem(ctx context.Context, id string, patch Patch) (item Item, err error) {
	defer func() { s.record(ctx, "update", err, slog.String("id", id)) }()

	current, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("inventory: update item: %w", err)
	}
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if patch.IsEmpty() {
		verr := &ValidationError{}
		verr.add("patch", "at least one field is required")
		return Item{}, verr
	}

	merged := patch.Apply(current)
	if err := validateItem(s.validate, newItemFrom(merged)); err != nil {
		return Item{}, err
	}

	expected := current.Version
	if patch.ExpectedVersion != nil {
		expected = *patch.ExpectedVersion
	}
	if merged.SKU != current.SKU {
		other, exists, err := s.repo.GetBySKU(ctx, merged.SKU)
		if err != nil {
			return Item{}, fmt.Errorf("inventory: update item: %w", err)
		}
		if exists && other.ID != id {
			return Item{}, fmt.Errorf("%w: %q", ErrDuplicateKey, merged.SKU)
		}
	}

	merged.Version = expected + 1
	merged.UpdatedAt = s.now()
	switch err := s.repo.CompareAndSwap(ctx, id, expected, merged); {
	case err == nil:
		return merged, nil
	case errors.Is(err, ErrVersionConflict):
		return Item{}, fmt.Errorf("%w: %s expected version %d", ErrConflict, id, expected)
	case errors.Is(err, ErrNotFound):
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case errors.Is(err, ErrDuplicateKey):
		return Item{}, fmt.Errorf("%w: %q", ErrDuplicateKey, merged.SKU)
	default:
		return Item{}, fmt.Errorf("inventory: update item: %w", err)
	}
}

// DeleteItem removes an item. Deleting an absent id fails with ErrNotFound.
func (s *Service) DeleteItem(ctx context.Context, id string) (conf DeleteConfirmation, err error) {
	defer func() { s.record(ctx, "delete", err, slog.String("id", id)) }()

	current, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return DeleteConfirmation{}, fmt.Errorf("inventory: delete item: %w", err)
	}
	if !ok {
		return DeleteConfirmation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.repo.Remove(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return DeleteConfirmation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return DeleteConfirmation{}, fmt.Errorf("inventory: delete item: %w", err)
	}
	return DeleteConfirmation{ID: id, SKU: current.SKU, DeletedAt: s.now()}, nil
}

func (s *Service) record(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	outcome := outcomeOf(err)
	if s.observer != nil {
		s.observer.ObserveMutation(op, outcome)
	}
	attrs = append(attrs, slog.String("op", op), slog.String("outcome", outcome))
	switch outcome {
	case "ok":
		s.logger.LogAttrs(ctx, slog.LevelInfo, "inventory mutation", attrs...)
	case "error":
		s.logger.LogAttrs(ctx, slog.LevelError, "inventory mutation failed", append(attrs, slog.Any("error", err))...)
	default:
		s.logger.LogAttrs(ctx, slog.LevelWarn, "inventory mutation rejected", append(attrs, slog.String("reason", err.Error()))...)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
