package inventory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewItem is the payload for creating an item. Pointer fields distinguish
// "absent" from zero values so every missing field can be reported.
type NewItem struct {
	SKU       *string  `json:"sku" validate:"required,notblank,max=64"`
	Name      *string  `json:"name" validate:"required,notblank,max=200"`
	Category  *string  `json:"category" validate:"required,max=100"`
	Quantity  *int64   `json:"quantity" validate:"required,gte=0"`
	Location  *string  `json:"location" validate:"required,max=100"`
	UnitCost  *float64 `json:"unitCost" validate:"required,gte=0"`
	UnitPrice *float64 `json:"unitPrice" validate:"required,gte=0"`
	Supplier  *string  `json:"supplier" validate:"required,max=100"`
}

// Patch carries a partial update. Only non-nil fields are applied.
type Patch struct {
	SKU       *string  `json:"sku,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Quantity  *int64   `json:"quantity,omitempty"`
	Location  *string  `json:"location,omitempty"`
	UnitCost  *float64 `json:"unitCost,omitempty"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
	Supplier  *string  `json:"supplier,omitempty"`
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *int64 `json:"version,omitempty"`
}

// IsEmpty reports whether the patch changes no field.
func (p Patch) IsEmpty() bool {
	return p.SKU == nil && p.Name == nil && p.Category == nil && p.Quantity == nil &&
		p.Location == nil && p.UnitCost == nil && p.UnitPrice == nil && p.Supplier == nil
}

// Apply merges the patch onto item.
func (p Patch) Apply(item Item) Item {
	if p.SKU != nil {
		item.SKU = strings.TrimSpace(*p.SKU)
	}
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		item.Category = strings.TrimSpace(*p.Category)
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Location != nil {
		item.Location = strings.TrimSpace(*p.Location)
	}
	if p.UnitCost != nil {
		item.UnitCost = *p.UnitCost
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.Supplier != nil {
		item.Supplier = strings.TrimSpace(*p.Supplier)
	}
	return item
}

func newItemFrom(item Item) NewItem {
	return NewItem{
		SKU:       &item.SKU,
		Name:      &item.Name,
		Category:  &item.Category,
		Quantity:  &item.Quantity,
		Location:  &item.Location,
		UnitCost:  &item.UnitCost,
		UnitPrice: &item.UnitPrice,
		Supplier:  &item.Supplier,
	}
}

func (n NewItem) toItem() Item {
	return Item{
		SKU:       strings.TrimSpace(*n.SKU),
		Name:      strings.TrimSpace(*n.Name),
		Category:  strings.TrimSpace(*n.Category),
		Quantity:  *n.Quantity,
		Location:  strings.TrimSpace(*n.Location),
		UnitCost:  *n.UnitCost,
		UnitPrice: *n.UnitPrice,
		Supplier:  strings.TrimSpace(*n.Supplier),
	}
}

// newValidator builds the struct validator used for item payloads.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateItem checks every field and reports all violations together.
func validateItem(v *validator.Validate, in NewItem) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), fieldMessage(fe))
	}
	return verr.orNil()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "gte":
		return "must be >= " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
