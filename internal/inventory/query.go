package inventory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// SortField names an item attribute accepted for ordering.
type SortField string

// Supported sort fields.
const (
	SortBySKU         SortField = "sku"
	SortByName        SortField = "name"
	SortByCategory    SortField = "category"
	SortByLocation    SortField = "location"
	SortBySupplier    SortField = "supplier"
	SortByQuantity    SortField = "quantity"
	SortByUnitCost    SortField = "unitCost"
	SortByUnitPrice   SortField = "unitPrice"
	SortByMargin      SortField = "margin"
	SortByVersion     SortField = "version"
	SortByStockStatus SortField = "stockStatus"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByCreatedAt   SortField = "createdAt"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindTime
	kindRank
)

var sortFields = map[SortField]fieldKind{
	SortBySKU:         kindText,
	SortByName:        kindText,
	SortByCategory:    kindText,
	SortByLocation:    kindText,
	SortBySupplier:    kindText,
	SortByQuantity:    kindNumber,
	SortByUnitCost:    kindNumber,
	SortByUnitPrice:   kindNumber,
	SortByMargin:      kindNumber,
	SortByVersion:     kindNumber,
	SortByStockStatus: kindRank,
	SortByUpdatedAt:   kindTime,
	SortByCreatedAt:   kindTime,
}

// Criteria holds independent optional predicates combined with logical AND.
type Criteria struct {
	Category    *string
	StockStatus *StockStatus
	Location    *string
	Supplier    *string
	MinQuantity *int64
	MaxQuantity *int64
}

// IsEmpty reports whether no predicate is set.
func (c Criteria) IsEmpty() bool {
	return c.Category == nil && c.StockStatus == nil && c.Location == nil &&
		c.Supplier == nil && c.MinQuantity == nil && c.MaxQuantity == nil
}

// Validate rejects enum values and bounds the engine cannot evaluate.
func (c Criteria) Validate() error {
	qerr := &QueryError{}
	c.validateInto(qerr)
	if len(qerr.Fields) > 0 {
		return qerr
	}
	return nil
}

func (c Criteria) validateInto(qerr *QueryError) {
	if c.StockStatus != nil {
		if _, ok := stockStatusRank[*c.StockStatus]; !ok {
			qerr.Fields = append(qerr.Fields, FieldError{Field: "stockStatus", Message: "must be one of out_of_stock, low_stock, in_stock"})
		}
	}
	if c.MinQuantity != nil && *c.MinQuantity < 0 {
		qerr.Fields = append(qerr.Fields, FieldError{Field: "minQuantity", Message: "must be >= 0"})
	}
	if c.MaxQuantity != nil && *c.MaxQuantity < 0 {
		qerr.Fields = append(qerr.Fields, FieldError{Field: "maxQuantity", Message: "must be >= 0"})
	}
}

// SortSpec orders results by a single field.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// IsZero reports whether no ordering was requested.
func (s SortSpec) IsZero() bool {
	return s.Field == "" && s.Direction == ""
}

// Validate rejects unknown fields and directions.
func (s SortSpec) Validate() error {
	qerr := &QueryError{}
	s.validateInto(qerr)
	if len(qerr.Fields) > 0 {
		return qerr
	}
	return nil
}

func (s SortSpec) validateInto(qerr *QueryError) {
	if s.Field == "" {
		if s.Direction != "" {
			qerr.Fields = append(qerr.Fields, FieldError{Field: "sortBy", Message: "required when sortDir is set"})
		}
	} else if _, ok := sortFields[s.Field]; !ok {
		qerr.Fields = append(qerr.Fields, FieldError{Field: "sortBy", Message: "unknown field " + string(s.Field)})
	}
	switch s.Direction {
	case "", SortAsc, SortDesc:
	default:
		qerr.Fields = append(qerr.Fields, FieldError{Field: "sortDir", Message: "must be asc or desc"})
	}
}

// Query is the full read request: filter, then search, then sort.
type Query struct {
	Criteria Criteria
	Search   string
	Sort     SortSpec
}

// Validate checks every part of the query before any work happens.
func (q Query) Validate() error {
	qerr := &QueryError{}
	q.Criteria.validateInto(qerr)
	q.Sort.validateInto(qerr)
	if len(qerr.Fields) > 0 {
		return qerr
	}
	return nil
}

// Filter keeps items matching every supplied predicate, preserving input order.
func Filter(items []Item, c Criteria, t Thresholds) ([]Item, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return slices.Clone(items), nil
	}
	category := foldPtr(c.Category)
	location := foldPtr(c.Location)
	supplier := foldPtr(c.Supplier)

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if category != nil && normalizeKey(item.Category) != *category {
			continue
		}
		if location != nil && normalizeKey(item.Location) != *location {
			continue
		}
		if supplier != nil && normalizeKey(item.Supplier) != *supplier {
			continue
		}
		if c.MinQuantity != nil && item.Quantity < *c.MinQuantity {
			continue
		}
		if c.MaxQuantity != nil && item.Quantity > *c.MaxQuantity {
			continue
		}
		if c.StockStatus != nil && t.Status(item) != *c.StockStatus {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Search keeps items where term is a case-insensitive substring of sku, name,
// category, supplier or location. A blank term matches everything; otherwise
// surrounding whitespace is part of the term.
func Search(items []Item, term string) []Item {
	if strings.TrimSpace(term) == "" {
		return slices.Clone(items)
	}
	caser := cases.Fold()
	needle := caser.String(term)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		for _, field := range [...]string{item.SKU, item.Name, item.Category, item.Supplier, item.Location} {
			if strings.Contains(caser.String(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

type sortKey struct {
	item Item
	text string
	num  float64
	at   time.Time
}

// Sort orders items by a single field. Equal items keep their input order in
// both directions.
func Sort(items []Item, spec SortSpec, t Thresholds) ([]Item, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Field == "" {
		return slices.Clone(items), nil
	}
	kind := sortFields[spec.Field]
	caser := cases.Fold()
	keys := make([]sortKey, len(items))
	for i, item := range items {
		k := sortKey{item: item}
		switch kind {
		case kindText:
			k.text = caser.String(textField(item, spec.Field))
		case kindNumber:
			k.num = numberField(item, spec.Field)
		case kindTime:
			k.at = timeField(item, spec.Field)
		case kindRank:
			k.num = float64(stockStatusRank[t.Status(item)])
		}
		keys[i] = k
	}

	compare := func(a, b sortKey) int {
		switch kind {
		case kindText:
			return strings.Compare(a.text, b.text)
		case kindTime:
			return a.at.Compare(b.at)
		default:
			return cmp.Compare(a.num, b.num)
		}
	}
	if spec.Direction == SortDesc {
		asc := compare
		compare = func(a, b sortKey) int { return asc(b, a) }
	}
	slices.SortStableFunc(keys, compare)

	out := make([]Item, len(keys))
	for i, k := range keys {
		out[i] = k.item
	}
	return out, nil
}

func textField(item Item, field SortField) string {
	switch field {
	case SortBySKU:
		return item.SKU
	case SortByName:
		return item.Name
	case SortByCategory:
		return item.Category
	case SortByLocation:
		return item.Location
	default:
		return item.Supplier
	}
}

func numberField(item Item, field SortField) float64 {
	switch field {
	case SortByQuantity:
		return float64(item.Quantity)
	case SortByUnitCost:
		return item.UnitCost
	case SortByUnitPrice:
		return item.UnitPrice
	case SortByMargin:
		return item.UnitPrice - item.UnitCost
	default:
		return float64(item.Version)
	}
}

func timeField(item Item, field SortField) time.Time {
	if field == SortByCreatedAt {
		return item.CreatedAt
	}
	return item.UpdatedAt
}

// normalizeKey trims and case-folds a value for comparison.
func normalizeKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalizeKey(*s)
	return &v
}
