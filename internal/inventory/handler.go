package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/stockroom/internal/platform/httpx"
	"github.com/odyssey-erp/stockroom/internal/shared"
)

// Handler exposes the inventory engine as a JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	presenter *Presenter
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service, presenter *Presenter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, presenter: presenter}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.handleList)
	r.Get("/items/search", h.handleSearch)
	r.Get("/items/{id}", h.handleGet)
	r.Get("/summary", h.handleSummary)
	r.Post("/items", h.handleCreate)
	r.Patch("/items/{id}", h.handleUpdate)
	r.Delete("/items/{id}", h.handleDelete)
}

var errorRules = []httpx.ErrorRule{
	{Target: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed", Details: fieldDetails},
	{Target: ErrInvalidQuery, Status: http.StatusBadRequest, Title: "Invalid Query", Details: fieldDetails},
	{Target: httpx.ErrMalformedBody, Status: http.StatusBadRequest, Title: "Malformed Body"},
	{Target: ErrDuplicateKey, Status: http.StatusConflict, Title: "Duplicate SKU"},
	{Target: ErrConflict, Status: http.StatusPreconditionFailed, Title: "Version Conflict"},
	{Target: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Target: ErrCorruptRecord, Status: http.StatusInternalServerError, Title: "Corrupt Record"},
}

func fieldDetails(err error) any {
	return FieldErrors(err)
}

type listResponse struct {
	Items      []ItemView        `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, limit, err := shared.ParsePageParams(r.URL.Query())
	if err != nil {
		h.fail(w, r, &QueryError{Fields: []FieldError{{Field: "pagination", Message: err.Error()}}})
		return
	}
	views, err := h.presenter.GetAllItems(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := shared.NewPagination(page, limit, len(views))
	httpx.JSON(w, http.StatusOK, listResponse{Items: shared.Paginate(views, p), Pagination: p})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	views, err := h.presenter.SearchItems(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := shared.NewPagination(1, 0, len(views))
	httpx.JSON(w, http.StatusOK, listResponse{Items: views, Pagination: p})
}

type lookupResponse struct {
	Found bool      `json:"found"`
	ID    string    `json:"id,omitempty"`
	Item  *ItemView `json:"item,omitempty"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, found, err := h.presenter.GetItemByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		httpx.JSON(w, http.StatusNotFound, lookupResponse{Found: false, ID: id})
		return
	}
	httpx.JSON(w, http.StatusOK, lookupResponse{Found: true, ID: id, Item: &view})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sum, err := h.presenter.Summary(r.Context(), q.Criteria)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in NewItem
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.service.AddItem(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("ETag", etag(item.Version))
	w.Header().Set("Location", "/api/inventory/items/"+item.ID)
	httpx.JSON(w, http.StatusCreated, h.presenter.Thresholds().View(item))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	if patch.ExpectedVersion == nil {
		version, ok, err := parseIfMatch(r.Header.Get("If-Match"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if ok {
			patch.ExpectedVersion = &version
		}
	}
	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("ETag", etag(item.Version))
	httpx.JSON(w, http.StatusOK, h.presenter.Thresholds().View(item))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	conf, err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, conf)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !isClientError(err) {
		h.logger.Error("inventory request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	httpx.RespondError(w, err, errorRules...)
}

func isClientError(err error) bool {
	for _, target := range []error{ErrValidation, ErrInvalidQuery, httpx.ErrMalformedBody, ErrDuplicateKey, ErrConflict, ErrNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseQuery converts URL parameters into a Query. Every malformed parameter
// is reported; enum and range checks are left to Query.Validate.
func ParseQuery(values url.Values) (Query, error) {
	var q Query
	qerr := &QueryError{}

	q.Criteria.Category = optionalString(values, "category")
	q.Criteria.Location = optionalString(values, "location")
	q.Criteria.Supplier = optionalString(values, "supplier")
	if raw := strings.TrimSpace(values.Get("stockStatus")); raw != "" {
		status, _ := ParseStockStatus(raw)
		q.Criteria.StockStatus = &status
	}
	bounds := []struct {
		key  string
		dest **int64
	}{
		{"minQuantity", &q.Criteria.MinQuantity},
		{"maxQuantity", &q.Criteria.MaxQuantity},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(values.Get(b.key))
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			qerr.Fields = append(qerr.Fields, FieldError{Field: b.key, Message: "must be an integer"})
			continue
		}
		*b.dest = &n
	}
	q.Search = values.Get("search")
	q.Sort = SortSpec{
		Field:     SortField(strings.TrimSpace(values.Get("sortBy"))),
		Direction: SortDirection(strings.ToLower(strings.TrimSpace(values.Get("sortDir")))),
	}

	if err := q.Validate(); err != nil {
		var verr *QueryError
		if errors.As(err, &verr) {
			qerr.Fields = append(qerr.Fields, verr.Fields...)
		}
	}
	if len(qerr.Fields) > 0 {
		return Query{}, qerr
	}
	return q, nil
}

func optionalString(values url.Values, key string) *string {
	if _, ok := values[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func parseIfMatch(header string) (int64, bool, error) {
	raw := strings.TrimSpace(header)
	if raw == "" || raw == "*" {
		return 0, false, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 1 {
		return 0, false, &QueryError{Fields: []FieldError{{Field: "If-Match", Message: "must be a positive item version"}}}
	}
	return version, true, nil
}

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}
