package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

func TestRespondErrorMatchesWrappedTarget(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("lookup: %w", errMissing),
		ErrorRule{Target: errMissing, Status: http.StatusNotFound, Title: "Not Found",
			Details: func(error) any { return []string{"id"} }},
	)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Not Found", body["title"])
	require.Equal(t, "lookup: missing", body["detail"])
	require.Equal(t, []any{"id"}, body["errors"])
}

func TestRespondErrorHidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("dial tcp 10.0.0.3:5432: refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	require.NotContains(t, rr.Body.String(), "10.0.0.3")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Qty  int    `json:"qty"`
	}
	decode := func(body string) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(httptest.NewRecorder(), req, &p)
		return p, err
	}

	p, err := decode(`{"name":"bolt","qty":2}`)
	require.NoError(t, err)
	require.Equal(t, payload{Name: "bolt", Qty: 2}, p)

	_, err = decode(`{"name":"bolt","extra":true}`)
	require.ErrorIs(t, err, ErrMalformedBody)

	_, err = decode(`{"qty":"two"}`)
	require.ErrorIs(t, err, ErrMalformedBody)
	require.Contains(t, err.Error(), `"qty"`)

	_, err = decode(`{"qty":1}{"qty":2}`)
	require.ErrorIs(t, err, ErrMalformedBody)
}
