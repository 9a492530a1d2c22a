package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithParams(params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	got, err := ParseUUIDParam(requestWithParams(map[string]string{"id": id.String()}), "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(requestWithParams(map[string]string{"id": "nope"}), "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseUUIDParam(requestWithParams(nil), "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseDateParam(t *testing.T) {
	got, err := ParseDateParam(requestWithParams(map[string]string{"date": "2024-03-09"}), "date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateParam(requestWithParams(map[string]string{"date": "09/03/2024"}), "date")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?n=5", nil)
	n, err := ParseQueryInt(req, "n", 10, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	n, err = ParseQueryInt(req, "n", 10, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	req = httptest.NewRequest(http.MethodGet, "/?n=500", nil)
	_, err = ParseQueryInt(req, "n", 10, 0, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name     string  `json:"name" validate:"required"`
		Quantity float64 `json:"quantity" validate:"gt=0"`
	}

	var ok payload
	req := httptest.NewRequest(http.MethodPost, "/", stringsReader(`{"name":"oats","quantity":2}`))
	require.NoError(t, DecodeJSONBody(req, &ok))
	assert.Equal(t, "oats", ok.Name)

	var bad payload
	req = httptest.NewRequest(http.MethodPost, "/", stringsReader(`{"name":"","quantity":0}`))
	err := DecodeJSONBody(req, &bad)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, _ := typed.Details().(map[string]string)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be greater than 0", details["quantity"])

	var unknown payload
	req = httptest.NewRequest(http.MethodPost, "/", stringsReader(`{"name":"oats","quantity":1,"extra":true}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &unknown), pkgerrors.CodeValidation))
}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }
