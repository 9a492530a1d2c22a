package openfoodfacts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestLookupBarcodeMapsProduct(t *testing.T) {
	respBody := `{"status":1,"product":{"code":"4001724819806","product_name":"Haferflocken","brands":"Koelln",
		"ingredients":[{"text":"Vollkornhaferflocken"},{"text":""},{"text":"Salz"}],
		"serving_quantity":"40","nutriments":{"energy-kcal_100g":372,"proteins_100g":"13,5","carbohydrates_100g":58.7,"fat_100g":7}}}`

	var captured *http.Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := NewClient(WithBaseURL("http://off.test/"), WithHTTPClient(&http.Client{Transport: rt}), WithUserAgent("fork-tests/0.1"))
	product, err := client.LookupBarcode(context.Background(), " 4001724819806 ")
	require.NoError(t, err)
	require.NotNil(t, product)

	assert.Equal(t, "/api/v2/product/4001724819806.json", captured.URL.Path)
	assert.Equal(t, "fork-tests/0.1", captured.Header.Get("User-Agent"))
	assert.Equal(t, "Haferflocken", product.ProductName)
	assert.Equal(t, "Vollkornhaferflocken, Salz", product.IngredientsText())
	assert.InDelta(t, 40, product.ServingQuantity.Float(), 1e-9)
	assert.InDelta(t, 13.5, product.Nutriments.Proteins100g.Float(), 1e-9)
	assert.InDelta(t, 372, product.Nutriments.EnergyKcal100g.Float(), 1e-9)
}

func TestLookupBarcodeMissReturnsNil(t *testing.T) {
	cases := map[string]*http.Response{
		"status zero": jsonResponse(http.StatusOK, `{"status":0,"status_verbose":"product not found"}`),
		"http 404":    jsonResponse(http.StatusNotFound, `{"status":0}`),
	}
	for name, resp := range cases {
		resp := resp
		t.Run(name, func(t *testing.T) {
			rt := roundTripFunc(func(*http.Request) (*http.Response, error) { return resp, nil })
			client := NewClient(WithBaseURL("http://off.test"), WithHTTPClient(&http.Client{Transport: rt}))
			product, err := client.LookupBarcode(context.Background(), "000")
			require.NoError(t, err)
			assert.Nil(t, product)
		})
	}
}

func TestLookupBarcodeFailuresAreResolutionErrors(t *testing.T) {
	cases := map[string]roundTripFunc{
		"server error": func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadGateway, "upstream down"), nil
		},
		"malformed payload": func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"status":1,"product":`), nil
		},
		"transport": func(*http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}
	for name, rt := range cases {
		rt := rt
		t.Run(name, func(t *testing.T) {
			client := NewClient(WithBaseURL("http://off.test"), WithHTTPClient(&http.Client{Transport: rt}))
			_, err := client.LookupBarcode(context.Background(), "123")
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResolution))
			assert.Equal(t, Source, pkgerrors.SourceOf(err))
		})
	}
}

func TestLookupBarcodeRequiresCode(t *testing.T) {
	client := NewClient()
	_, err := client.LookupBarcode(context.Background(), "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSearchTextSendsQueryAndTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "skyr natur", q.Get("search_terms"))
		assert.Equal(t, "1", q.Get("json"))
		assert.Equal(t, "2", q.Get("page_size"))
		assert.Equal(t, "de", q.Get("cc"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"products":[{"code":"1","product_name":"Skyr"},{"code":"2","product_name":"Skyr Natur"},{"code":"3","product_name":"Extra"}]}`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithCountry("DE"))
	products, err := client.SearchText(context.Background(), "skyr natur", 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Skyr Natur", products[1].ProductName)
}

func TestNilClientIsResolutionError(t *testing.T) {
	var client *Client
	_, err := client.SearchText(context.Background(), "apple", 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResolution))
}
