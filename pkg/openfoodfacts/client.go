package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
)

const (
	// Source is the resolution source tag used on errors raised by this client.
	Source = "openfoodfacts"

	defaultBaseURL              = "https://world.openfoodfacts.org"
	defaultUserAgent            = "fork-backend/1.0"
	defaultTimeout              = 8 * time.Second
	responseBodyReadLimit int64 = 1024
	productFields               = "code,product_name,brands,ingredients,serving_quantity,nutriments"
)

var errBarcodeRequired = errors.New("barcode is required")

// Client talks to the Open Food Facts product API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	country    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithUserAgent sets the User-Agent Open Food Facts asks API consumers to send.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = strings.TrimSpace(ua)
		}
	}
}

// WithCountry restricts text searches to a country code (e.g. "de").
func WithCountry(country string) Option {
	return func(c *Client) {
		c.country = strings.ToLower(strings.TrimSpace(country))
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 && c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient builds an Open Food Facts client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Product is the subset of an Open Food Facts product record the service maps.
type Product struct {
	Code            string       `json:"code"`
	ProductName     string       `json:"product_name"`
	Brands          string       `json:"brands"`
	Ingredients     []Ingredient `json:"ingredients"`
	ServingQuantity Number       `json:"serving_quantity"`
	Nutriments      Nutriments   `json:"nutriments"`
}

// Ingredient is one parsed ingredient of a product.
type Ingredient struct {
	Text string `json:"text"`
}

// Nutriments holds the per-100g values used for nutrition totals.
type Nutriments struct {
	EnergyKcal100g    Number `json:"energy-kcal_100g"`
	Proteins100g      Number `json:"proteins_100g"`
	Carbohydrates100g Number `json:"carbohydrates_100g"`
	Fat100g           Number `json:"fat_100g"`
}

// IngredientsText joins the ingredient texts with ", ".
func (p Product) IngredientsText() string {
	parts := make([]string, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		if ing.Text != "" {
			parts = append(parts, ing.Text)
		}
	}
	return strings.Join(parts, ", ")
}

// Number decodes numeric fields that the API sometimes serializes as strings.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse number %q: %w", s, err)
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// LookupBarcode fetches a single product. A nil product with a nil error means
// the catalog does not know the barcode.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.Resolution(Source, nil, "open food facts client not configured")
	}
	trimmed := strings.TrimSpace(barcode)
	if trimmed == "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errBarcodeRequired, "barcode is required")
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json?fields=%s", c.baseURL, url.PathEscape(trimmed), url.QueryEscape(productFields))
	var payload struct {
		Status  int      `json:"status"`
		Product *Product `json:"product"`
	}
	status, err := c.getJSON(ctx, endpoint, &payload, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || payload.Status != 1 || payload.Product == nil {
		return nil, nil
	}
	if payload.Product.Code == "" {
		payload.Product.Code = trimmed
	}
	return payload.Product, nil
}

// SearchText runs a full-text product search and returns at most limit products.
func (c *Client) SearchText(ctx context.Context, query string, limit int) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.Resolution(Source, nil, "open food facts client not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("search_terms", trimmed)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page", "1")
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("fields", productFields)
	if c.country != "" {
		params.Set("cc", c.country)
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if _, err := c.getJSON(ctx, c.baseURL+"/cgi/search.pl?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Products) > limit {
		payload.Products = payload.Products[:limit]
	}
	return payload.Products, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any, allowedStatus ...int) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, pkgerrors.Resolution(Source, err, "build open food facts request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, pkgerrors.Resolution(Source, err, "execute open food facts request")
	}
	defer func() { _ = resp.Body.Close() }()

	for _, allowed := range allowedStatus {
		if resp.StatusCode == allowed {
			return resp.StatusCode, nil
		}
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return resp.StatusCode, pkgerrors.Resolution(Source, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "open food facts request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, pkgerrors.Resolution(Source, err, "decode open food facts response")
	}
	return resp.StatusCode, nil
}
