package foods

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/embeddings"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/metrics"
	"github.com/angelmondragon/fork-backend/pkg/openfoodfacts"
	"github.com/angelmondragon/fork-backend/pkg/visibility"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	findByBarcode  func(ctx context.Context, barcode string, userID uuid.UUID) (*models.FoodItem, error)
	semanticSearch func(ctx context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error)
	lastLogged     func(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error)
}

func (f fakeCatalog) FindByBarcode(ctx context.Context, barcode string, userID uuid.UUID) (*models.FoodItem, error) {
	if f.findByBarcode == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "food item not found")
	}
	return f.findByBarcode(ctx, barcode, userID)
}

func (f fakeCatalog) SemanticSearch(ctx context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error) {
	if f.semanticSearch == nil {
		return nil, nil
	}
	return f.semanticSearch(ctx, q)
}

func (f fakeCatalog) LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error) {
	if f.lastLogged == nil {
		return nil, nil
	}
	return f.lastLogged(ctx, userID, n)
}

type fakeExternal struct {
	lookupBarcode func(ctx context.Context, barcode string) (*openfoodfacts.Product, error)
	searchText    func(ctx context.Context, query string, limit int) ([]openfoodfacts.Product, error)
}

func (f fakeExternal) LookupBarcode(ctx context.Context, barcode string) (*openfoodfacts.Product, error) {
	if f.lookupBarcode == nil {
		return nil, nil
	}
	return f.lookupBarcode(ctx, barcode)
}

func (f fakeExternal) SearchText(ctx context.Context, query string, limit int) ([]openfoodfacts.Product, error) {
	if f.searchText == nil {
		return nil, nil
	}
	return f.searchText(ctx, query, limit)
}

type fakeEmbedder struct {
	embed func(ctx context.Context, text string) (pgvector.Vector, error)
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if f.embed == nil {
		return pgvector.NewVector([]float32{1, 0}), nil
	}
	return f.embed(ctx, text)
}

func newTestResolver(t *testing.T, catalog Catalog, external ExternalCatalog, embedder embeddings.Provider) Resolver {
	t.Helper()
	if embedder == nil {
		embedder = fakeEmbedder{}
	}
	r, err := NewResolver(ResolverParams{
		Catalog:  catalog,
		External: external,
		Embedder: embedder,
		Metrics:  metrics.NewResolutionMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return r
}

func scored(name string, owner uuid.UUID, sim float64, mutate ...func(*models.FoodItem)) models.ScoredFoodItem {
	item := models.FoodItem{ID: uuid.New(), UserID: owner, Name: name}
	for _, fn := range mutate {
		fn(&item)
	}
	return models.ScoredFoodItem{FoodItem: item, Similarity: sim}
}

func TestSearchRejectsMalformedRequests(t *testing.T) {
	r := newTestResolver(t, fakeCatalog{}, fakeExternal{}, nil)
	userID := uuid.New()

	cases := map[string]SearchRequest{
		"both":           {Query: "apple", Barcode: "123"},
		"neither":        {},
		"blank":          {Query: "   "},
		"unknown source": {Query: "apple", Source: "usda"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Search(context.Background(), userID, req)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestSearchBarcodeLocalHit(t *testing.T) {
	userID := uuid.New()
	item := &models.FoodItem{ID: uuid.New(), UserID: userID, Name: "oats"}
	external := fakeExternal{lookupBarcode: func(context.Context, string) (*openfoodfacts.Product, error) {
		t.Fatal("external catalog must not be consulted on a local hit")
		return nil, nil
	}}
	r := newTestResolver(t, fakeCatalog{findByBarcode: func(_ context.Context, barcode string, uid uuid.UUID) (*models.FoodItem, error) {
		assert.Equal(t, "123", barcode)
		assert.Equal(t, userID, uid)
		return item, nil
	}}, external, nil)

	results, err := r.Search(context.Background(), userID, SearchRequest{Barcode: "123", Source: "openfoodfacts"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, item.ID, results[0].Item.ID)
	assert.False(t, results[0].Transient)
}

func TestSearchBarcodeExternalHitIsTransient(t *testing.T) {
	product := &openfoodfacts.Product{
		Code:            "3017620422003",
		ProductName:     "Nutella",
		Brands:          "Ferrero",
		Ingredients:     []openfoodfacts.Ingredient{{Text: "sugar"}, {Text: "palm oil"}},
		ServingQuantity: 15,
		Nutriments: openfoodfacts.Nutriments{
			EnergyKcal100g:    539,
			Proteins100g:      6.3,
			Carbohydrates100g: 57.5,
			Fat100g:           30.9,
		},
	}
	r := newTestResolver(t, fakeCatalog{}, fakeExternal{lookupBarcode: func(_ context.Context, barcode string) (*openfoodfacts.Product, error) {
		assert.Equal(t, "3017620422003", barcode)
		return product, nil
	}}, nil)

	results, err := r.Search(context.Background(), uuid.New(), SearchRequest{Barcode: "3017620422003"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	got := results[0]
	assert.True(t, got.Transient)
	assert.Equal(t, UnsavedID, got.Item.ID)
	assert.Equal(t, enums.FoodSourceOpenFoodFacts, got.Source)
	assert.Equal(t, "Nutella", got.Item.Name)
	assert.Equal(t, "Ferrero", got.Item.Brand)
	assert.Equal(t, 15.0, got.Item.ServingSize)
	assert.Equal(t, "serving", got.Item.ServingUnit)
	assert.Equal(t, 539.0, got.Item.CaloriesPer100)
	require.NotNil(t, got.Item.Barcode)
	assert.Equal(t, "3017620422003", *got.Item.Barcode)
	require.NotNil(t, got.Item.Description)
}

func TestSearchBarcodeMissEverywhereIsEmpty(t *testing.T) {
	r := newTestResolver(t, fakeCatalog{}, fakeExternal{}, nil)
	results, err := r.Search(context.Background(), uuid.New(), SearchRequest{Barcode: "000"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchBarcodeFailures(t *testing.T) {
	t.Run("local store", func(t *testing.T) {
		r := newTestResolver(t, fakeCatalog{findByBarcode: func(context.Context, string, uuid.UUID) (*models.FoodItem, error) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "persist food item")
		}}, fakeExternal{}, nil)
		_, err := r.Search(context.Background(), uuid.New(), SearchRequest{Barcode: "1"})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	})
	t.Run("external", func(t *testing.T) {
		r := newTestResolver(t, fakeCatalog{}, fakeExternal{lookupBarcode: func(context.Context, string) (*openfoodfacts.Product, error) {
			return nil, errors.New("timeout")
		}}, nil)
		_, err := r.Search(context.Background(), uuid.New(), SearchRequest{Barcode: "1"})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResolution))
		assert.Equal(t, openfoodfacts.Source, pkgerrors.SourceOf(err))
	})
}

func TestSearchSemanticRefiltersStoreOutput(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	var captured SemanticQuery
	catalog := fakeCatalog{semanticSearch: func(_ context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error) {
		captured = q
		return []models.ScoredFoodItem{
			scored("low", me, 0.4),
			scored("below threshold", me, 0.2),
			scored("hidden", me, 0.99, hidden),
			scored("foreign private", other, 0.95, private),
			scored("high", other, 0.9),
			scored("mid", me, 0.6),
		}, nil
	}}
	r := newTestResolver(t, catalog, fakeExternal{}, nil)

	results, err := r.Search(context.Background(), me, SearchRequest{Query: "apple", Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Item.Name)
	assert.Equal(t, "mid", results[1].Item.Name)
	require.NotNil(t, results[0].Similarity)
	assert.Equal(t, 0.9, *results[0].Similarity)

	assert.Equal(t, visibility.ScopeLocal, captured.Scope)
	assert.Equal(t, DefaultMinSimilarity, captured.MinSimilarity)
	assert.Equal(t, 2, captured.Limit)
}

func TestResolverKeepsConfiguredZeroThreshold(t *testing.T) {
	me := uuid.New()
	var captured SemanticQuery
	catalog := fakeCatalog{semanticSearch: func(_ context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error) {
		captured = q
		return []models.ScoredFoodItem{scored("faint", me, 0.1)}, nil
	}}
	zero := 0.0
	r, err := NewResolver(ResolverParams{
		Catalog:       catalog,
		External:      fakeExternal{},
		Embedder:      fakeEmbedder{},
		MinSimilarity: &zero,
	})
	require.NoError(t, err)

	results, err := r.Search(context.Background(), me, SearchRequest{Query: "pear"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, captured.MinSimilarity)

	tooHigh := 1.5
	_, err = NewResolver(ResolverParams{Catalog: catalog, External: fakeExternal{}, Embedder: fakeEmbedder{}, MinSimilarity: &tooHigh})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSearchPersonalScope(t *testing.T) {
	me := uuid.New()
	catalog := fakeCatalog{semanticSearch: func(_ context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error) {
		assert.Equal(t, visibility.ScopePersonal, q.Scope)
		return []models.ScoredFoodItem{
			scored("mine public", me, 0.9),
			scored("mine private", me, 0.8, private),
		}, nil
	}}
	r := newTestResolver(t, catalog, fakeExternal{}, nil)

	threshold := 0.5
	results, err := r.Search(context.Background(), me, SearchRequest{Query: "x", Source: "personal", MinSimilarity: &threshold})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mine private", results[0].Item.Name)
}

func TestSearchLimitClamp(t *testing.T) {
	var limits []int
	catalog := fakeCatalog{semanticSearch: func(_ context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error) {
		limits = append(limits, q.Limit)
		return nil, nil
	}}
	r := newTestResolver(t, catalog, fakeExternal{}, nil)
	for _, limit := range []int{0, -5, 500, 7} {
		_, err := r.Search(context.Background(), uuid.New(), SearchRequest{Query: "x", Limit: limit})
		require.NoError(t, err)
	}
	assert.Equal(t, []int{DefaultLimit, 1, MaxLimit, 7}, limits)
}

func TestSearchEmbeddingFailureIsResolution(t *testing.T) {
	embedder := fakeEmbedder{embed: func(context.Context, string) (pgvector.Vector, error) {
		return pgvector.Vector{}, errors.New("provider down")
	}}
	catalog := fakeCatalog{semanticSearch: func(context.Context, SemanticQuery) ([]models.ScoredFoodItem, error) {
		t.Fatal("store must not be queried without a vector")
		return nil, nil
	}}
	r := newTestResolver(t, catalog, fakeExternal{}, embedder)

	_, err := r.Search(context.Background(), uuid.New(), SearchRequest{Query: "apple"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResolution))
	assert.Equal(t, embeddings.Source, pkgerrors.SourceOf(err))
}

func TestSearchStoreFailureIsDependency(t *testing.T) {
	catalog := fakeCatalog{semanticSearch: func(context.Context, SemanticQuery) ([]models.ScoredFoodItem, error) {
		return nil, errors.New("connection refused")
	}}
	r := newTestResolver(t, catalog, fakeExternal{}, nil)
	_, err := r.Search(context.Background(), uuid.New(), SearchRequest{Query: "apple"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestSearchOpenFoodFactsText(t *testing.T) {
	var gotLimit int
	external := fakeExternal{searchText: func(_ context.Context, query string, limit int) ([]openfoodfacts.Product, error) {
		assert.Equal(t, "granola", query)
		gotLimit = limit
		return []openfoodfacts.Product{{Code: "1", ProductName: "Granola"}, {Code: "2", ProductName: "Granola bar"}}, nil
	}}
	r := newTestResolver(t, fakeCatalog{}, external, nil)

	results, err := r.Search(context.Background(), uuid.New(), SearchRequest{Query: "granola", Source: "openfoodfacts", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, gotLimit)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Transient)
		assert.Equal(t, UnsavedID, res.Item.ID)
		assert.Equal(t, defaultBrand, res.Item.Brand)
	}
}

func TestLastLoggedDefaultsAndTruncates(t *testing.T) {
	var asked int
	catalog := fakeCatalog{lastLogged: func(_ context.Context, _ uuid.UUID, n int) ([]models.FoodItem, error) {
		asked = n
		return []models.FoodItem{{Name: "a"}, {Name: "b"}}, nil
	}}
	r := newTestResolver(t, catalog, fakeExternal{}, nil)

	items, err := r.LastLogged(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLastLogged, asked)
	assert.Len(t, items, 2)

	items, err = r.LastLogged(context.Background(), uuid.New(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestNewResolverRequiresDeps(t *testing.T) {
	_, err := NewResolver(ResolverParams{External: fakeExternal{}, Embedder: fakeEmbedder{}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = NewResolver(ResolverParams{Catalog: fakeCatalog{}, Embedder: fakeEmbedder{}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = NewResolver(ResolverParams{Catalog: fakeCatalog{}, External: fakeExternal{}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
