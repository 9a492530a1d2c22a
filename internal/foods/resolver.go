package foods

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/embeddings"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/metrics"
	"github.com/angelmondragon/fork-backend/pkg/openfoodfacts"
	"github.com/angelmondragon/fork-backend/pkg/visibility"
	"github.com/google/uuid"
)

const (
	DefaultLimit         = 20
	MaxLimit             = 100
	DefaultMinSimilarity = 0.3
	DefaultLastLogged    = 10

	sourceLocal = "local"
)

// SearchRequest selects one of the two resolution paths: Query or Barcode.
type SearchRequest struct {
	Query         string   `json:"query" validate:"omitempty,max=255"`
	Barcode       string   `json:"code" validate:"omitempty,max=50"`
	Source        string   `json:"source" validate:"omitempty,oneof=local personal openfoodfacts"`
	Limit         int      `json:"limit" validate:"omitempty,gte=0"`
	MinSimilarity *float64 `json:"min_similarity" validate:"omitempty,gte=-1,lte=1"`
}

// Result is a resolved food item. Transient items come from the external
// catalog and carry UnsavedID.
type Result struct {
	Item       *models.FoodItem
	Similarity *float64
	Transient  bool
	Source     enums.FoodSource
}

// Catalog is the local lookup surface the resolver reads.
type Catalog interface {
	FindByBarcode(ctx context.Context, barcode string, userID uuid.UUID) (*models.FoodItem, error)
	SemanticSearch(ctx context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error)
	LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error)
}

// ExternalCatalog is the third-party product database.
type ExternalCatalog interface {
	LookupBarcode(ctx context.Context, barcode string) (*openfoodfacts.Product, error)
	SearchText(ctx context.Context, query string, limit int) ([]openfoodfacts.Product, error)
}

// Resolver answers food searches across the local and external catalogs.
type Resolver interface {
	Search(ctx context.Context, userID uuid.UUID, req SearchRequest) ([]Result, error)
	LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error)
}

// ResolverParams groups dependencies for the resolver.
type ResolverParams struct {
	Catalog      Catalog
	External     ExternalCatalog
	Embedder     embeddings.Provider
	Metrics      *metrics.ResolutionMetrics
	Logger       *logger.Logger
	DefaultLimit int
	// MinSimilarity is the default threshold; nil means DefaultMinSimilarity.
	// Zero is a valid threshold.
	MinSimilarity *float64
}

type resolver struct {
	catalog       Catalog
	external      ExternalCatalog
	embedder      embeddings.Provider
	metrics       *metrics.ResolutionMetrics
	logg          *logger.Logger
	defaultLimit  int
	minSimilarity float64
}

func NewResolver(params ResolverParams) (Resolver, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food catalog is required")
	}
	if params.External == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external catalog is required")
	}
	if params.Embedder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "embedding provider is required")
	}
	limit := params.DefaultLimit
	if limit <= 0 {
		limit = DefaultLimit
	}
	minSim := DefaultMinSimilarity
	if params.MinSimilarity != nil {
		minSim = *params.MinSimilarity
		if minSim < -1 || minSim > 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min similarity must be within [-1, 1]")
		}
	}
	return &resolver{
		catalog:       params.Catalog,
		external:      params.External,
		embedder:      params.Embedder,
		metrics:       params.Metrics,
		logg:          params.Logger,
		defaultLimit:  clampLimit(limit),
		minSimilarity: minSim,
	}, nil
}

func (r *resolver) Search(ctx context.Context, userID uuid.UUID, req SearchRequest) ([]Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	query := strings.TrimSpace(req.Query)
	barcode := strings.TrimSpace(req.Barcode)
	switch {
	case query != "" && barcode != "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provide either query or code, not both")
	case query == "" && barcode == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query or code is required")
	}

	source, err := enums.ParseFoodSource(req.Source)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source").
			WithDetails(map[string]any{"source": req.Source})
	}
	limit := r.defaultLimit
	if req.Limit != 0 {
		limit = clampLimit(req.Limit)
	}
	minSim := r.minSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
	}

	ctx = r.withUser(ctx, userID)
	if barcode != "" {
		return r.byBarcode(ctx, userID, barcode)
	}
	if source == enums.FoodSourceOpenFoodFacts {
		return r.externalText(ctx, query, limit)
	}
	return r.semantic(ctx, userID, query, source, limit, minSim)
}

// byBarcode checks the local catalog first and falls back to the external one
// without persisting anything.
func (r *resolver) byBarcode(ctx context.Context, userID uuid.UUID, barcode string) ([]Result, error) {
	started := time.Now()
	item, err := r.catalog.FindByBarcode(ctx, barcode, userID)
	r.metrics.ObserveLatency(sourceLocal, metrics.ResolutionPathBarcode, time.Since(started))
	switch {
	case err == nil:
		r.metrics.IncOutcome(sourceLocal, metrics.ResolutionResultHit)
		return []Result{{Item: item, Source: enums.FoodSourceLocal}}, nil
	case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		r.metrics.IncOutcome(sourceLocal, metrics.ResolutionResultError)
		r.logError(ctx, "local barcode lookup failed", err)
		return nil, err
	}
	r.metrics.IncOutcome(sourceLocal, metrics.ResolutionResultMiss)

	started = time.Now()
	product, err := r.external.LookupBarcode(ctx, barcode)
	r.metrics.ObserveLatency(openfoodfacts.Source, metrics.ResolutionPathBarcode, time.Since(started))
	if err != nil {
		r.metrics.IncOutcome(openfoodfacts.Source, metrics.ResolutionResultError)
		r.logError(ctx, "external barcode lookup failed", err)
		return nil, asExternalError(err)
	}
	if product == nil {
		r.metrics.IncOutcome(openfoodfacts.Source, metrics.ResolutionResultMiss)
		return []Result{}, nil
	}
	r.metrics.IncOutcome(openfoodfacts.Source, metrics.ResolutionResultHit)
	return []Result{transientResult(product)}, nil
}

func (r *resolver) externalText(ctx context.Context, query string, limit int) ([]Result, error) {
	started := time.Now()
	products, err := r.external.SearchText(ctx, query, limit)
	r.metrics.ObserveLatency(openfoodfacts.Source, metrics.ResolutionPathText, time.Since(started))
	if err != nil {
		r.metrics.IncOutcome(openfoodfacts.Source, metrics.ResolutionResultError)
		r.logError(ctx, "external text search failed", err)
		return nil, asExternalError(err)
	}
	if len(products) == 0 {
		r.metrics.IncOutcome(openfoodfacts.Source, metrics.ResolutionResultMiss)
		return []Result{}, nil
	}
	r.metrics.IncOutcome(openfoodfacts.Source, metrics.ResolutionResultHit)

	if len(products) > limit {
		products = products[:limit]
	}
	results := make([]Result, 0, len(products))
	for i := range products {
		results = append(results, transientResult(&products[i]))
	}
	return results, nil
}

func (r *resolver) semantic(ctx context.Context, userID uuid.UUID, query string, source enums.FoodSource, limit int, minSim float64) ([]Result, error) {
	label := source.String()
	started := time.Now()
	defer func() {
		r.metrics.ObserveLatency(label, metrics.ResolutionPathSemantic, time.Since(started))
	}()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.metrics.IncOutcome(embeddings.Source, metrics.ResolutionResultError)
		r.logError(ctx, "query embedding failed", err)
		return nil, asEmbeddingError(err)
	}

	scope := visibility.ScopeLocal
	if source == enums.FoodSourcePersonal {
		scope = visibility.ScopePersonal
	}
	hits, err := r.catalog.SemanticSearch(ctx, SemanticQuery{
		UserID:        userID,
		Embedding:     vec,
		Scope:         scope,
		MinSimilarity: minSim,
		Limit:         limit,
	})
	if err != nil {
		r.metrics.IncOutcome(label, metrics.ResolutionResultError)
		r.logError(ctx, "semantic search failed", err)
		return nil, asStoreError(err)
	}

	results := rank(hits, userID, scope, minSim, limit, source)
	if len(results) == 0 {
		r.metrics.IncOutcome(label, metrics.ResolutionResultMiss)
	} else {
		r.metrics.IncOutcome(label, metrics.ResolutionResultHit)
	}
	return results, nil
}

// rank re-applies threshold, hidden exclusion and scope to whatever the store
// returned, then orders by similarity descending and truncates.
func rank(hits []models.ScoredFoodItem, userID uuid.UUID, scope visibility.Scope, minSim float64, limit int, source enums.FoodSource) []Result {
	kept := make([]models.ScoredFoodItem, 0, len(hits))
	for _, hit := range hits {
		if hit.Hidden || hit.Similarity < minSim {
			continue
		}
		if !visibility.FoodInScope(&hit.FoodItem, userID, scope) {
			continue
		}
		kept = append(kept, hit)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Similarity > kept[j].Similarity
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}

	results := make([]Result, 0, len(kept))
	for i := range kept {
		item := kept[i].FoodItem
		sim := kept[i].Similarity
		results = append(results, Result{Item: &item, Similarity: &sim, Source: source})
	}
	return results
}

// LastLogged returns the user's most recently logged distinct items. A
// non-positive n falls back to the default.
func (r *resolver) LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if n <= 0 {
		n = DefaultLastLogged
	}
	items, err := r.catalog.LastLogged(ctx, userID, n)
	if err != nil {
		r.logError(r.withUser(ctx, userID), "last logged lookup failed", err)
		return nil, asStoreError(err)
	}
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (r *resolver) withUser(ctx context.Context, userID uuid.UUID) context.Context {
	if r.logg == nil {
		return ctx
	}
	return r.logg.WithUserID(ctx, userID.String())
}

func (r *resolver) logError(ctx context.Context, msg string, err error) {
	if r.logg != nil {
		r.logg.Error(ctx, msg, err)
	}
}

// transientResult maps an external product onto the catalog shape. Nutrition
// values are per 100 g.
func transientResult(p *openfoodfacts.Product) Result {
	item := &models.FoodItem{
		ID:             UnsavedID,
		Name:           strings.TrimSpace(p.ProductName),
		Brand:          strings.TrimSpace(p.Brands),
		ServingSize:    p.ServingQuantity.Float(),
		ServingUnit:    "serving",
		CaloriesPer100: p.Nutriments.EnergyKcal100g.Float(),
		ProteinPer100:  p.Nutriments.Proteins100g.Float(),
		CarbsPer100:    p.Nutriments.Carbohydrates100g.Float(),
		FatPer100:      p.Nutriments.Fat100g.Float(),
	}
	if item.Brand == "" {
		item.Brand = defaultBrand
	}
	if desc := p.IngredientsText(); desc != "" {
		item.Description = &desc
	}
	if code := strings.TrimSpace(p.Code); code != "" {
		item.Barcode = &code
	}
	return Result{Item: item, Transient: true, Source: enums.FoodSourceOpenFoodFacts}
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func asEmbeddingError(err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeResolution) {
		return err
	}
	return pkgerrors.Resolution(embeddings.Source, err, "query embedding failed")
}

func asExternalError(err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeResolution) {
		return err
	}
	return pkgerrors.Resolution(openfoodfacts.Source, err, "external catalog lookup failed")
}

// asStoreError keeps typed store errors and marks anything else as a
// dependency failure.
func asStoreError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "food catalog unavailable")
}
