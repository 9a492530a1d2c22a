package foods

import (
	"context"
	"sort"
	"time"

	"github.com/angelmondragon/fork-backend/internal/repo"
	"github.com/angelmondragon/fork-backend/pkg/config"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/embeddings"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/visibility"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entity = "food item"

var updatableColumns = []string{
	"private", "hidden", "name", "brand", "description", "barcode",
	"serving_size", "serving_unit",
	"calories_per_100", "protein_per_100", "carbs_per_100", "fat_per_100",
	"updated_at",
}

// SemanticQuery parameterizes a vector similarity search.
type SemanticQuery struct {
	UserID        uuid.UUID
	Embedding     pgvector.Vector
	Scope         visibility.Scope
	MinSimilarity float64
	Limit         int
}

// Repository persists the local food catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.FoodItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error)
	FindByBarcode(ctx context.Context, barcode string, userID uuid.UUID) (*models.FoodItem, error)
	Update(ctx context.Context, item *models.FoodItem) error
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding *pgvector.Vector) error
	ReplaceIngredients(ctx context.Context, parentID uuid.UUID, edges []models.FoodIngredient) error
	Delete(ctx context.Context, id uuid.UUID) error
	SemanticSearch(ctx context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error)
	LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error)
	ListMissingEmbeddings(ctx context.Context, limit int) ([]models.FoodItem, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a food catalog repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create inserts the item and its ingredient edges. Callers wanting atomicity
// run it inside a transaction.
func (r *repository) Create(ctx context.Context, item *models.FoodItem) error {
	repo.EnsureID(&item.ID)
	if err := r.DB(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return repo.MapError(err, entity)
	}
	if len(item.Ingredients) == 0 {
		return nil
	}
	return r.insertEdges(ctx, item.ID, item.Ingredients)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := r.DB(ctx).
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		Take(&item).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return &item, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.FoodItem
	if err := r.DB(ctx).
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return items, nil
}

// FindByBarcode matches a barcode among public items and userID's private ones.
func (r *repository) FindByBarcode(ctx context.Context, barcode string, userID uuid.UUID) (*models.FoodItem, error) {
	var item models.FoodItem
	err := scope(r.DB(ctx), userID, visibility.ScopeLocal).
		Preload("Ingredients.Ingredient").
		Where("barcode = ?", barcode).
		Take(&item).Error
	if err != nil {
		return nil, repo.MapError(err, entity)
	}
	return &item, nil
}

func (r *repository) Update(ctx context.Context, item *models.FoodItem) error {
	item.UpdatedAt = time.Now().UTC()
	res := r.DB(ctx).
		Model(&models.FoodItem{ID: item.ID}).
		Select(updatableColumns).
		Updates(item)
	if res.Error != nil {
		return repo.MapError(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entity)
	}
	return nil
}

// UpdateEmbedding stores the vector for id; nil clears it so the backfill job
// recomputes it.
func (r *repository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding *pgvector.Vector) error {
	return repo.MapError(r.DB(ctx).
		Model(&models.FoodItem{}).
		Where("id = ?", id).
		UpdateColumn("embedding", embedding).Error, entity)
}

// ReplaceIngredients swaps the whole edge set of parentID.
func (r *repository) ReplaceIngredients(ctx context.Context, parentID uuid.UUID, edges []models.FoodIngredient) error {
	if err := r.DB(ctx).
		Where("parent_id = ?", parentID).
		Delete(&models.FoodIngredient{}).Error; err != nil {
		return repo.MapError(err, "food ingredient")
	}
	if len(edges) == 0 {
		return nil
	}
	return r.insertEdges(ctx, parentID, edges)
}

func (r *repository) insertEdges(ctx context.Context, parentID uuid.UUID, edges []models.FoodIngredient) error {
	rows := make([]models.FoodIngredient, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, models.FoodIngredient{
			ParentID:     parentID,
			IngredientID: edge.IngredientID,
			Quantity:     edge.Quantity,
		})
	}
	return repo.MapError(r.DB(ctx).Omit(clause.Associations).Create(&rows).Error, "food ingredient")
}

// Delete removes the item with its ingredient edges. Items referenced by any
// logged entry are refused with Conflict; entries only go away with their log.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	var refs int64
	if err := db.Model(&models.FoodEntry{}).Where("food_id = ?", id).Count(&refs).Error; err != nil {
		return repo.MapError(err, "food entry")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "food item is referenced by logged entries").
			WithDetails(map[string]any{"id": id.String(), "entries": refs})
	}
	if err := db.Where("parent_id = ? OR ingredient_id = ?", id, id).Delete(&models.FoodIngredient{}).Error; err != nil {
		return repo.MapError(err, "food ingredient")
	}
	res := db.Where("id = ?", id).Delete(&models.FoodItem{})
	if res.Error != nil {
		return repo.MapError(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entity)
	}
	return nil
}

type scoredID struct {
	ID         uuid.UUID
	Similarity float64
}

// SemanticSearch ranks non-hidden items in scope by cosine similarity to
// q.Embedding, keeping those at or above q.MinSimilarity.
func (r *repository) SemanticSearch(ctx context.Context, q SemanticQuery) ([]models.ScoredFoodItem, error) {
	if q.Limit <= 0 {
		return nil, nil
	}

	var (
		hits []scoredID
		err  error
	)
	if r.Dialect() == config.DriverSQLite {
		hits, err = r.semanticScan(ctx, q)
	} else {
		hits, err = r.semanticVector(ctx, q)
	}
	if err != nil {
		return nil, repo.MapError(err, entity)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	items, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.FoodItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]models.ScoredFoodItem, 0, len(hits))
	for _, hit := range hits {
		item, ok := byID[hit.ID]
		if !ok {
			continue
		}
		out = append(out, models.ScoredFoodItem{FoodItem: item, Similarity: hit.Similarity})
	}
	return out, nil
}

func (r *repository) semanticVector(ctx context.Context, q SemanticQuery) ([]scoredID, error) {
	var hits []scoredID
	err := scope(r.DB(ctx).Model(&models.FoodItem{}), q.UserID, q.Scope).
		Select("id, 1 - (embedding <=> ?::vector) AS similarity", q.Embedding).
		Where("hidden = ?", false).
		Where("embedding IS NOT NULL").
		Where("1 - (embedding <=> ?::vector) >= ?", q.Embedding, q.MinSimilarity).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding <=> ?::vector, id",
			Vars:               []any{q.Embedding},
			WithoutParentheses: true,
		}}).
		Limit(q.Limit).
		Scan(&hits).Error
	return hits, err
}

// semanticScan computes similarity in process for dialects without pgvector.
func (r *repository) semanticScan(ctx context.Context, q SemanticQuery) ([]scoredID, error) {
	var candidates []models.FoodItem
	if err := scope(r.DB(ctx), q.UserID, q.Scope).
		Where("hidden = ?", false).
		Where("embedding IS NOT NULL").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	hits := make([]scoredID, 0, len(candidates))
	for _, item := range candidates {
		if item.Embedding == nil {
			continue
		}
		sim := embeddings.Cosine(*item.Embedding, q.Embedding)
		if sim >= q.MinSimilarity {
			hits = append(hits, scoredID{ID: item.ID, Similarity: sim})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID.String() < hits[j].ID.String()
	})
	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// LastLogged returns up to n distinct items from userID's food logs ordered by
// the most recent date each was logged, ties broken by id. Items that have
// since become private to another user are skipped.
func (r *repository) LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error) {
	var rows []struct {
		FoodID uuid.UUID
	}
	if err := r.DB(ctx).
		Table("food_entries").
		Select("food_entries.food_id").
		Joins("JOIN food_logs ON food_logs.id = food_entries.log_id").
		Joins("JOIN food_items ON food_items.id = food_entries.food_id").
		Where("food_logs.user_id = ?", userID).
		Where("(food_items.private = ? OR food_items.user_id = ?)", false, userID).
		Group("food_entries.food_id").
		Order("MAX(food_logs.date) DESC").
		Order("food_entries.food_id ASC").
		Limit(n).
		Scan(&rows).Error; err != nil {
		return nil, repo.MapError(err, "food entry")
	}
	if len(rows) == 0 {
		return []models.FoodItem{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.FoodID
	}
	items, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.FoodItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]models.FoodItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, nil
}

// ListMissingEmbeddings returns up to limit items that have no embedding yet.
func (r *repository) ListMissingEmbeddings(ctx context.Context, limit int) ([]models.FoodItem, error) {
	var items []models.FoodItem
	if err := r.DB(ctx).
		Where("embedding IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return items, nil
}

func scope(db *gorm.DB, userID uuid.UUID, s visibility.Scope) *gorm.DB {
	if s == visibility.ScopePersonal {
		return db.Where("private = ? AND user_id = ?", true, userID)
	}
	return db.Where("(private = ? OR user_id = ?)", false, userID)
}
