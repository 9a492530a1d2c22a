package foods

import (
	"context"

	"github.com/angelmondragon/fork-backend/pkg/db"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/embeddings"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/visibility"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Service manages catalog items owned by users.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateFoodInput) (*models.FoodItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch UpdateFoodPatch) (*models.FoodItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.FoodItem, error)
}

// ServiceParams groups dependencies for the food service.
type ServiceParams struct {
	Repo     Repository
	Tx       db.TxRunner
	Embedder embeddings.Provider
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       db.TxRunner
	embedder embeddings.Provider
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Embedder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "embedding provider is required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		embedder: params.Embedder,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateFoodInput) (*models.FoodItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureIngredientsVisible(ctx, userID, uuid.Nil, input.Ingredients); err != nil {
		return nil, err
	}

	item := input.toModel(userID)
	item.Embedding = s.embedName(ctx, item.Name)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, item)
	})
	if err != nil {
		s.logError(ctx, userID, "food create failed", err)
		return nil, err
	}
	return s.repo.FindByID(ctx, item.ID)
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, patch UpdateFoodPatch) (*models.FoodItem, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundWithID(err, id)
	}
	if err := visibility.EnsureFoodEditable(item, userID); err != nil {
		return nil, err
	}

	var edges []models.FoodIngredient
	replaceEdges := false
	if patch.Ingredients != nil {
		if err := s.ensureIngredientsVisible(ctx, userID, id, *patch.Ingredients); err != nil {
			return nil, err
		}
		edges = toEdges(*patch.Ingredients)
		replaceEdges = !sameEdges(item.Ingredients, edges)
	}

	nameChanged := patch.Apply(item)
	var embedding *pgvector.Vector
	if nameChanged {
		embedding = s.embedName(ctx, item.Name)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		if replaceEdges {
			if err := repo.ReplaceIngredients(ctx, id, edges); err != nil {
				return err
			}
		}
		if nameChanged {
			return repo.UpdateEmbedding(ctx, id, embedding)
		}
		return nil
	})
	if err != nil {
		s.logError(ctx, userID, "food update failed", err)
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundWithID(err, id)
	}
	if err := visibility.EnsureFoodDeletable(item, userID); err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		s.logError(ctx, userID, "food delete failed", err)
	}
	return err
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.FoodItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundWithID(err, id)
	}
	if err := visibility.EnsureFoodVisible(item, userID); err != nil {
		return nil, err
	}
	return item, nil
}

// ensureIngredientsVisible requires every referenced item to exist and be
// readable by userID. parentID, when set, may not reference itself.
func (s *service) ensureIngredientsVisible(ctx context.Context, userID, parentID uuid.UUID, in []IngredientInput) error {
	if len(in) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(in))
	for _, ing := range in {
		if parentID != uuid.Nil && ing.FoodID == parentID {
			return pkgerrors.New(pkgerrors.CodeValidation, "a food item cannot contain itself").
				WithDetails(map[string]any{"food_id": parentID})
		}
		ids = append(ids, ing.FoodID)
	}
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.FoodItem, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if !visibility.CanAccessFood(byID[id], userID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found").
				WithDetails(map[string]any{"food_id": id})
		}
	}
	return nil
}

// embedName computes the name embedding. Provider failures leave the vector
// empty for the backfill job rather than failing the write.
func (s *service) embedName(ctx context.Context, name string) *pgvector.Vector {
	vec, err := s.embedder.Embed(ctx, name)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"source": embeddings.Source,
				"error":  err.Error(),
			}), "food embedding deferred to backfill")
		}
		return nil
	}
	return &vec
}

func (s *service) logError(ctx context.Context, userID uuid.UUID, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), msg, err)
	}
}

func notFoundWithID(err error, id uuid.UUID) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "food item not found").
			WithDetails(map[string]any{"food_id": id})
	}
	return err
}
