package application

import (
	"context"
	"time"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/errors"
	"github.com/pos-platform/inventory-service/pkg/logging"
)

// RecipeService implements recipe registry use cases. Reads expand each item
// with the referenced ingredient's descriptive fields.
type RecipeService struct {
	recipes     domain.RecipeRepository
	ingredients domain.IngredientRepository
	logger      *logging.Logger
}

func NewRecipeService(recipes domain.RecipeRepository, ingredients domain.IngredientRepository, logger *logging.Logger) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		ingredients: ingredients,
		logger:      logger.WithComponent("recipe-service"),
	}
}

// GetByProduct loads the recipe for a product, expanded for display.
func (s *RecipeService) GetByProduct(ctx context.Context, productID string) (*RecipeDTO, error) {
	if productID == "" {
		return nil, errors.ErrValidationField("product", "product is required")
	}

	recipe, err := s.recipes.FindByProduct(ctx, productID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load recipe").Wrap(err)
	}
	if recipe == nil {
		return nil, errors.ErrNotFoundWithID("recipe", productID)
	}

	return s.expand(ctx, recipe)
}

// Upsert replaces the product's recipe item list whole, creating the recipe
// when absent. Every referenced ingredient must exist.
func (s *RecipeService) Upsert(ctx context.Context, productID string, cmd UpsertRecipeCommand) (*RecipeDTO, error) {
	if productID == "" {
		return nil, errors.ErrValidationField("product", "product is required")
	}

	items := cmd.toItems()
	if err := domain.ValidateRecipeItems(items); err != nil {
		return nil, translateDomainError(err)
	}
	if err := s.verifyIngredientsExist(ctx, items); err != nil {
		return nil, err
	}

	recipe, err := s.recipes.Upsert(ctx, productID, items, time.Now().UTC())
	if err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to upsert recipe", "product", productID)
		return nil, errors.ErrInternal("failed to save recipe").Wrap(err)
	}

	s.logger.InfoContext(ctx, "recipe saved", "product", productID, "items", len(items))
	return s.expand(ctx, recipe)
}

// SetActive toggles whether the recipe constrains availability and consumption.
func (s *RecipeService) SetActive(ctx context.Context, productID string, isActive bool) (*RecipeDTO, error) {
	recipe, err := s.recipes.SetActive(ctx, productID, isActive, time.Now().UTC())
	if err != nil {
		return nil, errors.ErrInternal("failed to update recipe").Wrap(err)
	}
	if recipe == nil {
		return nil, errors.ErrNotFoundWithID("recipe", productID)
	}

	s.logger.InfoContext(ctx, "recipe activation changed", "product", productID, "isActive", isActive)
	return s.expand(ctx, recipe)
}

// Remove deletes the product's recipe.
func (s *RecipeService) Remove(ctx context.Context, productID string) error {
	found, err := s.recipes.DeleteByProduct(ctx, productID)
	if err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to delete recipe", "product", productID)
		return errors.ErrInternal("failed to delete recipe").Wrap(err)
	}
	if !found {
		return errors.ErrNotFoundWithID("recipe", productID)
	}

	s.logger.InfoContext(ctx, "recipe deleted", "product", productID)
	return nil
}

func (s *RecipeService) verifyIngredientsExist(ctx context.Context, items []domain.RecipeItem) error {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.IngredientID
	}

	found, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return errors.ErrInternal("failed to resolve ingredients").Wrap(err)
	}

	known := make(map[string]bool, len(found))
	for _, ing := range found {
		known[ing.ID] = true
	}
	for _, item := range items {
		if !known[item.IngredientID] {
			return errors.ErrValidationField("items", "ingredient "+item.IngredientID+" not found")
		}
	}
	return nil
}

func (s *RecipeService) expand(ctx context.Context, recipe *domain.Recipe) (*RecipeDTO, error) {
	ids := make([]string, len(recipe.Items))
	for i, item := range recipe.Items {
		ids[i] = item.IngredientID
	}

	ings, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.ErrInternal("failed to resolve ingredients").Wrap(err)
	}
	return toRecipeDTO(recipe, ings), nil
}
