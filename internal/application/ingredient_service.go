package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/errors"
	"github.com/pos-platform/inventory-service/pkg/logging"
)

// IngredientService implements ingredient registry use cases.
type IngredientService struct {
	ingredients domain.IngredientRepository
	recipes     domain.RecipeRepository
	logger      *logging.Logger
}

func NewIngredientService(ingredients domain.IngredientRepository, recipes domain.RecipeRepository, logger *logging.Logger) *IngredientService {
	return &IngredientService{
		ingredients: ingredients,
		recipes:     recipes,
		logger:      logger.WithComponent("ingredient-service"),
	}
}

// Create registers a new ingredient. Supplied quantities are display-unit
// values and are normalized before persisting.
func (s *IngredientService) Create(ctx context.Context, cmd CreateIngredientCommand) (*domain.Ingredient, error) {
	ing, err := domain.NewIngredient(uuid.New().String(), cmd.toInput(), time.Now().UTC())
	if err != nil {
		return nil, translateDomainError(err)
	}

	if err := s.ingredients.Insert(ctx, ing); err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to insert ingredient", "name", cmd.Name)
		return nil, errors.ErrInternal("failed to create ingredient").Wrap(err)
	}

	s.logger.InfoContext(ctx, "ingredient created",
		"ingredientId", ing.ID, "name", ing.Name, "issueRule", ing.IssueRule)
	return ing, nil
}

// Update applies a partial update and re-validates the merged record.
func (s *IngredientService) Update(ctx context.Context, id string, cmd UpdateIngredientCommand) (*domain.Ingredient, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrInternal("failed to load ingredient").Wrap(err)
	}
	if ing == nil {
		return nil, errors.ErrNotFoundWithID("ingredient", id)
	}

	if err := ing.ApplyUpdate(cmd.toInput(), time.Now().UTC()); err != nil {
		return nil, translateDomainError(err)
	}

	if err := s.ingredients.Replace(ctx, ing); err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to replace ingredient", "ingredientId", id)
		return nil, errors.ErrInternal("failed to update ingredient").Wrap(err)
	}

	s.logger.InfoContext(ctx, "ingredient updated", "ingredientId", id)
	return ing, nil
}

// Get loads a single ingredient.
func (s *IngredientService) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrInternal("failed to load ingredient").Wrap(err)
	}
	if ing == nil {
		return nil, errors.ErrNotFoundWithID("ingredient", id)
	}
	return ing, nil
}

// List returns ingredients sorted by name, optionally filtered by a
// case-insensitive search over name, group and supplier.
func (s *IngredientService) List(ctx context.Context, search string) ([]*domain.Ingredient, error) {
	ings, err := s.ingredients.List(ctx, search)
	if err != nil {
		return nil, errors.ErrInternal("failed to list ingredients").Wrap(err)
	}
	return ings, nil
}

// LowStock returns ingredients whose base-unit stock is at or below threshold.
func (s *IngredientService) LowStock(ctx context.Context, threshold float64) ([]*domain.Ingredient, error) {
	if threshold < 0 {
		return nil, errors.ErrValidationField("threshold", "threshold must not be negative")
	}
	ings, err := s.ingredients.FindLowStock(ctx, threshold)
	if err != nil {
		return nil, errors.ErrInternal("failed to list low-stock ingredients").Wrap(err)
	}
	return ings, nil
}

// Remove deletes an ingredient unless an active recipe still references it.
func (s *IngredientService) Remove(ctx context.Context, id string) error {
	referenced, err := s.recipes.ReferencesIngredient(ctx, id)
	if err != nil {
		return errors.ErrInternal("failed to check recipe references").Wrap(err)
	}
	if referenced {
		return errors.ErrConflict("ingredient is referenced by an active recipe").
			WithDetail("ingredient", id)
	}

	found, err := s.ingredients.Delete(ctx, id)
	if err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to delete ingredient", "ingredientId", id)
		return errors.ErrInternal("failed to delete ingredient").Wrap(err)
	}
	if !found {
		return errors.ErrNotFoundWithID("ingredient", id)
	}

	s.logger.InfoContext(ctx, "ingredient deleted", "ingredientId", id)
	return nil
}

// translateDomainError maps domain validation failures onto API errors.
func translateDomainError(err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return errors.ErrValidationField(ve.Field, ve.Message)
	}
	return errors.FromError(err)
}
