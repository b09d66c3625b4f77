package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/errors"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validCreateCommand() CreateIngredientCommand {
	return CreateIngredientCommand{
		Name:         "Flour",
		Group:        "Dry goods",
		SupplierName: "Mill Co",
		DisplayUnit:  "kg",
		StockOnHand:  floatPtr(25),
		IssueRule:    "manual",
	}
}

func newIngredientService(ingredients *fakeIngredientRepo, recipes *fakeRecipeRepo) *IngredientService {
	return NewIngredientService(ingredients, recipes, newTestLogger())
}

func TestIngredientService_Create(t *testing.T) {
	repo := newFakeIngredientRepo()
	service := newIngredientService(repo, newFakeRecipeRepo())

	ing, err := service.Create(context.Background(), validCreateCommand())
	require.NoError(t, err)

	assert.NotEmpty(t, ing.ID)
	assert.Equal(t, 25000.0, ing.StockOnHand)
	assert.Equal(t, "g", ing.BaseUnit)
	assert.Contains(t, repo.items, ing.ID)
}

func TestIngredientService_CreateValidationFailure(t *testing.T) {
	service := newIngredientService(newFakeIngredientRepo(), newFakeRecipeRepo())

	cmd := validCreateCommand()
	cmd.IssueRule = "cycle"

	_, err := service.Create(context.Background(), cmd)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
	assert.Equal(t, "cycleDays", appErr.Details["field"])
}

func TestIngredientService_Update(t *testing.T) {
	ing, err := domain.NewIngredient("ing-1", domain.IngredientInput{
		Name: "Flour", Group: "Dry goods", SupplierName: "Mill Co",
		DisplayUnit: "kg", StockOnHand: floatPtr(25), IssueRule: "manual",
	}, time.Now().UTC())
	require.NoError(t, err)

	repo := newFakeIngredientRepo(ing)
	service := newIngredientService(repo, newFakeRecipeRepo())

	updated, err := service.Update(context.Background(), "ing-1", UpdateIngredientCommand{
		Name:        "Bread Flour",
		StockOnHand: floatPtr(10),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bread Flour", updated.Name)
	assert.Equal(t, 10000.0, updated.StockOnHand)
}

func TestIngredientService_UpdateNotFound(t *testing.T) {
	service := newIngredientService(newFakeIngredientRepo(), newFakeRecipeRepo())

	_, err := service.Update(context.Background(), "missing", UpdateIngredientCommand{Name: "X"})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestIngredientService_RemoveBlockedByActiveRecipe(t *testing.T) {
	ing, err := domain.NewIngredient("ing-1", domain.IngredientInput{
		Name: "Flour", Group: "Dry goods", SupplierName: "Mill Co",
		DisplayUnit: "kg", StockOnHand: floatPtr(25), IssueRule: "manual",
	}, time.Now().UTC())
	require.NoError(t, err)

	recipes := newFakeRecipeRepo(&domain.Recipe{
		ID: "r-1", ProductID: "prod-1", IsActive: true,
		Items: []domain.RecipeItem{{IngredientID: "ing-1", QuantityPerUnit: 100}},
	})
	repo := newFakeIngredientRepo(ing)
	service := newIngredientService(repo, recipes)

	err = service.Remove(context.Background(), "ing-1")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
	assert.Contains(t, repo.items, "ing-1")
}

func TestIngredientService_RemoveAllowedWhenRecipeInactive(t *testing.T) {
	ing, err := domain.NewIngredient("ing-1", domain.IngredientInput{
		Name: "Flour", Group: "Dry goods", SupplierName: "Mill Co",
		DisplayUnit: "kg", StockOnHand: floatPtr(25), IssueRule: "manual",
	}, time.Now().UTC())
	require.NoError(t, err)

	recipes := newFakeRecipeRepo(&domain.Recipe{
		ID: "r-1", ProductID: "prod-1", IsActive: false,
		Items: []domain.RecipeItem{{IngredientID: "ing-1", QuantityPerUnit: 100}},
	})
	repo := newFakeIngredientRepo(ing)
	service := newIngredientService(repo, recipes)

	require.NoError(t, service.Remove(context.Background(), "ing-1"))
	assert.NotContains(t, repo.items, "ing-1")
}

func TestIngredientService_RemoveNotFound(t *testing.T) {
	service := newIngredientService(newFakeIngredientRepo(), newFakeRecipeRepo())

	err := service.Remove(context.Background(), "missing")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

func TestIngredientService_LowStockRejectsNegativeThreshold(t *testing.T) {
	service := newIngredientService(newFakeIngredientRepo(), newFakeRecipeRepo())

	_, err := service.LowStock(context.Background(), -1)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}
