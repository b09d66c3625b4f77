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

func newStockService(ingredients *fakeIngredientRepo, recipes *fakeRecipeRepo) *StockService {
	m := newTestMetrics()
	return NewStockService(ingredients, recipes, newTestPublisher(m), m, newTestLogger())
}

func pizzaRecipe() *domain.Recipe {
	return &domain.Recipe{
		ID: "r-1", ProductID: "pizza", IsActive: true,
		Items: []domain.RecipeItem{
			{IngredientID: "flour", QuantityPerUnit: 200},
			{IngredientID: "cheese", QuantityPerUnit: 80},
		},
	}
}

func TestStockService_CheckAvailability(t *testing.T) {
	flour := testIngredient(t, "flour", "Flour", 1) // 1000 g
	cheese := testIngredient(t, "cheese", "Cheese", 0.4)

	service := newStockService(newFakeIngredientRepo(flour, cheese), newFakeRecipeRepo(pizzaRecipe()))

	dto, err := service.CheckAvailability(context.Background(), "pizza", 3)
	require.NoError(t, err)

	assert.True(t, dto.CanAdd)
	assert.False(t, dto.Unconstrained)
	require.NotNil(t, dto.MaxFulfillable)
	assert.Equal(t, 5, *dto.MaxFulfillable)
}

func TestStockService_CheckAvailabilityShortfall(t *testing.T) {
	flour := testIngredient(t, "flour", "Flour", 0.15) // 150 g, one pizza needs 200
	cheese := testIngredient(t, "cheese", "Cheese", 1)

	service := newStockService(newFakeIngredientRepo(flour, cheese), newFakeRecipeRepo(pizzaRecipe()))

	dto, err := service.CheckAvailability(context.Background(), "pizza", 1)
	require.NoError(t, err)

	assert.False(t, dto.CanAdd)
	require.NotNil(t, dto.MaxFulfillable)
	assert.Equal(t, 0, *dto.MaxFulfillable)
}

func TestStockService_CheckAvailabilityNoRecipe(t *testing.T) {
	service := newStockService(newFakeIngredientRepo(), newFakeRecipeRepo())

	dto, err := service.CheckAvailability(context.Background(), "salad", 100)
	require.NoError(t, err)

	assert.True(t, dto.CanAdd)
	assert.True(t, dto.Unconstrained)
	assert.Nil(t, dto.MaxFulfillable)
}

func TestStockService_Consume(t *testing.T) {
	flour := testIngredient(t, "flour", "Flour", 1)
	cheese := testIngredient(t, "cheese", "Cheese", 1)

	repo := newFakeIngredientRepo(flour, cheese)
	service := newStockService(repo, newFakeRecipeRepo(pizzaRecipe()))

	result, err := service.Consume(context.Background(), ConsumeStockCommand{ProductID: "pizza", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, result.Deductions, 2)
	assert.Equal(t, 600.0, repo.items["flour"].StockOnHand)
	assert.Equal(t, 840.0, repo.items["cheese"].StockOnHand)
}

func TestStockService_ConsumeInsufficientIsAllOrNothing(t *testing.T) {
	flour := testIngredient(t, "flour", "Flour", 1)
	cheese := testIngredient(t, "cheese", "Cheese", 0.1) // 100 g, two pizzas need 160

	repo := newFakeIngredientRepo(flour, cheese)
	service := newStockService(repo, newFakeRecipeRepo(pizzaRecipe()))

	_, err := service.Consume(context.Background(), ConsumeStockCommand{ProductID: "pizza", Quantity: 2})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
	assert.Equal(t, "cheese", appErr.Details["ingredient"])

	// nothing was deducted
	assert.Equal(t, 1000.0, repo.items["flour"].StockOnHand)
	assert.Equal(t, 100.0, repo.items["cheese"].StockOnHand)
}

func TestStockService_ConsumeWithoutActiveRecipeIsNoop(t *testing.T) {
	flour := testIngredient(t, "flour", "Flour", 1)
	recipe := pizzaRecipe()
	recipe.IsActive = false

	repo := newFakeIngredientRepo(flour)
	service := newStockService(repo, newFakeRecipeRepo(recipe))

	result, err := service.Consume(context.Background(), ConsumeStockCommand{ProductID: "pizza", Quantity: 5})
	require.NoError(t, err)

	assert.Empty(t, result.Deductions)
	assert.Equal(t, 1000.0, repo.items["flour"].StockOnHand)
}

func TestStockService_ConsumeRejectsBadQuantity(t *testing.T) {
	service := newStockService(newFakeIngredientRepo(), newFakeRecipeRepo())

	_, err := service.Consume(context.Background(), ConsumeStockCommand{ProductID: "pizza", Quantity: 0})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
}

func TestStockService_AdvanceCycle(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	due := asOf.Add(-time.Hour)

	ing, err := domain.NewIngredient("milk", domain.IngredientInput{
		Name: "Milk", Group: "Dairy", SupplierName: "Dairy Co",
		DisplayUnit: "l", StockOnHand: floatPtr(2), IssueRule: "cycle",
		CycleDays: intPtr(2), NextReceiveDate: &due,
	}, asOf.Add(-48*time.Hour))
	require.NoError(t, err)

	repo := newFakeIngredientRepo(ing)
	service := newStockService(repo, newFakeRecipeRepo())

	dto, err := service.AdvanceCycle(context.Background(), "milk", 20, asOf)
	require.NoError(t, err)

	assert.True(t, dto.Advanced)
	assert.Equal(t, 20.0, dto.ReplenishedTo)
	require.NotNil(t, dto.NextReceiveDate)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), *dto.NextReceiveDate)
	assert.Equal(t, 20.0, repo.items["milk"].StockOnHand)
}

func TestStockService_AdvanceCycleNotDueIsNoop(t *testing.T) {
	asOf := time.Now().UTC()
	future := asOf.Add(48 * time.Hour)

	ing, err := domain.NewIngredient("milk", domain.IngredientInput{
		Name: "Milk", Group: "Dairy", SupplierName: "Dairy Co",
		DisplayUnit: "l", StockOnHand: floatPtr(2), IssueRule: "cycle",
		NextReceiveDate: &future,
	}, asOf)
	require.NoError(t, err)

	repo := newFakeIngredientRepo(ing)
	service := newStockService(repo, newFakeRecipeRepo())

	dto, err := service.AdvanceCycle(context.Background(), "milk", 20, asOf)
	require.NoError(t, err)

	assert.False(t, dto.Advanced)
	assert.Equal(t, 2.0, repo.items["milk"].StockOnHand)
}

func TestStockService_AdvanceCycleConvertsReplenishToBaseUnits(t *testing.T) {
	asOf := time.Now().UTC()
	due := asOf.Add(-time.Hour)

	ing, err := domain.NewIngredient("flour", domain.IngredientInput{
		Name: "Flour", Group: "Dry goods", SupplierName: "Mill Co",
		DisplayUnit: "kg", StockOnHand: floatPtr(1), IssueRule: "cycle",
		CycleDays: intPtr(7), NextReceiveDate: &due,
	}, asOf.Add(-time.Hour*200))
	require.NoError(t, err)

	repo := newFakeIngredientRepo(ing)
	service := newStockService(repo, newFakeRecipeRepo())

	dto, err := service.AdvanceCycle(context.Background(), "flour", 25, asOf)
	require.NoError(t, err)

	assert.True(t, dto.Advanced)
	assert.Equal(t, 25000.0, repo.items["flour"].StockOnHand)
}

func TestStockService_AdvanceDueCycles(t *testing.T) {
	asOf := time.Now().UTC()
	due := asOf.Add(-time.Hour)
	future := asOf.Add(48 * time.Hour)

	dueIng, err := domain.NewIngredient("milk", domain.IngredientInput{
		Name: "Milk", Group: "Dairy", SupplierName: "Dairy Co",
		DisplayUnit: "l", StockOnHand: floatPtr(2), IssueRule: "cycle",
		CycleDays: intPtr(2), NextReceiveDate: &due,
	}, asOf.Add(-48*time.Hour))
	require.NoError(t, err)

	notDue, err := domain.NewIngredient("cream", domain.IngredientInput{
		Name: "Cream", Group: "Dairy", SupplierName: "Dairy Co",
		DisplayUnit: "l", StockOnHand: floatPtr(2), IssueRule: "cycle",
		NextReceiveDate: &future,
	}, asOf)
	require.NoError(t, err)

	repo := newFakeIngredientRepo(dueIng, notDue)
	service := newStockService(repo, newFakeRecipeRepo())

	results, err := service.AdvanceDueCycles(context.Background(), 10, asOf)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "milk", results[0].IngredientID)
	assert.True(t, results[0].Advanced)
	assert.Equal(t, 2.0, repo.items["cream"].StockOnHand)
}
