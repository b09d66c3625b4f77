package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeRecipe(items ...RecipeItem) *Recipe {
	return &Recipe{ProductID: "prod-1", Items: items, IsActive: true}
}

func TestResolveAvailability_NoRecipeIsUnconstrained(t *testing.T) {
	avail, err := ResolveAvailability(nil, nil, 5)
	require.NoError(t, err)
	assert.True(t, avail.CanAdd)
	assert.True(t, avail.Unconstrained)
}

func TestResolveAvailability_InactiveRecipeIsUnconstrained(t *testing.T) {
	recipe := activeRecipe(RecipeItem{IngredientID: "flour", QuantityPerUnit: 200})
	recipe.IsActive = false

	avail, err := ResolveAvailability(recipe, map[string]float64{"flour": 0}, 1)
	require.NoError(t, err)
	assert.True(t, avail.CanAdd)
	assert.True(t, avail.Unconstrained)
}

func TestResolveAvailability_EmptyRecipeIsUnconstrained(t *testing.T) {
	avail, err := ResolveAvailability(activeRecipe(), nil, 1)
	require.NoError(t, err)
	assert.True(t, avail.CanAdd)
	assert.True(t, avail.Unconstrained)
}

func TestResolveAvailability_SufficientStock(t *testing.T) {
	recipe := activeRecipe(
		RecipeItem{IngredientID: "flour", QuantityPerUnit: 200},
		RecipeItem{IngredientID: "cheese", QuantityPerUnit: 80},
	)
	stocks := map[string]float64{"flour": 1000, "cheese": 400}

	avail, err := ResolveAvailability(recipe, stocks, 3)
	require.NoError(t, err)
	assert.True(t, avail.CanAdd)
	assert.False(t, avail.Unconstrained)
	assert.Equal(t, 5, avail.MaxFulfillable)
}

func TestResolveAvailability_ShortfallBlocksAdd(t *testing.T) {
	recipe := activeRecipe(RecipeItem{IngredientID: "flour", QuantityPerUnit: 200})
	stocks := map[string]float64{"flour": 150}

	avail, err := ResolveAvailability(recipe, stocks, 1)
	require.NoError(t, err)
	assert.False(t, avail.CanAdd)
	assert.Equal(t, 0, avail.MaxFulfillable)
}

func TestResolveAvailability_BottleneckIngredientLimits(t *testing.T) {
	recipe := activeRecipe(
		RecipeItem{IngredientID: "flour", QuantityPerUnit: 100},
		RecipeItem{IngredientID: "saffron", QuantityPerUnit: 2},
	)
	stocks := map[string]float64{"flour": 10000, "saffron": 7}

	avail, err := ResolveAvailability(recipe, stocks, 2)
	require.NoError(t, err)
	assert.True(t, avail.CanAdd)
	assert.Equal(t, 3, avail.MaxFulfillable)
}

func TestResolveAvailability_MissingIngredientCountsAsZero(t *testing.T) {
	recipe := activeRecipe(RecipeItem{IngredientID: "flour", QuantityPerUnit: 200})

	avail, err := ResolveAvailability(recipe, map[string]float64{}, 1)
	require.NoError(t, err)
	assert.False(t, avail.CanAdd)
	assert.Equal(t, 0, avail.MaxFulfillable)
}

func TestResolveAvailability_RequestedBelowOneClampsToOne(t *testing.T) {
	recipe := activeRecipe(RecipeItem{IngredientID: "flour", QuantityPerUnit: 200})
	stocks := map[string]float64{"flour": 500}

	avail, err := ResolveAvailability(recipe, stocks, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, avail.RequestedQuantity)
	assert.True(t, avail.CanAdd)
}

func TestResolveAvailability_NonPositiveStoredQuantityIsIntegrityError(t *testing.T) {
	recipe := activeRecipe(RecipeItem{IngredientID: "flour", QuantityPerUnit: 0})

	_, err := ResolveAvailability(recipe, map[string]float64{"flour": 500}, 1)
	require.Error(t, err)
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)
}
