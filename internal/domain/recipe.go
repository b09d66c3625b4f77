package domain

import (
	"fmt"
	"time"
)

// RecipeItem is one line of a recipe's bill of materials. QuantityPerUnit is
// expressed in the referenced ingredient's base unit.
type RecipeItem struct {
	IngredientID    string  `bson:"ingredient" json:"ingredient"`
	QuantityPerUnit float64 `bson:"quantity" json:"quantity"`
}

// Recipe maps a product to the ingredient quantities one unit of it consumes.
// There is at most one recipe per product; writes replace the item list whole.
type Recipe struct {
	ID        string       `bson:"_id" json:"id"`
	ProductID string       `bson:"product" json:"product"`
	Items     []RecipeItem `bson:"items" json:"items"`
	IsActive  bool         `bson:"isActive" json:"isActive"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// ValidateRecipeItems checks the BOM lines a caller wants to store.
// Ingredient existence is the registry's concern; this covers shape only.
func ValidateRecipeItems(items []RecipeItem) error {
	for idx, item := range items {
		if item.IngredientID == "" {
			return invalidField("items", itemField(idx, "ingredient is required"))
		}
		if item.QuantityPerUnit <= 0 {
			return invalidField("items", itemField(idx, "quantity must be positive"))
		}
	}
	return nil
}

func itemField(idx int, msg string) string {
	return fmt.Sprintf("item %d: %s", idx, msg)
}

// RequiredFor returns the total base-unit quantities needed to make the
// requested number of product units.
func (r *Recipe) RequiredFor(requested int) map[string]float64 {
	required := make(map[string]float64, len(r.Items))
	for _, item := range r.Items {
		required[item.IngredientID] += item.QuantityPerUnit * float64(requested)
	}
	return required
}
