package application

import (
	"time"

	"github.com/pos-platform/inventory-service/internal/domain"
)

// RecipeItemDTO is a recipe line expanded with the referenced ingredient's
// descriptive fields at read time. Ingredient is nil when the referenced
// ingredient no longer exists.
type RecipeItemDTO struct {
	IngredientID    string            `json:"ingredient"`
	QuantityPerUnit float64           `json:"quantity"`
	Ingredient      *RecipeIngredient `json:"ingredientDetails,omitempty"`
}

// RecipeIngredient is the slice of an ingredient a recipe reader needs.
type RecipeIngredient struct {
	Name             string  `json:"name"`
	DisplayUnit      string  `json:"displayUnit"`
	BaseUnit         string  `json:"baseUnit"`
	ConversionFactor float64 `json:"conversionFactor"`
	StockOnHand      float64 `json:"stockOnHand"`
}

// RecipeDTO is a recipe with its items expanded for API responses.
type RecipeDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product"`
	Items     []RecipeItemDTO `json:"items"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AvailabilityDTO is the API shape of an availability check.
type AvailabilityDTO struct {
	ProductID         string `json:"product"`
	RequestedQuantity int    `json:"requestedQuantity"`
	CanAdd            bool   `json:"canAdd"`
	Unconstrained     bool   `json:"unconstrained"`
	MaxFulfillable    *int   `json:"maxFulfillable,omitempty"`
}

// ConsumeResultDTO reports what a consumption deducted.
type ConsumeResultDTO struct {
	ProductID  string                  `json:"product"`
	Quantity   int                     `json:"quantity"`
	Deductions []domain.StockDeduction `json:"deductions"`
	ConsumedAt time.Time               `json:"consumedAt"`
}

// CycleAdvanceDTO reports the outcome of a replenishment cycle advance.
type CycleAdvanceDTO struct {
	IngredientID    string     `json:"ingredient"`
	Advanced        bool       `json:"advanced"`
	ReplenishedTo   float64    `json:"replenishedTo,omitempty"`
	NextReceiveDate *time.Time `json:"nextReceiveDate,omitempty"`
}

func toRecipeDTO(r *domain.Recipe, ingredients []*domain.Ingredient) *RecipeDTO {
	byID := make(map[string]*domain.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	items := make([]RecipeItemDTO, len(r.Items))
	for i, item := range r.Items {
		items[i] = RecipeItemDTO{
			IngredientID:    item.IngredientID,
			QuantityPerUnit: item.QuantityPerUnit,
		}
		if ing, ok := byID[item.IngredientID]; ok {
			items[i].Ingredient = &RecipeIngredient{
				Name:             ing.Name,
				DisplayUnit:      ing.DisplayUnit,
				BaseUnit:         ing.BaseUnit,
				ConversionFactor: ing.ConversionFactor,
				StockOnHand:      ing.StockOnHand,
			}
		}
	}

	return &RecipeDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		Items:     items,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toAvailabilityDTO(productID string, a domain.Availability) *AvailabilityDTO {
	dto := &AvailabilityDTO{
		ProductID:         productID,
		RequestedQuantity: a.RequestedQuantity,
		CanAdd:            a.CanAdd,
		Unconstrained:     a.Unconstrained,
	}
	if !a.Unconstrained {
		max := a.MaxFulfillable
		dto.MaxFulfillable = &max
	}
	return dto
}
