package domain

import "math"

// Availability is the outcome of resolving a product's recipe against current
// ingredient stock. Unconstrained means no active recipe (or an empty one)
// limits the product and any quantity can be ordered.
type Availability struct {
	ProductID         string
	RequestedQuantity int
	CanAdd            bool
	Unconstrained     bool
	MaxFulfillable    int
}

// ResolveAvailability decides whether requested units of a product can be
// fulfilled from stock. stocks maps ingredient id to base-unit stock on hand;
// ingredients absent from the map count as zero stock.
//
// A stored recipe item with a non-positive quantity violates a write-time
// invariant and is reported as an IntegrityError rather than skipped.
func ResolveAvailability(recipe *Recipe, stocks map[string]float64, requested int) (Availability, error) {
	if requested < 1 {
		requested = 1
	}

	avail := Availability{RequestedQuantity: requested}
	if recipe == nil || !recipe.IsActive || len(recipe.Items) == 0 {
		avail.CanAdd = true
		avail.Unconstrained = true
		return avail, nil
	}
	avail.ProductID = recipe.ProductID

	canAdd := true
	maxFulfillable := math.MaxInt
	for _, item := range recipe.Items {
		if item.QuantityPerUnit <= 0 {
			return Availability{}, &IntegrityError{
				Entity: "recipe " + recipe.ProductID,
				Reason: "item " + item.IngredientID + " has non-positive quantity",
			}
		}

		stock := stocks[item.IngredientID]
		if item.QuantityPerUnit*float64(requested) > stock {
			canAdd = false
		}
		if n := int(math.Floor(stock / item.QuantityPerUnit)); n < maxFulfillable {
			maxFulfillable = n
		}
	}

	avail.CanAdd = canAdd
	avail.MaxFulfillable = maxFulfillable
	return avail, nil
}
