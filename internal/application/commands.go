package application

import (
	"time"

	"github.com/pos-platform/inventory-service/internal/domain"
)

// CreateIngredientCommand carries the fields accepted when registering an
// ingredient. Quantities are expressed in the display unit; the domain layer
// normalizes them to base units.
type CreateIngredientCommand struct {
	Name             string     `json:"name"`
	Group            string     `json:"group"`
	SupplierName     string     `json:"supplierName"`
	DisplayUnit      string     `json:"displayUnit"`
	StockOnHand      *float64   `json:"stockOnHand"`
	ConversionFactor *float64   `json:"conversionFactor,omitempty"`
	IssueRule        string     `json:"issueRule"`
	CycleDays        *int       `json:"cycleDays,omitempty"`
	NextReceiveDate  *time.Time `json:"nextReceiveDate,omitempty"`
}

// UpdateIngredientCommand is a partial update; zero-valued fields keep their
// stored values.
type UpdateIngredientCommand struct {
	Name             string     `json:"name,omitempty"`
	Group            string     `json:"group,omitempty"`
	SupplierName     string     `json:"supplierName,omitempty"`
	DisplayUnit      string     `json:"displayUnit,omitempty"`
	StockOnHand      *float64   `json:"stockOnHand,omitempty"`
	ConversionFactor *float64   `json:"conversionFactor,omitempty"`
	IssueRule        string     `json:"issueRule,omitempty"`
	CycleDays        *int       `json:"cycleDays,omitempty"`
	NextReceiveDate  *time.Time `json:"nextReceiveDate,omitempty"`
}

// RecipeItemInput is one ingredient line of a recipe upsert.
type RecipeItemInput struct {
	IngredientID    string  `json:"ingredient"`
	QuantityPerUnit float64 `json:"quantity"`
}

// UpsertRecipeCommand replaces the full item list of a product recipe.
type UpsertRecipeCommand struct {
	Items []RecipeItemInput `json:"items"`
}

// ConsumeStockCommand deducts the ingredients needed for a number of units
// of a product.
type ConsumeStockCommand struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// HeldOrderItemInput is one line of an order being parked.
type HeldOrderItemInput struct {
	ProductID   string   `json:"product"`
	ProductName string   `json:"productName"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	Size        string   `json:"size,omitempty"`
	SizeLabel   string   `json:"sizeLabel,omitempty"`
	Toppings    []string `json:"toppings,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// CreateHeldOrderCommand parks an in-progress order under a fresh hold code.
type CreateHeldOrderCommand struct {
	TableNumber string               `json:"tableNumber,omitempty"`
	OrderType   string               `json:"orderType"`
	Items       []HeldOrderItemInput `json:"items"`
	Subtotal    float64              `json:"subtotal"`
	Tax         float64              `json:"tax"`
	Total       float64              `json:"total"`
}

func (c CreateIngredientCommand) toInput() domain.IngredientInput {
	return domain.IngredientInput{
		Name:             c.Name,
		Group:            c.Group,
		SupplierName:     c.SupplierName,
		DisplayUnit:      c.DisplayUnit,
		StockOnHand:      c.StockOnHand,
		ConversionFactor: c.ConversionFactor,
		IssueRule:        c.IssueRule,
		CycleDays:        c.CycleDays,
		NextReceiveDate:  c.NextReceiveDate,
	}
}

func (c UpdateIngredientCommand) toInput() domain.IngredientInput {
	return domain.IngredientInput{
		Name:             c.Name,
		Group:            c.Group,
		SupplierName:     c.SupplierName,
		DisplayUnit:      c.DisplayUnit,
		StockOnHand:      c.StockOnHand,
		ConversionFactor: c.ConversionFactor,
		IssueRule:        c.IssueRule,
		CycleDays:        c.CycleDays,
		NextReceiveDate:  c.NextReceiveDate,
	}
}

func (c UpsertRecipeCommand) toItems() []domain.RecipeItem {
	items := make([]domain.RecipeItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = domain.RecipeItem{
			IngredientID:    it.IngredientID,
			QuantityPerUnit: it.QuantityPerUnit,
		}
	}
	return items
}

func (c CreateHeldOrderCommand) toInput() domain.HeldOrderInput {
	items := make([]domain.HeldOrderItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = domain.HeldOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Size:        it.Size,
			SizeLabel:   it.SizeLabel,
			Toppings:    it.Toppings,
			Notes:       it.Notes,
		}
	}
	return domain.HeldOrderInput{
		TableNumber: c.TableNumber,
		OrderType:   c.OrderType,
		Items:       items,
		Subtotal:    c.Subtotal,
		Tax:         c.Tax,
		Total:       c.Total,
	}
}
