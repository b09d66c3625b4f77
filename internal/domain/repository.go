package domain

import (
	"context"
	"time"
)

// StockDeduction is one base-unit decrement applied during consumption
type StockDeduction struct {
	IngredientID string  `json:"ingredient"`
	Quantity     float64 `json:"quantity"`
}

// IngredientRepository owns Ingredient records
type IngredientRepository interface {
	Insert(ctx context.Context, ing *Ingredient) error
	Replace(ctx context.Context, ing *Ingredient) error
	FindByID(ctx context.Context, id string) (*Ingredient, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Ingredient, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, search string) ([]*Ingredient, error)
	FindLowStock(ctx context.Context, threshold float64) ([]*Ingredient, error)
	FindCycleDue(ctx context.Context, asOf time.Time) ([]*Ingredient, error)

	// Consume applies every deduction atomically, each one conditioned on
	// sufficient stock. Either all deductions land or none do; an
	// InsufficientStockError names the first ingredient that could not cover
	// its share.
	Consume(ctx context.Context, deductions []StockDeduction) error

	// AdvanceCycle resets stock to the replenish quantity and moves the next
	// receive date, conditioned on the rule being cycle and the current date
	// being due. Returns false when the condition did not hold (no-op).
	AdvanceCycle(ctx context.Context, id string, replenish float64, next *time.Time, asOf time.Time) (bool, error)
}

// RecipeRepository owns Recipe records, keyed by product
type RecipeRepository interface {
	FindByProduct(ctx context.Context, productID string) (*Recipe, error)

	// Upsert atomically replaces the item list for the product, creating the
	// recipe if absent. createdAt is set only on first write.
	Upsert(ctx context.Context, productID string, items []RecipeItem, now time.Time) (*Recipe, error)

	SetActive(ctx context.Context, productID string, isActive bool, now time.Time) (*Recipe, error)
	DeleteByProduct(ctx context.Context, productID string) (bool, error)

	// ReferencesIngredient reports whether any active recipe includes the
	// ingredient. Used to block ingredient deletion.
	ReferencesIngredient(ctx context.Context, ingredientID string) (bool, error)
}

// HeldOrderRepository owns HeldOrder records
type HeldOrderRepository interface {
	// Insert fails with ErrCodeTaken when the code already exists.
	Insert(ctx context.Context, order *HeldOrder) error
	FindByCode(ctx context.Context, code string) (*HeldOrder, error)
	Delete(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, search string) ([]*HeldOrder, error)
	Count(ctx context.Context) (int64, error)

	// MaxCode returns the greatest existing hold code, or "" when none exist.
	MaxCode(ctx context.Context) (string, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}
