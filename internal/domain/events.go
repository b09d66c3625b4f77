package domain

import "time"

// DomainEvent is implemented by events emitted after successful mutations
type DomainEvent interface {
	EventType() string
}

// StockConsumedEvent is emitted after an order consumed a recipe's ingredients
type StockConsumedEvent struct {
	ProductID  string           `json:"product"`
	Quantity   int              `json:"quantity"`
	Deductions []StockDeduction `json:"deductions"`
	ConsumedAt time.Time        `json:"consumedAt"`
}

func (e *StockConsumedEvent) EventType() string { return "stock.consumed" }

// IngredientDepletedEvent is emitted when a consumption empties an ingredient
type IngredientDepletedEvent struct {
	IngredientID string    `json:"ingredient"`
	DepletedAt   time.Time `json:"depletedAt"`
}

func (e *IngredientDepletedEvent) EventType() string { return "ingredient.depleted" }

// CycleAdvancedEvent is emitted when a replenishment cycle fires
type CycleAdvancedEvent struct {
	IngredientID    string     `json:"ingredient"`
	ReplenishedTo   float64    `json:"replenishedTo"`
	NextReceiveDate *time.Time `json:"nextReceiveDate,omitempty"`
	AdvancedAt      time.Time  `json:"advancedAt"`
}

func (e *CycleAdvancedEvent) EventType() string { return "stock.cycle_advanced" }

// OrderHeldEvent is emitted when a cart is suspended
type OrderHeldEvent struct {
	Code        string    `json:"code"`
	OrderNumber string    `json:"orderNumber"`
	Total       float64   `json:"total"`
	HeldAt      time.Time `json:"heldAt"`
}

func (e *OrderHeldEvent) EventType() string { return "order.held" }

// OrderDiscardedEvent is emitted when a held order is deleted
type OrderDiscardedEvent struct {
	Code        string    `json:"code"`
	DiscardedAt time.Time `json:"discardedAt"`
}

func (e *OrderDiscardedEvent) EventType() string { return "order.discarded" }
