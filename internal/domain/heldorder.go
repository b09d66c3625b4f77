package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// OrderType is the service mode of a held order
type OrderType string

const (
	OrderDineIn   OrderType = "Dine in"
	OrderTakeAway OrderType = "Take away"
	OrderDelivery OrderType = "Delivery"
)

// IsValid reports whether the order type is one of the known modes
func (t OrderType) IsValid() bool {
	switch t {
	case OrderDineIn, OrderTakeAway, OrderDelivery:
		return true
	}
	return false
}

// HeldOrderItem is a line captured when the cart was suspended. It snapshots
// product name and price at hold time and does not follow later changes.
type HeldOrderItem struct {
	ProductID   string   `bson:"product" json:"product"`
	ProductName string   `bson:"productName" json:"productName"`
	Quantity    int      `bson:"quantity" json:"quantity"`
	UnitPrice   float64  `bson:"unitPrice" json:"unitPrice"`
	LineTotal   float64  `bson:"lineTotal" json:"lineTotal"`
	Size        string   `bson:"size,omitempty" json:"size,omitempty"`
	SizeLabel   string   `bson:"sizeLabel,omitempty" json:"sizeLabel,omitempty"`
	Toppings    []string `bson:"toppings,omitempty" json:"toppings,omitempty"`
	Notes       string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// HeldOrder is a suspended cart snapshot. Its identity is the allocator-issued
// hold code; OrderNumber is a separate display code derived from a running
// count and carries no uniqueness guarantee.
type HeldOrder struct {
	Code        string          `bson:"_id" json:"id"`
	OrderNumber string          `bson:"orderNumber" json:"orderNumber"`
	TableNumber string          `bson:"tableNumber" json:"tableNumber"`
	OrderType   OrderType       `bson:"orderType" json:"orderType"`
	Items       []HeldOrderItem `bson:"items" json:"items"`
	Subtotal    float64         `bson:"subtotal" json:"subtotal"`
	Tax         float64         `bson:"tax" json:"tax"`
	Total       float64         `bson:"total" json:"total"`
	HeldAt      time.Time       `bson:"heldAt" json:"heldAt"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// HeldOrderInput carries the caller-supplied fields for suspending a cart
type HeldOrderInput struct {
	TableNumber string
	OrderType   string
	Items       []HeldOrderItem
	Subtotal    float64
	Tax         float64
	Total       float64
}

// NewHeldOrder validates the input and builds the snapshot. The code and
// order number must already be allocated by the caller.
func NewHeldOrder(code, orderNumber string, in HeldOrderInput, now time.Time) (*HeldOrder, error) {
	if len(in.Items) == 0 {
		return nil, invalidField("items", ErrEmptyItems.Error())
	}
	if in.OrderType == "" {
		return nil, invalidField("orderType", "order type is required")
	}
	if !OrderType(in.OrderType).IsValid() {
		return nil, invalidField("orderType", "order type must be Dine in, Take away or Delivery")
	}
	for idx, item := range in.Items {
		if item.ProductID == "" {
			return nil, invalidField("items", itemField(idx, "product is required"))
		}
		if item.Quantity < 1 {
			return nil, invalidField("items", itemField(idx, "quantity must be at least 1"))
		}
		if item.UnitPrice < 0 {
			return nil, invalidField("items", itemField(idx, "unit price must not be negative"))
		}
	}
	if in.Subtotal < 0 {
		return nil, invalidField("subtotal", "subtotal must not be negative")
	}
	if in.Tax < 0 {
		return nil, invalidField("tax", "tax must not be negative")
	}
	if in.Total < 0 {
		return nil, invalidField("total", "total must not be negative")
	}

	items := make([]HeldOrderItem, len(in.Items))
	copy(items, in.Items)
	for i := range items {
		items[i].LineTotal = float64(items[i].Quantity) * items[i].UnitPrice
	}

	return &HeldOrder{
		Code:        code,
		OrderNumber: orderNumber,
		TableNumber: in.TableNumber,
		OrderType:   OrderType(in.OrderType),
		Items:       items,
		Subtotal:    in.Subtotal,
		Tax:         in.Tax,
		Total:       in.Total,
		HeldAt:      now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Hold code format: HLD followed by a zero-padded number, minimum 3 digits.
const (
	HoldCodePrefix   = "HLD"
	holdCodeMinWidth = 3
)

var holdCodePattern = regexp.MustCompile(`^HLD(\d{3,})$`)

// FormatHoldCode renders a numeric suffix as a hold code
func FormatHoldCode(n int) string {
	return fmt.Sprintf("%s%0*d", HoldCodePrefix, holdCodeMinWidth, n)
}

// ParseHoldCode extracts the numeric suffix of a hold code
func ParseHoldCode(code string) (int, bool) {
	m := holdCodePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatOrderNumber renders a running count as a display order number
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("#%04d", n)
}
