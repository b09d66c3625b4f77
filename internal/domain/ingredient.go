package domain

import (
	"time"
)

// IssueRule is the policy governing how an ingredient's stock replenishes
type IssueRule string

const (
	IssueManual   IssueRule = "manual"
	IssuePerOrder IssueRule = "perOrder"
	IssueCycle    IssueRule = "cycle"
)

// IsValid reports whether the rule is one of the known policies
func (r IssueRule) IsValid() bool {
	switch r {
	case IssueManual, IssuePerOrder, IssueCycle:
		return true
	}
	return false
}

// Ingredient is the aggregate root for a stocked ingredient. StockOnHand is
// always held in base units; display-unit quantities are converted on the way
// in and never stored.
type Ingredient struct {
	ID               string     `bson:"_id" json:"id"`
	Name             string     `bson:"name" json:"name"`
	Group            string     `bson:"group" json:"group"`
	SupplierName     string     `bson:"supplierName" json:"supplierName"`
	DisplayUnit      string     `bson:"displayUnit" json:"displayUnit"`
	BaseUnit         string     `bson:"baseUnit" json:"baseUnit"`
	ConversionFactor float64    `bson:"conversionFactor" json:"conversionFactor"`
	StockOnHand      float64    `bson:"stockOnHand" json:"stockOnHand"`
	IssueRule        IssueRule  `bson:"issueRule" json:"issueRule"`
	CycleDays        *int       `bson:"cycleDays,omitempty" json:"cycleDays,omitempty"`
	NextReceiveDate  *time.Time `bson:"nextReceiveDate,omitempty" json:"nextReceiveDate,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IngredientInput carries the caller-supplied fields for create and update.
// StockOnHand is in display units; nil pointers mean "not supplied".
type IngredientInput struct {
	Name             string
	Group            string
	SupplierName     string
	DisplayUnit      string
	ConversionFactor *float64
	StockOnHand      *float64
	IssueRule        string
	CycleDays        *int
	NextReceiveDate  *time.Time
}

// NewIngredient validates the input and builds a normalized aggregate.
// Validation fails fast on the first offending field, in a fixed order.
func NewIngredient(id string, in IngredientInput, now time.Time) (*Ingredient, error) {
	if err := validateIngredientInput(in); err != nil {
		return nil, err
	}

	factor := DefaultConversionFactor(in.DisplayUnit)
	if in.ConversionFactor != nil {
		factor = *in.ConversionFactor
	}

	ing := &Ingredient{
		ID:               id,
		Name:             in.Name,
		Group:            in.Group,
		SupplierName:     in.SupplierName,
		DisplayUnit:      in.DisplayUnit,
		BaseUnit:         DefaultBaseUnit(in.DisplayUnit),
		ConversionFactor: factor,
		StockOnHand:      ToBaseUnits(*in.StockOnHand, factor),
		IssueRule:        IssueRule(in.IssueRule),
		CycleDays:        in.CycleDays,
		NextReceiveDate:  in.NextReceiveDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	ing.deriveNextReceiveDate(now)

	return ing, nil
}

// ApplyUpdate merges the supplied fields into the existing record and
// re-validates the merged result under the same rules as creation.
// A supplied StockOnHand is interpreted in the (possibly new) display unit
// and re-normalized; an omitted one keeps the stored base-unit quantity.
func (i *Ingredient) ApplyUpdate(in IngredientInput, now time.Time) error {
	merged := IngredientInput{
		Name:             i.Name,
		Group:            i.Group,
		SupplierName:     i.SupplierName,
		DisplayUnit:      i.DisplayUnit,
		ConversionFactor: in.ConversionFactor,
		StockOnHand:      in.StockOnHand,
		IssueRule:        string(i.IssueRule),
		CycleDays:        i.CycleDays,
		NextReceiveDate:  i.NextReceiveDate,
	}
	if in.Name != "" {
		merged.Name = in.Name
	}
	if in.Group != "" {
		merged.Group = in.Group
	}
	if in.SupplierName != "" {
		merged.SupplierName = in.SupplierName
	}
	if in.DisplayUnit != "" {
		merged.DisplayUnit = in.DisplayUnit
	}
	if in.IssueRule != "" {
		merged.IssueRule = in.IssueRule
	}
	if in.CycleDays != nil {
		merged.CycleDays = in.CycleDays
	}
	if in.NextReceiveDate != nil {
		merged.NextReceiveDate = in.NextReceiveDate
	}
	if merged.StockOnHand == nil {
		// keep stored stock; validation needs a value
		kept := i.StockOnHand
		merged.StockOnHand = &kept
	}

	if err := validateIngredientInput(merged); err != nil {
		return err
	}

	factor := i.ConversionFactor
	if in.ConversionFactor != nil {
		factor = *in.ConversionFactor
	} else if in.DisplayUnit != "" && in.DisplayUnit != i.DisplayUnit {
		factor = DefaultConversionFactor(in.DisplayUnit)
	}

	i.Name = merged.Name
	i.Group = merged.Group
	i.SupplierName = merged.SupplierName
	i.DisplayUnit = merged.DisplayUnit
	i.BaseUnit = DefaultBaseUnit(merged.DisplayUnit)
	i.ConversionFactor = factor
	if in.StockOnHand != nil {
		i.StockOnHand = ToBaseUnits(*in.StockOnHand, factor)
	}
	i.IssueRule = IssueRule(merged.IssueRule)
	i.CycleDays = merged.CycleDays
	if in.NextReceiveDate != nil {
		i.NextReceiveDate = in.NextReceiveDate
	} else if in.CycleDays != nil {
		// a new cycle length restarts the schedule from today
		i.NextReceiveDate = nil
	}
	i.UpdatedAt = now
	i.deriveNextReceiveDate(now)

	return nil
}

func validateIngredientInput(in IngredientInput) error {
	if in.Name == "" {
		return invalidField("name", "name is required")
	}
	if in.Group == "" {
		return invalidField("group", "group is required")
	}
	if in.SupplierName == "" {
		return invalidField("supplierName", "supplier name is required")
	}
	if in.DisplayUnit == "" {
		return invalidField("displayUnit", "unit is required")
	}
	if in.StockOnHand == nil {
		return invalidField("stockOnHand", "stock on hand is required")
	}
	if *in.StockOnHand < 0 {
		return invalidField("stockOnHand", "stock on hand must not be negative")
	}
	if in.ConversionFactor != nil && *in.ConversionFactor <= 0 {
		return invalidField("conversionFactor", "conversion factor must be positive")
	}
	if in.IssueRule == "" {
		return invalidField("issueRule", "issue rule is required")
	}
	if !IssueRule(in.IssueRule).IsValid() {
		return invalidField("issueRule", "issue rule must be manual, perOrder or cycle")
	}
	if IssueRule(in.IssueRule) == IssueCycle {
		hasDays := in.CycleDays != nil && *in.CycleDays > 0
		if in.CycleDays != nil && *in.CycleDays <= 0 {
			return invalidField("cycleDays", "cycle days must be positive")
		}
		if !hasDays && in.NextReceiveDate == nil {
			return invalidField("cycleDays", "cycle issue rule requires cycle days or a next receive date")
		}
	}
	return nil
}

// deriveNextReceiveDate fills NextReceiveDate from CycleDays when the rule is
// cycle and no explicit date was supplied.
func (i *Ingredient) deriveNextReceiveDate(now time.Time) {
	if i.IssueRule != IssueCycle || i.NextReceiveDate != nil {
		return
	}
	if i.CycleDays != nil && *i.CycleDays > 0 {
		next := StartOfDay(now).AddDate(0, 0, *i.CycleDays)
		i.NextReceiveDate = &next
	}
}

// CycleDue reports whether the ingredient's replenishment cycle is due
func (i *Ingredient) CycleDue(asOf time.Time) bool {
	return i.IssueRule == IssueCycle &&
		i.NextReceiveDate != nil &&
		!i.NextReceiveDate.After(asOf)
}

// NextCycleDate computes the receive date following an advance at asOf.
// Returns nil when the schedule was a one-shot explicit date with no cycle
// length to roll forward from.
func (i *Ingredient) NextCycleDate(asOf time.Time) *time.Time {
	if i.CycleDays == nil || *i.CycleDays <= 0 {
		return nil
	}
	next := StartOfDay(asOf).AddDate(0, 0, *i.CycleDays)
	return &next
}

// StartOfDay truncates a time to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
