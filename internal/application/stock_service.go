package application

import (
	"context"
	"time"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/errors"
	"github.com/pos-platform/inventory-service/pkg/kafka"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
)

// StockService implements availability resolution, order-time consumption and
// replenishment cycle advancement.
type StockService struct {
	ingredients domain.IngredientRepository
	recipes     domain.RecipeRepository
	publisher   *EventPublisher
	metrics     *metrics.Metrics
	logger      *logging.Logger
}

func NewStockService(ingredients domain.IngredientRepository, recipes domain.RecipeRepository, publisher *EventPublisher, m *metrics.Metrics, logger *logging.Logger) *StockService {
	return &StockService{
		ingredients: ingredients,
		recipes:     recipes,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.WithComponent("stock-service"),
	}
}

// CheckAvailability resolves how many units of a product current stock can
// cover. Products without an active recipe are unconstrained.
func (s *StockService) CheckAvailability(ctx context.Context, productID string, requested int) (*AvailabilityDTO, error) {
	if productID == "" {
		return nil, errors.ErrValidationField("product", "product is required")
	}

	recipe, err := s.recipes.FindByProduct(ctx, productID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load recipe").Wrap(err)
	}

	stocks, err := s.stocksFor(ctx, recipe)
	if err != nil {
		return nil, err
	}

	avail, err := domain.ResolveAvailability(recipe, stocks, requested)
	if err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "recipe integrity violation", "product", productID)
		return nil, errors.ErrInternal("recipe data is inconsistent").Wrap(err)
	}
	return toAvailabilityDTO(productID, avail), nil
}

// Consume deducts the ingredients an order's product units require, all
// deductions atomically or none. Products without an active recipe consume
// nothing and succeed.
func (s *StockService) Consume(ctx context.Context, cmd ConsumeStockCommand) (*ConsumeResultDTO, error) {
	if cmd.ProductID == "" {
		return nil, errors.ErrValidationField("product", "product is required")
	}
	if cmd.Quantity < 1 {
		return nil, errors.ErrValidationField("quantity", "quantity must be at least 1")
	}

	now := time.Now().UTC()
	result := &ConsumeResultDTO{
		ProductID:  cmd.ProductID,
		Quantity:   cmd.Quantity,
		Deductions: []domain.StockDeduction{},
		ConsumedAt: now,
	}

	recipe, err := s.recipes.FindByProduct(ctx, cmd.ProductID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load recipe").Wrap(err)
	}
	if recipe == nil || !recipe.IsActive || len(recipe.Items) == 0 {
		s.metrics.RecordConsumption("unconstrained")
		return result, nil
	}

	required := recipe.RequiredFor(cmd.Quantity)
	deductions := make([]domain.StockDeduction, 0, len(required))
	for _, item := range recipe.Items {
		if qty, ok := required[item.IngredientID]; ok {
			deductions = append(deductions, domain.StockDeduction{
				IngredientID: item.IngredientID,
				Quantity:     qty,
			})
			delete(required, item.IngredientID)
		}
	}

	if err := s.ingredients.Consume(ctx, deductions); err != nil {
		if ise, ok := domain.AsInsufficientStock(err); ok {
			s.metrics.RecordConsumption("insufficient")
			return nil, errors.ErrConflict("insufficient stock").
				WithDetail("ingredient", ise.IngredientID)
		}
		s.metrics.RecordConsumption("error")
		s.logger.WithError(err).ErrorContext(ctx, "failed to consume stock", "product", cmd.ProductID)
		return nil, errors.ErrInternal("failed to consume stock").Wrap(err)
	}

	s.metrics.RecordConsumption("success")
	result.Deductions = deductions

	s.logger.InfoContext(ctx, "stock consumed",
		"product", cmd.ProductID, "quantity", cmd.Quantity, "deductions", len(deductions))

	s.publisher.Publish(ctx, kafka.Topics.StockEvents, cmd.ProductID, &domain.StockConsumedEvent{
		ProductID:  cmd.ProductID,
		Quantity:   cmd.Quantity,
		Deductions: deductions,
		ConsumedAt: now,
	})
	s.reportDepletions(ctx, deductions, now)

	return result, nil
}

// AdvanceCycle resets a cycle-ruled ingredient's stock to the replenish
// quantity and rolls its next receive date forward. Not-due ingredients
// report Advanced false without touching stock.
func (s *StockService) AdvanceCycle(ctx context.Context, ingredientID string, replenishQty float64, asOf time.Time) (*CycleAdvanceDTO, error) {
	if replenishQty < 0 {
		return nil, errors.ErrValidationField("replenishQuantity", "replenish quantity must not be negative")
	}

	ing, err := s.ingredients.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load ingredient").Wrap(err)
	}
	if ing == nil {
		return nil, errors.ErrNotFoundWithID("ingredient", ingredientID)
	}

	dto := &CycleAdvanceDTO{IngredientID: ingredientID}
	if !ing.CycleDue(asOf) {
		return dto, nil
	}

	replenish := domain.ToBaseUnits(replenishQty, ing.ConversionFactor)
	next := ing.NextCycleDate(asOf)

	advanced, err := s.ingredients.AdvanceCycle(ctx, ingredientID, replenish, next, asOf)
	if err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to advance cycle", "ingredientId", ingredientID)
		return nil, errors.ErrInternal("failed to advance cycle").Wrap(err)
	}
	if !advanced {
		// lost a race or no longer due; report the no-op
		return dto, nil
	}

	s.metrics.CycleAdvances.Inc()
	dto.Advanced = true
	dto.ReplenishedTo = replenish
	dto.NextReceiveDate = next

	s.logger.InfoContext(ctx, "replenishment cycle advanced",
		"ingredientId", ingredientID, "replenishedTo", replenish)

	s.publisher.Publish(ctx, kafka.Topics.StockEvents, ingredientID, &domain.CycleAdvancedEvent{
		IngredientID:    ingredientID,
		ReplenishedTo:   replenish,
		NextReceiveDate: next,
		AdvancedAt:      asOf,
	})

	return dto, nil
}

// AdvanceDueCycles advances every ingredient whose cycle is due as of asOf.
// Used by the scheduled replenishment job.
func (s *StockService) AdvanceDueCycles(ctx context.Context, replenishQty float64, asOf time.Time) ([]*CycleAdvanceDTO, error) {
	due, err := s.ingredients.FindCycleDue(ctx, asOf)
	if err != nil {
		return nil, errors.ErrInternal("failed to scan due cycles").Wrap(err)
	}

	results := make([]*CycleAdvanceDTO, 0, len(due))
	for _, ing := range due {
		dto, err := s.AdvanceCycle(ctx, ing.ID, replenishQty, asOf)
		if err != nil {
			s.logger.WithError(err).ErrorContext(ctx, "cycle advance failed, continuing",
				"ingredientId", ing.ID)
			continue
		}
		results = append(results, dto)
	}
	return results, nil
}

// stocksFor loads base-unit stock for every ingredient a recipe references.
func (s *StockService) stocksFor(ctx context.Context, recipe *domain.Recipe) (map[string]float64, error) {
	if recipe == nil || len(recipe.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, len(recipe.Items))
	for i, item := range recipe.Items {
		ids[i] = item.IngredientID
	}

	ings, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.ErrInternal("failed to load ingredient stock").Wrap(err)
	}

	stocks := make(map[string]float64, len(ings))
	for _, ing := range ings {
		stocks[ing.ID] = ing.StockOnHand
	}
	return stocks, nil
}

// reportDepletions emits a depletion event for every ingredient a consumption
// drained to zero.
func (s *StockService) reportDepletions(ctx context.Context, deductions []domain.StockDeduction, now time.Time) {
	ids := make([]string, len(deductions))
	for i, d := range deductions {
		ids[i] = d.IngredientID
	}

	ings, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "failed to check for depletions")
		return
	}
	for _, ing := range ings {
		if ing.StockOnHand <= 0 {
			s.publisher.Publish(ctx, kafka.Topics.StockEvents, ing.ID, &domain.IngredientDepletedEvent{
				IngredientID: ing.ID,
				DepletedAt:   now,
			})
		}
	}
}
