package application

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
)

func newTestLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = io.Discard
	return logging.New(config)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("test"))
}

func newTestPublisher(m *metrics.Metrics) *EventPublisher {
	return NewEventPublisher(nil, m, newTestLogger(), "/test")
}

type fakeIngredientRepo struct {
	mu         sync.Mutex
	items      map[string]*domain.Ingredient
	insertErr  error
	replaceErr error
	findErr    error
	deleteErr  error
	consumeErr error
	advanceErr error
}

func newFakeIngredientRepo(items ...*domain.Ingredient) *fakeIngredientRepo {
	f := &fakeIngredientRepo{items: make(map[string]*domain.Ingredient)}
	for _, ing := range items {
		f.items[ing.ID] = ing
	}
	return f
}

func (f *fakeIngredientRepo) Insert(ctx context.Context, ing *domain.Ingredient) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[ing.ID] = ing
	return nil
}

func (f *fakeIngredientRepo) Replace(ctx context.Context, ing *domain.Ingredient) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[ing.ID]; !ok {
		return domain.ErrIngredientMissing
	}
	f.items[ing.ID] = ing
	return nil
}

func (f *fakeIngredientRepo) FindByID(ctx context.Context, id string) (*domain.Ingredient, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id], nil
}

func (f *fakeIngredientRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Ingredient, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*domain.Ingredient
	for _, id := range ids {
		if ing, ok := f.items[id]; ok {
			results = append(results, ing)
		}
	}
	return results, nil
}

func (f *fakeIngredientRepo) Delete(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeIngredientRepo) List(ctx context.Context, search string) ([]*domain.Ingredient, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*domain.Ingredient
	needle := strings.ToLower(search)
	for _, ing := range f.items {
		if search == "" ||
			strings.Contains(strings.ToLower(ing.Name), needle) ||
			strings.Contains(strings.ToLower(ing.Group), needle) ||
			strings.Contains(strings.ToLower(ing.SupplierName), needle) {
			results = append(results, ing)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

func (f *fakeIngredientRepo) FindLowStock(ctx context.Context, threshold float64) ([]*domain.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*domain.Ingredient
	for _, ing := range f.items {
		if ing.StockOnHand <= threshold {
			results = append(results, ing)
		}
	}
	return results, nil
}

func (f *fakeIngredientRepo) FindCycleDue(ctx context.Context, asOf time.Time) ([]*domain.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*domain.Ingredient
	for _, ing := range f.items {
		if ing.CycleDue(asOf) {
			results = append(results, ing)
		}
	}
	return results, nil
}

// Consume mirrors the production semantics: all deductions or none, each
// conditioned on sufficient stock.
func (f *fakeIngredientRepo) Consume(ctx context.Context, deductions []domain.StockDeduction) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range deductions {
		ing, ok := f.items[d.IngredientID]
		if !ok || ing.StockOnHand < d.Quantity {
			return &domain.InsufficientStockError{IngredientID: d.IngredientID, Requested: d.Quantity}
		}
	}
	for _, d := range deductions {
		f.items[d.IngredientID].StockOnHand -= d.Quantity
	}
	return nil
}

func (f *fakeIngredientRepo) AdvanceCycle(ctx context.Context, id string, replenish float64, next *time.Time, asOf time.Time) (bool, error) {
	if f.advanceErr != nil {
		return false, f.advanceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ing, ok := f.items[id]
	if !ok || !ing.CycleDue(asOf) {
		return false, nil
	}
	ing.StockOnHand = replenish
	ing.NextReceiveDate = next
	return true, nil
}

type fakeRecipeRepo struct {
	mu        sync.Mutex
	recipes   map[string]*domain.Recipe
	findErr   error
	upsertErr error
}

func newFakeRecipeRepo(recipes ...*domain.Recipe) *fakeRecipeRepo {
	f := &fakeRecipeRepo{recipes: make(map[string]*domain.Recipe)}
	for _, r := range recipes {
		f.recipes[r.ProductID] = r
	}
	return f
}

func (f *fakeRecipeRepo) FindByProduct(ctx context.Context, productID string) (*domain.Recipe, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipes[productID], nil
}

func (f *fakeRecipeRepo) Upsert(ctx context.Context, productID string, items []domain.RecipeItem, now time.Time) (*domain.Recipe, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.recipes[productID]
	if !ok {
		recipe = &domain.Recipe{
			ID:        uuid.New().String(),
			ProductID: productID,
			IsActive:  true,
			CreatedAt: now,
		}
		f.recipes[productID] = recipe
	}
	recipe.Items = items
	recipe.IsActive = true
	recipe.UpdatedAt = now
	return recipe, nil
}

func (f *fakeRecipeRepo) SetActive(ctx context.Context, productID string, isActive bool, now time.Time) (*domain.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.recipes[productID]
	if !ok {
		return nil, nil
	}
	recipe.IsActive = isActive
	recipe.UpdatedAt = now
	return recipe, nil
}

func (f *fakeRecipeRepo) DeleteByProduct(ctx context.Context, productID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[productID]; !ok {
		return false, nil
	}
	delete(f.recipes, productID)
	return true, nil
}

func (f *fakeRecipeRepo) ReferencesIngredient(ctx context.Context, ingredientID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, recipe := range f.recipes {
		if !recipe.IsActive {
			continue
		}
		for _, item := range recipe.Items {
			if item.IngredientID == ingredientID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeHeldOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.HeldOrder
	insertErr error
	findErr   error
	countErr  error
	probeErr  error
}

func newFakeHeldOrderRepo(orders ...*domain.HeldOrder) *fakeHeldOrderRepo {
	f := &fakeHeldOrderRepo{orders: make(map[string]*domain.HeldOrder)}
	for _, o := range orders {
		f.orders[o.Code] = o
	}
	return f
}

func (f *fakeHeldOrderRepo) Insert(ctx context.Context, order *domain.HeldOrder) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.Code]; ok {
		return domain.ErrCodeTaken
	}
	f.orders[order.Code] = order
	return nil
}

func (f *fakeHeldOrderRepo) FindByCode(ctx context.Context, code string) (*domain.HeldOrder, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[code], nil
}

func (f *fakeHeldOrderRepo) Delete(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[code]; !ok {
		return false, nil
	}
	delete(f.orders, code)
	return true, nil
}

func (f *fakeHeldOrderRepo) List(ctx context.Context, search string) ([]*domain.HeldOrder, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*domain.HeldOrder
	needle := strings.ToLower(search)
	for _, o := range f.orders {
		if search == "" ||
			strings.Contains(strings.ToLower(o.Code), needle) ||
			strings.Contains(strings.ToLower(o.TableNumber), needle) ||
			strings.Contains(strings.ToLower(string(o.OrderType)), needle) {
			results = append(results, o)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].HeldAt.After(results[j].HeldAt) })
	return results, nil
}

func (f *fakeHeldOrderRepo) Count(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.orders)), nil
}

func (f *fakeHeldOrderRepo) MaxCode(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	code := ""
	for c := range f.orders {
		if n, ok := domain.ParseHoldCode(c); ok && n > max {
			max = n
			code = c
		}
	}
	return code, nil
}

func (f *fakeHeldOrderRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	if f.probeErr != nil {
		return false, f.probeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.orders[code]
	return ok, nil
}
