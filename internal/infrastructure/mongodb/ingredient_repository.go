package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/mongodb"
)

const ingredientCollection = "ingredients"

// IngredientRepository is the MongoDB implementation of
// domain.IngredientRepository. Stock mutations use conditional updates so a
// decrement can never take stock below zero.
type IngredientRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

func NewIngredientRepository(client *mongodb.Client) (*IngredientRepository, error) {
	repo := &IngredientRepository{
		client:     client,
		collection: client.Collection(ingredientCollection),
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create ingredient indexes: %w", err)
	}
	return repo, nil
}

func (r *IngredientRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "group", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "stockOnHand", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "issueRule", Value: 1}, {Key: "nextReceiveDate", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *IngredientRepository) Insert(ctx context.Context, ing *domain.Ingredient) error {
	_, err := r.collection.InsertOne(ctx, ing)
	if err != nil {
		return fmt.Errorf("failed to insert ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepository) Replace(ctx context.Context, ing *domain.Ingredient) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ing.ID}, ing)
	if err != nil {
		return fmt.Errorf("failed to replace ingredient: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrIngredientMissing
	}
	return nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ing)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ingredient: %w", err)
	}
	return &ing, nil
}

func (r *IngredientRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *IngredientRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete ingredient: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *IngredientRepository) List(ctx context.Context, search string) ([]*domain.Ingredient, error) {
	filter := bson.M{}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"group": pattern},
			{"supplierName": pattern},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *IngredientRepository) FindLowStock(ctx context.Context, threshold float64) ([]*domain.Ingredient, error) {
	filter := bson.M{"stockOnHand": bson.M{"$lte": threshold}}
	opts := options.Find().SetSort(bson.D{{Key: "stockOnHand", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *IngredientRepository) FindCycleDue(ctx context.Context, asOf time.Time) ([]*domain.Ingredient, error) {
	filter := bson.M{
		"issueRule":       domain.IssueCycle,
		"nextReceiveDate": bson.M{"$lte": asOf},
	}
	opts := options.Find().SetSort(bson.D{{Key: "nextReceiveDate", Value: 1}})
	return r.find(ctx, filter, opts)
}

// Consume decrements every ingredient inside one transaction, each decrement
// conditioned on sufficient stock. The first condition that fails aborts the
// transaction, so either all deductions land or none do.
func (r *IngredientRepository) Consume(ctx context.Context, deductions []domain.StockDeduction) error {
	if len(deductions) == 0 {
		return nil
	}

	now := time.Now().UTC()
	return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, d := range deductions {
			filter := bson.M{
				"_id":         d.IngredientID,
				"stockOnHand": bson.M{"$gte": d.Quantity},
			}
			update := bson.M{
				"$inc": bson.M{"stockOnHand": -d.Quantity},
				"$set": bson.M{"updatedAt": now},
			}
			result, err := r.collection.UpdateOne(sessCtx, filter, update)
			if err != nil {
				return fmt.Errorf("failed to deduct ingredient %s: %w", d.IngredientID, err)
			}
			if result.MatchedCount == 0 {
				return &domain.InsufficientStockError{
					IngredientID: d.IngredientID,
					Requested:    d.Quantity,
				}
			}
		}
		return nil
	})
}

// AdvanceCycle resets stock and rolls the receive date forward, conditioned
// on the ingredient still being cycle-ruled and due. The condition makes
// concurrent advances idempotent: only one of them matches.
func (r *IngredientRepository) AdvanceCycle(ctx context.Context, id string, replenish float64, next *time.Time, asOf time.Time) (bool, error) {
	filter := bson.M{
		"_id":             id,
		"issueRule":       domain.IssueCycle,
		"nextReceiveDate": bson.M{"$lte": asOf},
	}

	set := bson.M{
		"stockOnHand": replenish,
		"updatedAt":   time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if next != nil {
		set["nextReceiveDate"] = *next
	} else {
		update["$unset"] = bson.M{"nextReceiveDate": ""}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to advance cycle: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *IngredientRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Ingredient, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer cursor.Close(ctx)

	var ingredients []*domain.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	return ingredients, nil
}
