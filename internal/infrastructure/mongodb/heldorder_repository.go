package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/mongodb"
)

const heldOrderCollection = "held_orders"

// HeldOrderRepository is the MongoDB implementation of
// domain.HeldOrderRepository. The hold code is the document _id, so the
// collection's primary key backs the allocator's uniqueness guarantee.
type HeldOrderRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

func NewHeldOrderRepository(client *mongodb.Client) (*HeldOrderRepository, error) {
	repo := &HeldOrderRepository{
		client:     client,
		collection: client.Collection(heldOrderCollection),
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create held order indexes: %w", err)
	}
	return repo, nil
}

func (r *HeldOrderRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "heldAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tableNumber", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *HeldOrderRepository) Insert(ctx context.Context, order *domain.HeldOrder) error {
	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert held order: %w", err)
	}
	return nil
}

func (r *HeldOrderRepository) FindByCode(ctx context.Context, code string) (*domain.HeldOrder, error) {
	var order domain.HeldOrder
	err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find held order: %w", err)
	}
	return &order, nil
}

func (r *HeldOrderRepository) Delete(ctx context.Context, code string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return false, fmt.Errorf("failed to delete held order: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *HeldOrderRepository) List(ctx context.Context, search string) ([]*domain.HeldOrder, error) {
	filter := bson.M{}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = []bson.M{
			{"_id": pattern},
			{"tableNumber": pattern},
			{"orderType": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "heldAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query held orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.HeldOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode held orders: %w", err)
	}
	return orders, nil
}

func (r *HeldOrderRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count held orders: %w", err)
	}
	return count, nil
}

// MaxCode scans for the numerically greatest hold code. Zero padding makes
// codes of equal length sort lexicographically, so ordering by code length
// first and then by code yields the numeric maximum.
func (r *HeldOrderRepository) MaxCode(ctx context.Context) (string, error) {
	pattern := primitive.Regex{Pattern: `^HLD\d+$`}

	// sort by code length desc, then code desc: "HLD1000" > "HLD999"
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": pattern}}},
		{{Key: "$addFields", Value: bson.M{"codeLen": bson.M{"$strLenCP": "$_id"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "codeLen", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return "", fmt.Errorf("failed to scan hold codes: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Code string `bson:"_id"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return "", fmt.Errorf("failed to decode hold codes: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].Code, nil
}

func (r *HeldOrderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to probe hold code: %w", err)
	}
	return count > 0, nil
}
