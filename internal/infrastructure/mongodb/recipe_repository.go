package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/mongodb"
)

const recipeCollection = "recipes"

// RecipeRepository is the MongoDB implementation of domain.RecipeRepository.
// A unique index on product enforces the one-recipe-per-product rule.
type RecipeRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

func NewRecipeRepository(client *mongodb.Client) (*RecipeRepository, error) {
	repo := &RecipeRepository{
		client:     client,
		collection: client.Collection(recipeCollection),
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create recipe indexes: %w", err)
	}
	return repo, nil
}

func (r *RecipeRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "items.ingredient", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *RecipeRepository) FindByProduct(ctx context.Context, productID string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.collection.FindOne(ctx, bson.M{"product": productID}).Decode(&recipe)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

// Upsert replaces the item list atomically, creating the recipe on first
// write. Writing a recipe always reactivates it.
func (r *RecipeRepository) Upsert(ctx context.Context, productID string, items []domain.RecipeItem, now time.Time) (*domain.Recipe, error) {
	filter := bson.M{"product": productID}
	update := bson.M{
		"$set": bson.M{
			"items":     items,
			"isActive":  true,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.New().String(),
			"product":   productID,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var recipe domain.Recipe
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&recipe); err != nil {
		return nil, fmt.Errorf("failed to upsert recipe: %w", err)
	}
	return &recipe, nil
}

func (r *RecipeRepository) SetActive(ctx context.Context, productID string, isActive bool, now time.Time) (*domain.Recipe, error) {
	filter := bson.M{"product": productID}
	update := bson.M{"$set": bson.M{"isActive": isActive, "updatedAt": now}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var recipe domain.Recipe
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&recipe)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return &recipe, nil
}

func (r *RecipeRepository) DeleteByProduct(ctx context.Context, productID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"product": productID})
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *RecipeRepository) ReferencesIngredient(ctx context.Context, ingredientID string) (bool, error) {
	filter := bson.M{
		"isActive":         true,
		"items.ingredient": ingredientID,
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check recipe references: %w", err)
	}
	return count > 0, nil
}
