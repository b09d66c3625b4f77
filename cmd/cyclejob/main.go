package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/pos-platform/inventory-service/internal/application"
	mongoRepo "github.com/pos-platform/inventory-service/internal/infrastructure/mongodb"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
	"github.com/pos-platform/inventory-service/pkg/mongodb"
)

// Replenishment cycle job: scans for cycle-ruled ingredients whose next
// receive date has passed and resets their stock. Intended to run from cron.

var (
	mongoURI     = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName       = flag.String("db", "pos_inventory", "Database name")
	replenishQty = flag.Float64("replenish-qty", 0, "Display-unit quantity to reset stock to")
	dryRun       = flag.Bool("dry-run", false, "List due ingredients without advancing them")
)

func main() {
	flag.Parse()

	log.Printf("Starting replenishment cycle job...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            *mongoURI,
		Database:       *dbName,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(context.Background())
	log.Println("Connected to MongoDB successfully")

	ingredientRepo, err := mongoRepo.NewIngredientRepository(client)
	if err != nil {
		log.Fatalf("Failed to initialize ingredient repository: %v", err)
	}
	recipeRepo, err := mongoRepo.NewRecipeRepository(client)
	if err != nil {
		log.Fatalf("Failed to initialize recipe repository: %v", err)
	}

	asOf := time.Now().UTC()

	if *dryRun {
		due, err := ingredientRepo.FindCycleDue(ctx, asOf)
		if err != nil {
			log.Fatalf("Failed to scan due cycles: %v", err)
		}
		log.Printf("%d ingredient(s) due as of %s", len(due), asOf.Format(time.RFC3339))
		for _, ing := range due {
			log.Printf("  %s (%s): stock %.2f %s, next receive %s",
				ing.Name, ing.ID, ing.StockOnHand, ing.BaseUnit,
				ing.NextReceiveDate.Format("2006-01-02"))
		}
		return
	}

	logger := logging.New(logging.DefaultConfig("cyclejob"))
	m := metrics.New(metrics.DefaultConfig("cyclejob"))
	publisher := application.NewEventPublisher(nil, m, logger, "/cyclejob")

	stockService := application.NewStockService(ingredientRepo, recipeRepo, publisher, m, logger)

	results, err := stockService.AdvanceDueCycles(ctx, *replenishQty, asOf)
	if err != nil {
		log.Fatalf("Cycle advance failed: %v", err)
	}

	advanced := 0
	for _, r := range results {
		if r.Advanced {
			advanced++
			log.Printf("Advanced %s: stock reset to %.2f", r.IngredientID, r.ReplenishedTo)
		}
	}
	log.Printf("Done: %d advanced, %d skipped", advanced, len(results)-advanced)
}
