package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pos-platform/inventory-service/internal/application"
	mongoRepo "github.com/pos-platform/inventory-service/internal/infrastructure/mongodb"
	"github.com/pos-platform/inventory-service/pkg/errors"
	"github.com/pos-platform/inventory-service/pkg/kafka"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
	"github.com/pos-platform/inventory-service/pkg/middleware"
	"github.com/pos-platform/inventory-service/pkg/mongodb"
)

const serviceName = "inventory-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting inventory-service API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka is optional; without a broker the service runs but emits no events
	var producer *kafka.Producer
	if config.EventsEnabled {
		producer = kafka.NewProducer(config.Kafka)
		defer producer.Close()
		logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)
	} else {
		logger.Info("Event publishing disabled")
	}
	publisher := application.NewEventPublisher(producer, m, logger, "/"+serviceName)

	ingredientRepo, err := mongoRepo.NewIngredientRepository(mongoClient)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize ingredient repository")
		os.Exit(1)
	}
	recipeRepo, err := mongoRepo.NewRecipeRepository(mongoClient)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize recipe repository")
		os.Exit(1)
	}
	heldOrderRepo, err := mongoRepo.NewHeldOrderRepository(mongoClient)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize held order repository")
		os.Exit(1)
	}

	allocator := application.NewCodeAllocator(heldOrderRepo, m, logger)

	ingredientService := application.NewIngredientService(ingredientRepo, recipeRepo, logger)
	recipeService := application.NewRecipeService(recipeRepo, ingredientRepo, logger)
	stockService := application.NewStockService(ingredientRepo, recipeRepo, publisher, m, logger)
	heldOrderService := application.NewHeldOrderService(heldOrderRepo, allocator, publisher, m, logger)

	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return mongoClient.HealthCheck(checkCtx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		ingredients := api.Group("/ingredients")
		{
			ingredients.POST("", createIngredientHandler(ingredientService, logger))
			ingredients.GET("", listIngredientsHandler(ingredientService, logger))
			ingredients.GET("/low-stock", lowStockHandler(ingredientService, logger))
			ingredients.GET("/:id", getIngredientHandler(ingredientService, logger))
			ingredients.PUT("/:id", updateIngredientHandler(ingredientService, logger))
			ingredients.DELETE("/:id", deleteIngredientHandler(ingredientService, logger))
			ingredients.POST("/:id/advance-cycle", advanceCycleHandler(stockService, logger))
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("/:productId", getRecipeHandler(recipeService, logger))
			recipes.PUT("/:productId", upsertRecipeHandler(recipeService, logger))
			recipes.PATCH("/:productId/active", setRecipeActiveHandler(recipeService, logger))
			recipes.DELETE("/:productId", deleteRecipeHandler(recipeService, logger))
			recipes.GET("/:productId/availability", availabilityHandler(stockService, logger))
			recipes.POST("/:productId/consume", consumeHandler(stockService, logger))
		}

		heldOrders := api.Group("/held-orders")
		{
			heldOrders.GET("", listHeldOrdersHandler(heldOrderService, logger))
			heldOrders.POST("", createHeldOrderHandler(heldOrderService, logger))
			heldOrders.GET("/:code", getHeldOrderHandler(heldOrderService, logger))
			heldOrders.DELETE("/:code", deleteHeldOrderHandler(heldOrderService, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr    string
	EventsEnabled bool
	MongoDB       *mongodb.Config
	Kafka         *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8010"),
		EventsEnabled: getEnv("EVENTS_ENABLED", "false") == "true",
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "pos_inventory"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func respondServiceError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func createIngredientHandler(service *application.IngredientService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateIngredientCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid request body"))
			return
		}

		ing, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, ing)
	}
}

func listIngredientsHandler(service *application.IngredientService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ings, err := service.List(c.Request.Context(), c.Query("search"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ings)
	}
}

func lowStockHandler(service *application.IngredientService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		threshold := 0.0
		if raw := c.Query("threshold"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				responder.RespondBadRequest("threshold must be a number")
				return
			}
			threshold = parsed
		}

		ings, err := service.LowStock(c.Request.Context(), threshold)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ings)
	}
}

func getIngredientHandler(service *application.IngredientService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ing, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ing)
	}
}

func updateIngredientHandler(service *application.IngredientService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateIngredientCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid request body"))
			return
		}

		ing, err := service.Update(c.Request.Context(), c.Param("id"), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ing)
	}
}

func deleteIngredientHandler(service *application.IngredientService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.Remove(c.Request.Context(), c.Param("id")); err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

func advanceCycleHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ReplenishQuantity float64 `json:"replenishQuantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid request body"))
			return
		}

		result, err := service.AdvanceCycle(c.Request.Context(), c.Param("id"), req.ReplenishQuantity, time.Now().UTC())
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getRecipeHandler(service *application.RecipeService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		recipe, err := service.GetByProduct(c.Request.Context(), c.Param("productId"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, recipe)
	}
}

func upsertRecipeHandler(service *application.RecipeService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpsertRecipeCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid request body"))
			return
		}

		recipe, err := service.Upsert(c.Request.Context(), c.Param("productId"), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, recipe)
	}
}

func setRecipeActiveHandler(service *application.RecipeService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			IsActive *bool `json:"isActive" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondWithAppError(errors.ErrValidationField("isActive", "isActive is required"))
			return
		}

		recipe, err := service.SetActive(c.Request.Context(), c.Param("productId"), *req.IsActive)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, recipe)
	}
}

func deleteRecipeHandler(service *application.RecipeService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.Remove(c.Request.Context(), c.Param("productId")); err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

func availabilityHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		requested := 1
		if raw := c.Query("quantity"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				responder.RespondBadRequest("quantity must be an integer")
				return
			}
			requested = parsed
		}

		result, err := service.CheckAvailability(c.Request.Context(), c.Param("productId"), requested)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func consumeHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid request body"))
			return
		}

		cmd := application.ConsumeStockCommand{
			ProductID: c.Param("productId"),
			Quantity:  req.Quantity,
		}

		result, err := service.Consume(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func listHeldOrdersHandler(service *application.HeldOrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orders, err := service.List(c.Request.Context(), c.Query("search"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func createHeldOrderHandler(service *application.HeldOrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateHeldOrderCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondWithAppError(errors.ErrValidation("invalid request body"))
			return
		}

		order, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

func getHeldOrderHandler(service *application.HeldOrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		code := c.Param("code")
		if err := middleware.GetValidator().Var(code, "hold_code"); err != nil {
			responder.RespondWithAppError(errors.ErrValidationField("code", "invalid hold code"))
			return
		}

		order, err := service.Get(c.Request.Context(), code)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func deleteHeldOrderHandler(service *application.HeldOrderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		code := c.Param("code")
		if err := middleware.GetValidator().Var(code, "hold_code"); err != nil {
			responder.RespondWithAppError(errors.ErrValidationField("code", "invalid hold code"))
			return
		}

		if err := service.Remove(c.Request.Context(), code); err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
