package main

import (
	"fmt"
	"log"
	"os"

	"voicebook-backend/config"
	"voicebook-backend/controllers"
	"voicebook-backend/models"
	"voicebook-backend/routes"
	"voicebook-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Customer{},
		&models.CustomerBusinessRelationship{},
		&models.DiscoveryLog{},
	)
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	store := services.NewGormStore(config.DB)
	resolver := services.NewCustomerResolver(store, logger)
	engine := services.NewDiscoveryEngine(resolver, store, store, logger)
	notifier := services.NewNotificationService(logger)

	reconciler := services.NewReconcilerService(config.DB, logger)
	reconciler.StartScheduler()
	defer reconciler.Stop()

	r := routes.SetupRouter(routes.Controllers{
		Auth:      controllers.NewAuthController(config.DB),
		Booking:   controllers.NewBookingController(config.DB, resolver, engine, notifier),
		Customer:  controllers.NewCustomerController(config.DB, engine),
		Discovery: controllers.NewDiscoveryController(engine),
		Voice:     controllers.NewVoiceController(engine),
	})
	printRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
