package routes

import (
	"voicebook-backend/config"
	"voicebook-backend/controllers"
	"voicebook-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler the router mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Booking   *controllers.BookingController
	Customer  *controllers.CustomerController
	Discovery *controllers.DiscoveryController
	Voice     *controllers.VoiceController
}

func SetupRouter(ctrl Controllers) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", ctrl.Auth.Me)
	}

	// Voice platform webhooks are authenticated by the platform's own
	// signature scheme upstream, not by user jwt.
	r.POST("/webhooks/voice", ctrl.Voice.HandleInboundCall)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		api.POST("/bookings", ctrl.Booking.CreateBooking)

		discovery := api.Group("/discovery")
		{
			discovery.POST("/phone", ctrl.Discovery.DiscoverByPhone)
			discovery.POST("/resolve", ctrl.Discovery.ResolveBusiness)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", ctrl.Customer.GetCustomers)
			customers.GET("/:id", ctrl.Customer.GetCustomer)
			customers.PUT("/:id/preferred-business", ctrl.Customer.SetPreferredBusiness)
		}
	}

	return r
}
