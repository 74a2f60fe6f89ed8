package routes

import (
	"github.com/Business-Integration-Technologies/EventNest/internal/container"
	"github.com/Business-Integration-Technologies/EventNest/internal/handlers"
	"github.com/Business-Integration-Technologies/EventNest/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{container.Config.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(gin.Recovery())

	auth := middleware.AuthMiddleware(container.Config.TokenSecret, container.Logger)

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "OK",
			"service": "eventnest-api",
		})
	})

	userRoutes := r.Group("/user")
	{
		userRoutes.POST("/register", handlers.Register(container.UserService))
		userRoutes.POST("/login", handlers.Login(container.UserService))
		userRoutes.GET("/organizer/:id", auth, handlers.GetOrganizer(container.UserService))
		userRoutes.GET("/:id", auth, handlers.GetProfile(container.UserService))
		userRoutes.PUT("/:id", auth, handlers.UpdateProfile(container.UserService))
	}

	eventRoutes := r.Group("/event")
	{
		eventRoutes.GET("/search", handlers.SearchEvents(container.EventService))
		eventRoutes.GET("/all", handlers.ListAllEvents(container.EventService))
		eventRoutes.GET("/category/:categoryName", auth, handlers.ListEventsByCategory(container.EventService))
		eventRoutes.GET("/:id", auth, handlers.GetEventByID(container.EventService))
		eventRoutes.GET("", auth, handlers.ListMyEvents(container.EventService))
		eventRoutes.POST("/create", auth, handlers.CreateEvent(container.EventService))
		eventRoutes.PUT("/:id", auth, handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", auth, handlers.DeleteEvent(container.EventService))
	}

	ticketRoutes := r.Group("/ticket")
	{
		ticketRoutes.POST("", auth, handlers.CreateTicket(container.TicketService))
		ticketRoutes.GET("/user", auth, handlers.ListMyTickets(container.TicketService))
		ticketRoutes.GET("/event/:eventId", auth, handlers.TicketsByEvent(container.TicketService))
		ticketRoutes.DELETE("/:ticketId", auth, handlers.CancelTicket(container.TicketService))
	}

	favouriteRoutes := r.Group("/favourites")
	{
		favouriteRoutes.POST("", auth, handlers.AddToFavourites(container.FavouritesService))
		favouriteRoutes.GET("/user", auth, handlers.GetUserFavourites(container.FavouritesService))
		favouriteRoutes.DELETE("/:favouriteId", auth, handlers.RemoveFromFavourites(container.FavouritesService))
	}

	paymentRoutes := r.Group("/payment")
	{
		paymentRoutes.POST("/create-checkout-session", auth, handlers.CreateCheckoutSession(container.Gateway, container.EventService))
		// The webhook is authenticated by its signature, not a bearer token,
		// and must see the raw unparsed body.
		paymentRoutes.POST("/webhook", handlers.PaymentWebhook(container.Gateway, container.TicketService, container.Logger))
	}

	return r
}
