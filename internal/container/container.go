package container

import (
	"log/slog"

	"github.com/Business-Integration-Technologies/EventNest/internal/config"
	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/Business-Integration-Technologies/EventNest/internal/payments"
	"github.com/Business-Integration-Technologies/EventNest/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	Config     *config.Config

	MongoDBClient *mongo.Client
	Repo          *models.MongodbRepo

	Gateway *payments.Gateway

	UserService       *services.UserService
	EventService      *services.EventService
	TicketService     *services.TicketService
	FavouritesService *services.FavouriteService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	cfg *config.Config,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)
	gateway := payments.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.ClientURL)

	userService := services.NewUserService(repo, cfg.TokenSecret)
	eventService := services.NewEventService(repo)
	ticketService := services.NewTicketService(repo, repo, logger)
	favouriteService := services.NewFavouriteService(repo, repo)

	return &Container{
		Logger:            logger,
		Cloudinary:        cld,
		Config:            cfg,
		MongoDBClient:     mongoDBClient,
		Repo:              repo,
		Gateway:           gateway,
		UserService:       userService,
		EventService:      eventService,
		TicketService:     ticketService,
		FavouritesService: favouriteService,
	}
}
