package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/Business-Integration-Technologies/EventNest/internal/connect"
	"github.com/Business-Integration-Technologies/EventNest/internal/helpers"
	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	eventRepo models.EventRepo
}

func NewEventService(eventRepo models.EventRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

const maxEventImages = 5

// CreateEvent validates the event, pushes its media to Cloudinary and persists
// it with the requester as organizer.
func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, organizer primitive.ObjectID, images []*multipart.FileHeader, video *multipart.FileHeader) (*models.Event, error) {
	event.Organizer = organizer

	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if len(images) > maxEventImages {
		return nil, fmt.Errorf("%w: at most %d images allowed", models.ErrValidation, maxEventImages)
	}

	if len(images) > 0 {
		urls, err := helpers.UploadFiles(ctx, connect.Cld, images, helpers.EventsFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload images: %v", err)
		}
		event.Images = urls
	}
	if video != nil {
		urls, err := helpers.UploadFiles(ctx, connect.Cld, []*multipart.FileHeader{video}, helpers.VideosFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload video: %v", err)
		}
		event.Video = urls[0]
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	return es.eventRepo.CreateEvent(ctx, event)
}

func (es *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return es.eventRepo.ListEvents(ctx)
}

func (es *EventService) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return es.eventRepo.GetEventByID(ctx, id)
}

func (es *EventService) ListEventsByOrganizer(ctx context.Context, organizer primitive.ObjectID) ([]*models.Event, error) {
	return es.eventRepo.ListEventsByOrganizer(ctx, organizer)
}

func (es *EventService) ListEventsByCategory(ctx context.Context, category string) ([]*models.Event, error) {
	if !models.IsValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	return es.eventRepo.ListEventsByCategory(ctx, category)
}

func (es *EventService) SearchEvents(ctx context.Context, query, category string) ([]*models.Event, error) {
	if category != "" && category != models.CategoryAll && !models.IsValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	return es.eventRepo.SearchEvents(ctx, query, category)
}

// EventUpdate carries the optional event fields for a partial edit.
type EventUpdate struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Date         *time.Time `json:"date"`
	Venue        *string    `json:"venue"`
	Address      *string    `json:"address"`
	Category     *string    `json:"category" validate:"omitempty,oneof=conference seminar workshop concert festival exhibition sport networking other"`
	Price        *float64   `json:"price" validate:"omitempty,gte=0"`
	TotalTickets *int       `json:"totalTickets" validate:"omitempty,gte=0"`
}

func (es *EventService) UpdateEvent(ctx context.Context, id, requester primitive.ObjectID, update *EventUpdate) (*models.Event, error) {
	if err := models.Validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Organizer != requester {
		return nil, fmt.Errorf("you do not have permission to update this event: %w", models.ErrForbidden)
	}

	fields := bson.M{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Date != nil {
		fields["date"] = *update.Date
	}
	if update.Venue != nil {
		fields["venue"] = *update.Venue
	}
	if update.Address != nil {
		fields["address"] = *update.Address
	}
	if update.Category != nil {
		fields["category"] = *update.Category
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}
	if update.TotalTickets != nil {
		fields["totalTickets"] = *update.TotalTickets
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	return es.eventRepo.UpdateEvent(ctx, id, fields)
}

func (es *EventService) DeleteEvent(ctx context.Context, id, requester primitive.ObjectID) error {
	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if event.Organizer != requester {
		return fmt.Errorf("you do not have permission to delete this event: %w", models.ErrForbidden)
	}
	return es.eventRepo.DeleteEvent(ctx, id)
}
