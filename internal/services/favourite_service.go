package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavouriteService struct {
	favouritesRepo models.FavouriteRepo
	eventRepo      models.EventRepo
}

func NewFavouriteService(favouritesRepo models.FavouriteRepo, eventRepo models.EventRepo) *FavouriteService {
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		eventRepo:      eventRepo,
	}
}

// AddToFavourites is idempotent: favouriting the same event twice returns the
// existing record and reports created=false instead of erroring.
func (fs *FavouriteService) AddToFavourites(ctx context.Context, userID, eventID primitive.ObjectID) (*models.Favourite, bool, error) {
	if _, err := fs.eventRepo.GetEventByID(ctx, eventID); err != nil {
		return nil, false, err
	}

	existing, err := fs.favouritesRepo.FindFavourite(ctx, userID, eventID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	fav, err := fs.favouritesRepo.InsertFavourite(ctx, &models.Favourite{
		User:  userID,
		Event: eventID,
	})
	if err != nil {
		return nil, false, err
	}
	return fav, true, nil
}

func (fs *FavouriteService) RemoveFromFavourites(ctx context.Context, favouriteID, requesterID primitive.ObjectID) error {
	fav, err := fs.favouritesRepo.GetFavouriteByID(ctx, favouriteID)
	if err != nil {
		return err
	}
	if fav.User != requesterID {
		return fmt.Errorf("not authorized to remove this favourite: %w", models.ErrForbidden)
	}
	return fs.favouritesRepo.DeleteFavourite(ctx, favouriteID)
}

// GetFavouritesByUser returns the user's favourites with each referenced
// event embedded.
func (fs *FavouriteService) GetFavouritesByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.PopulatedFavourite, error) {
	return fs.favouritesRepo.ListFavouritesByUser(ctx, userID)
}
