package services

import (
	"context"
	"testing"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFavouriteFixture(t *testing.T) (*FavouriteService, *fakeFavouriteRepo, *models.Event) {
	t.Helper()
	event := &models.Event{
		Title:        "Tech Expo",
		Category:     "exhibition",
		TotalTickets: 50,
		Organizer:    primitive.NewObjectID(),
	}
	eventRepo := newFakeEventRepo(event)
	favRepo := newFakeFavouriteRepo(eventRepo)
	svc := NewFavouriteService(favRepo, eventRepo)
	return svc, favRepo, event
}

func TestAddToFavouritesIsIdempotent(t *testing.T) {
	svc, favRepo, event := newFavouriteFixture(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	first, created, err := svc.AddToFavourites(ctx, user, event.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.AddToFavourites(ctx, user, event.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, favRepo.favourites, 1)
}

func TestAddToFavouritesUnknownEvent(t *testing.T) {
	svc, favRepo, _ := newFavouriteFixture(t)

	_, _, err := svc.AddToFavourites(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, favRepo.favourites)
}

func TestRemoveFromFavouritesRequiresOwnership(t *testing.T) {
	svc, favRepo, event := newFavouriteFixture(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	fav, _, err := svc.AddToFavourites(ctx, user, event.ID)
	require.NoError(t, err)

	err = svc.RemoveFromFavourites(ctx, fav.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Len(t, favRepo.favourites, 1)

	require.NoError(t, svc.RemoveFromFavourites(ctx, fav.ID, user))
	assert.Empty(t, favRepo.favourites)
}

func TestGetFavouritesByUser(t *testing.T) {
	svc, _, event := newFavouriteFixture(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	_, _, err := svc.AddToFavourites(ctx, user, event.ID)
	require.NoError(t, err)
	_, _, err = svc.AddToFavourites(ctx, primitive.NewObjectID(), event.ID)
	require.NoError(t, err)

	favs, err := svc.GetFavouritesByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, user, favs[0].User)
	require.NotNil(t, favs[0].Event, "listing embeds the favourited event")
	assert.Equal(t, event.ID, favs[0].Event.ID)
	assert.Equal(t, "Tech Expo", favs[0].Event.Title)
}
