package handlers

import (
	"net/http"

	"github.com/Business-Integration-Technologies/EventNest/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func AddToFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		var req struct {
			EventID string `json:"eventId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(req.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		fav, created, err := f.AddToFavourites(c.Request.Context(), requester, eventID)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}

		if !created {
			c.JSON(http.StatusOK, gin.H{"message": "Already in favourites.", "favourite": fav})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Added to favourites.", "favourite": fav})
	}
}

func GetUserFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		favourites, err := f.GetFavouritesByUser(c.Request.Context(), requester)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favourites": favourites})
	}
}

func RemoveFromFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		favID, ok := pathObjectID(c, "favouriteId")
		if !ok {
			return
		}

		if err := f.RemoveFromFavourites(c.Request.Context(), favID, requester); err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Favourite removed."})
	}
}
