package handlers

import (
	"errors"
	"net/http"

	"github.com/Business-Integration-Technologies/EventNest/internal/middleware"
	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requesterID pulls the authenticated user's id set by the auth middleware.
func requesterID(c *gin.Context) (primitive.ObjectID, bool) {
	val, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized. Please log in."})
		return primitive.NilObjectID, false
	}
	id, ok := val.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user identity in context"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses an ObjectID path parameter, responding 400 on garbage.
func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// statusFromError translates the service error taxonomy to HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPaymentRequired):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSoldOut):
		return http.StatusConflict
	case errors.Is(err, models.ErrSignatureInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
