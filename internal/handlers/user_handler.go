package handlers

import (
	"net/http"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/Business-Integration-Technologies/EventNest/internal/services"
	"github.com/gin-gonic/gin"
)

func Register(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := u.Register(c.Request.Context(), &models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully.",
			"token":   result.Token,
			"user":    result.User,
		})
	}
}

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "invalid request payload"})
			return
		}

		result, err := u.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			// Unknown email and wrong password both come back as 401 so the
			// response does not leak which one it was.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":   result.Token,
			"message": "User logged in successfully.",
		})
	}
}

func GetProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id")
		if !ok {
			return
		}

		user, err := u.GetProfile(c.Request.Context(), requester, id)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func GetOrganizer(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id")
		if !ok {
			return
		}

		organizer, err := u.GetOrganizer(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, organizer)
	}
}

func UpdateProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id")
		if !ok {
			return
		}

		var update services.ProfileUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := u.UpdateProfile(c.Request.Context(), requester, id, &update)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully.", "user": user})
	}
}
