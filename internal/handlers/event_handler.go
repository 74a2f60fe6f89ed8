package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/Business-Integration-Technologies/EventNest/internal/helpers"
	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/Business-Integration-Technologies/EventNest/internal/services"
	"github.com/gin-gonic/gin"
)

// CreateEvent accepts a multipart form: the event fields plus up to five
// images and one video, which end up on Cloudinary.
func CreateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		event, images, video, err := parseEventForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		created, err := e.CreateEvent(c.Request.Context(), event, requester, images, video)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Event created successfully.",
			"eventId": created.ID,
		})
	}
}

func parseEventForm(c *gin.Context) (*models.Event, []*multipart.FileHeader, *multipart.FileHeader, error) {
	date := c.PostForm("date")
	timeOfDay := c.PostForm("time")
	when, err := time.Parse("2006-01-02T15:04", date+"T"+timeOfDay)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid date/time: %v", err)
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid price: %v", err)
	}
	totalTickets, err := strconv.Atoi(c.PostForm("totalTickets"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid totalTickets: %v", err)
	}

	event := &models.Event{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Date:         when,
		Venue:        c.PostForm("venue"),
		Address:      c.PostForm("address"),
		Category:     c.PostForm("category"),
		Price:        price,
		TotalTickets: totalTickets,
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid multipart form: %v", err)
	}
	images := form.File["images"]
	var video *multipart.FileHeader
	if vids := form.File["video"]; len(vids) > 0 {
		video = vids[0]
	}

	return event, images, video, nil
}

func ListAllEvents(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := e.ListEvents(c.Request.Context())
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func GetEventByID(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathObjectID(c, "id")
		if !ok {
			return
		}

		event, err := e.GetEventByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// ListMyEvents returns the events the requester organizes.
func ListMyEvents(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		events, err := e.ListEventsByOrganizer(c.Request.Context(), requester)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userEvents": events})
	}
}

func ListEventsByCategory(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := helpers.StringTrim(c.Param("categoryName"))

		events, err := e.ListEventsByCategory(c.Request.Context(), category)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		if len(events) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No events found in category '%s'.", category)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

func SearchEvents(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("query")
		category := c.Query("category")

		events, err := e.SearchEvents(c.Request.Context(), query, category)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func UpdateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id")
		if !ok {
			return
		}

		var update services.EventUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		event, err := e.UpdateEvent(c.Request.Context(), id, requester, &update)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": event})
	}
}

func DeleteEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, "id")
		if !ok {
			return
		}

		if err := e.DeleteEvent(c.Request.Context(), id, requester); err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
	}
}
