package handlers

import (
	"net/http"

	"github.com/Business-Integration-Technologies/EventNest/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateTicket is the direct booking path. It fails closed with 403 unless
// the caller asserts the payment is complete; the webhook path is the
// verified way in.
func CreateTicket(t *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		var req struct {
			EventID         string `json:"eventId" binding:"required"`
			Quantity        int    `json:"quantity"`
			PaymentComplete bool   `json:"paymentComplete"`
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

		ticket, err := t.CreateTicketDirect(c.Request.Context(), eventID, requester, req.Quantity, req.PaymentComplete)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Ticket booked successfully.",
			"ticket":  ticket,
		})
	}
}

func ListMyTickets(t *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		tickets, err := t.ListTicketsByUser(c.Request.Context(), requester)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userTickets": tickets})
	}
}

func CancelTicket(t *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		ticketID, ok := pathObjectID(c, "ticketId")
		if !ok {
			return
		}

		if err := t.CancelTicket(c.Request.Context(), ticketID, requester); err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Ticket canceled successfully."})
	}
}

// TicketsByEvent returns an event's tickets plus sales stats, organizer-only.
func TicketsByEvent(t *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}
		eventID, ok := pathObjectID(c, "eventId")
		if !ok {
			return
		}

		tickets, stats, err := t.TicketsForEvent(c.Request.Context(), eventID, requester)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tickets": tickets,
			"stats":   stats,
		})
	}
}
