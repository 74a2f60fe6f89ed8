package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/Business-Integration-Technologies/EventNest/internal/payments"
	"github.com/Business-Integration-Technologies/EventNest/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateCheckoutSession opens a hosted payment session for an event. Title and
// unit price come from the stored event, not the request body.
func CreateCheckoutSession(gateway *payments.Gateway, e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterID(c)
		if !ok {
			return
		}

		var req struct {
			EventID  string `json:"eventId" binding:"required"`
			Quantity int    `json:"quantity" binding:"required,gte=1"`
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

		event, err := e.GetEventByID(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		if event.TotalTickets < req.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": "not enough tickets remaining"})
			return
		}

		session, err := gateway.CreateCheckoutSession(c.Request.Context(), event, req.Quantity, requester.Hex())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment session creation failed"})
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// PaymentWebhook receives signed notifications from the payment gateway. The
// raw body is verified before anything is parsed; a completed checkout issues
// the ticket exactly once even when the gateway redelivers.
func PaymentWebhook(gateway *payments.Gateway, t *services.TicketService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		notification, err := gateway.VerifyNotification(rawBody, c.GetHeader("Stripe-Signature"))
		if err != nil {
			logger.Error("Webhook signature verification failed", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: invalid signature"})
			return
		}
		if notification == nil {
			// Verified, but not a checkout completion.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(notification.EventID)
		if err != nil {
			logger.Error("Webhook carried invalid event id", "event_id", notification.EventID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		buyerID, err := primitive.ObjectIDFromHex(notification.UserID)
		if err != nil {
			logger.Error("Webhook carried invalid user id", "user_id", notification.UserID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		ticket, err := t.IssueTicket(c.Request.Context(), eventID, buyerID, notification.Quantity, notification.SessionID)
		if err != nil {
			logger.Error("Error creating ticket after payment",
				"session_id", notification.SessionID,
				"event_id", notification.EventID,
				"error", err,
			)
			// Permanent failures are acknowledged so the gateway stops
			// redelivering; transient ones get a 500 and a retry, which the
			// payment-ref idempotency makes safe.
			if errors.Is(err, models.ErrSoldOut) || errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ticket issuance failed"})
			return
		}

		logger.Info("Ticket issued from payment notification",
			"session_id", notification.SessionID,
			"ticket_id", ticket.ID.Hex(),
			"quantity", ticket.Quantity,
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
