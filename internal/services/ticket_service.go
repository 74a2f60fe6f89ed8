package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Business-Integration-Technologies/EventNest/internal/helpers"
	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketService converts confirmed payments into durable tickets and keeps the
// event's remaining-ticket counter in step with what was issued.
type TicketService struct {
	ticketRepo models.TicketRepo
	eventRepo  models.EventRepo
	logger     *slog.Logger
}

func NewTicketService(ticketRepo models.TicketRepo, eventRepo models.EventRepo, logger *slog.Logger) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		logger:     logger,
	}
}

// IssueTicket creates a ticket for a confirmed purchase and decrements the
// event's remaining-ticket counter. When paymentRef is set (webhook path) the
// operation is idempotent: a redelivered notification returns the ticket the
// first delivery created.
func (ts *TicketService) IssueTicket(ctx context.Context, eventID, buyerID primitive.ObjectID, quantity int, paymentRef string) (*models.Ticket, error) {
	if quantity < 1 {
		quantity = 1
	}

	if paymentRef != "" {
		existing, err := ts.ticketRepo.GetTicketByPaymentRef(ctx, paymentRef)
		if err == nil {
			ts.logger.Info("duplicate payment notification ignored",
				"payment_ref", paymentRef,
				"ticket_id", existing.ID.Hex(),
			)
			return existing, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	qr, err := helpers.TicketQR(eventID.Hex(), buyerID.Hex())
	if err != nil {
		return nil, err
	}

	// Reserve inventory first; the guarded decrement rejects the purchase
	// instead of letting the counter go negative.
	if err := ts.eventRepo.ReserveTickets(ctx, eventID, quantity); err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		User:       buyerID,
		Event:      eventID,
		QRCode:     qr,
		Quantity:   quantity,
		PaymentRef: paymentRef,
	}

	created, err := ts.ticketRepo.InsertTicket(ctx, ticket)
	if err != nil {
		// Put the reserved quantity back so the counter stays consistent
		// with the tickets that actually exist.
		if relErr := ts.eventRepo.ReleaseTickets(ctx, eventID, quantity); relErr != nil {
			ts.logger.Error("failed to release reserved tickets after insert failure",
				"event_id", eventID.Hex(),
				"quantity", quantity,
				"error", relErr,
			)
		}
		if errors.Is(err, models.ErrDuplicate) && paymentRef != "" {
			// Lost the race against a concurrent delivery of the same
			// notification; its ticket is the one that counts.
			return ts.ticketRepo.GetTicketByPaymentRef(ctx, paymentRef)
		}
		return nil, err
	}

	return created, nil
}

// CreateTicketDirect is the synchronous booking path. It trusts nothing: the
// caller must assert payment completion, and the request fails closed
// otherwise.
func (ts *TicketService) CreateTicketDirect(ctx context.Context, eventID, buyerID primitive.ObjectID, quantity int, paymentComplete bool) (*models.Ticket, error) {
	if !paymentComplete {
		return nil, fmt.Errorf("payment required to book tickets: %w", models.ErrPaymentRequired)
	}

	if _, err := ts.eventRepo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	return ts.IssueTicket(ctx, eventID, buyerID, quantity, "")
}

// CancelTicket deletes the requester's ticket and restores its quantity onto
// the event's counter. Cancelling twice fails with NotFound; cancelling
// someone else's ticket fails with Forbidden.
func (ts *TicketService) CancelTicket(ctx context.Context, ticketID, requesterID primitive.ObjectID) error {
	ticket, err := ts.ticketRepo.GetTicketByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.User != requesterID {
		return fmt.Errorf("not authorized to cancel this ticket: %w", models.ErrForbidden)
	}

	if err := ts.ticketRepo.DeleteTicket(ctx, ticketID); err != nil {
		return err
	}

	if err := ts.eventRepo.ReleaseTickets(ctx, ticket.Event, ticket.Quantity); err != nil {
		ts.logger.Error("failed to restore tickets after cancellation",
			"event_id", ticket.Event.Hex(),
			"quantity", ticket.Quantity,
			"error", err,
		)
		return err
	}
	return nil
}

// ListTicketsByUser returns the requester's tickets with each referenced
// event embedded.
func (ts *TicketService) ListTicketsByUser(ctx context.Context, user primitive.ObjectID) ([]*models.PopulatedTicket, error) {
	return ts.ticketRepo.ListTicketsByUser(ctx, user)
}

// EventTicketStats summarizes an event's sales for its organizer.
type EventTicketStats struct {
	TotalSales     float64 `json:"totalSales"`
	TotalAttendees int     `json:"totalAttendees"`
	TicketCount    int     `json:"ticketCount"`
}

// TicketsForEvent lists an event's tickets with each buyer's public profile
// embedded, plus sales totals, restricted to the event's organizer.
func (ts *TicketService) TicketsForEvent(ctx context.Context, eventID, requesterID primitive.ObjectID) ([]*models.AttendeeTicket, *EventTicketStats, error) {
	event, err := ts.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event.Organizer != requesterID {
		return nil, nil, fmt.Errorf("you must be the event organizer to view ticket data: %w", models.ErrForbidden)
	}

	tickets, err := ts.ticketRepo.ListTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	stats := &EventTicketStats{TicketCount: len(tickets)}
	for _, t := range tickets {
		stats.TotalSales += event.Price * float64(t.Quantity)
		stats.TotalAttendees += t.Quantity
	}

	return tickets, stats, nil
}
