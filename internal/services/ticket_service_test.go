package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTicketFixture(t *testing.T, remaining int) (*TicketService, *fakeTicketRepo, *fakeEventRepo, *models.Event) {
	t.Helper()
	event := &models.Event{
		Title:        "Summer Jazz Night",
		Category:     "concert",
		Price:        25,
		TotalTickets: remaining,
		Organizer:    primitive.NewObjectID(),
	}
	eventRepo := newFakeEventRepo(event)
	ticketRepo := newFakeTicketRepo(eventRepo)
	svc := NewTicketService(ticketRepo, eventRepo, discardLogger())
	return svc, ticketRepo, eventRepo, event
}

func TestIssueTicketDecrementsInventory(t *testing.T) {
	svc, _, eventRepo, event := newTicketFixture(t, 10)
	buyer := primitive.NewObjectID()

	ticket, err := svc.IssueTicket(context.Background(), event.ID, buyer, 3, "cs_test_1")
	require.NoError(t, err)

	assert.Equal(t, buyer, ticket.User)
	assert.Equal(t, event.ID, ticket.Event)
	assert.Equal(t, 3, ticket.Quantity)
	assert.Equal(t, "cs_test_1", ticket.PaymentRef)
	assert.True(t, strings.HasPrefix(ticket.QRCode, "data:image/png;base64,"))
	assert.False(t, ticket.PurchaseDate.IsZero())
	assert.Equal(t, 7, eventRepo.remaining(event.ID))
}

func TestIssueTicketQuantityFloor(t *testing.T) {
	svc, _, eventRepo, event := newTicketFixture(t, 5)

	ticket, err := svc.IssueTicket(context.Background(), event.ID, primitive.NewObjectID(), 0, "cs_test_floor")
	require.NoError(t, err)

	assert.Equal(t, 1, ticket.Quantity)
	assert.Equal(t, 4, eventRepo.remaining(event.ID))
}

func TestIssueTicketRedeliveredNotification(t *testing.T) {
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, 10)
	buyer := primitive.NewObjectID()

	first, err := svc.IssueTicket(context.Background(), event.ID, buyer, 2, "cs_test_dup")
	require.NoError(t, err)

	// The gateway redelivers the same notification.
	second, err := svc.IssueTicket(context.Background(), event.ID, buyer, 2, "cs_test_dup")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, ticketRepo.tickets, 1)
	assert.Equal(t, 8, eventRepo.remaining(event.ID), "redelivery must not decrement twice")
}

func TestIssueTicketSoldOut(t *testing.T) {
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, 2)

	_, err := svc.IssueTicket(context.Background(), event.ID, primitive.NewObjectID(), 3, "cs_test_oversell")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSoldOut)
	assert.Empty(t, ticketRepo.tickets)
	assert.Equal(t, 2, eventRepo.remaining(event.ID), "a rejected purchase must not touch the counter")
}

func TestIssueTicketUnknownEvent(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t, 5)

	_, err := svc.IssueTicket(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 1, "cs_test_ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIssueTicketReleasesOnInsertFailure(t *testing.T) {
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, 10)
	ticketRepo.insertErr = errors.New("write concern failed")

	_, err := svc.IssueTicket(context.Background(), event.ID, primitive.NewObjectID(), 4, "cs_test_fail")
	require.Error(t, err)
	assert.Equal(t, 10, eventRepo.remaining(event.ID), "reserved tickets must be released when the insert fails")
}

// Issued quantities plus the remaining counter always add up to the
// initial inventory, through purchases and cancellations alike.
func TestInventoryStaysConsistent(t *testing.T) {
	const initial = 20
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, initial)
	ctx := context.Background()

	buyers := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}
	var issued []*models.Ticket
	for i, buyer := range buyers {
		ticket, err := svc.IssueTicket(ctx, event.ID, buyer, i+1, "")
		require.NoError(t, err)
		issued = append(issued, ticket)
	}

	require.NoError(t, svc.CancelTicket(ctx, issued[1].ID, buyers[1]))

	total := eventRepo.remaining(event.ID)
	for _, ticket := range ticketRepo.tickets {
		total += ticket.Quantity
	}
	assert.Equal(t, initial, total)
}

func TestCancelTicketRestoresInventory(t *testing.T) {
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, 10)
	buyer := primitive.NewObjectID()
	ctx := context.Background()

	ticket, err := svc.IssueTicket(ctx, event.ID, buyer, 4, "cs_test_cancel")
	require.NoError(t, err)
	require.Equal(t, 6, eventRepo.remaining(event.ID))

	require.NoError(t, svc.CancelTicket(ctx, ticket.ID, buyer))
	assert.Equal(t, 10, eventRepo.remaining(event.ID))
	assert.Empty(t, ticketRepo.tickets)

	// Cancelling again finds nothing to cancel.
	err = svc.CancelTicket(ctx, ticket.ID, buyer)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 10, eventRepo.remaining(event.ID))
}

func TestCancelTicketRequiresOwnership(t *testing.T) {
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, 10)
	buyer := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	ctx := context.Background()

	ticket, err := svc.IssueTicket(ctx, event.ID, buyer, 2, "cs_test_owner")
	require.NoError(t, err)

	err = svc.CancelTicket(ctx, ticket.ID, stranger)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Len(t, ticketRepo.tickets, 1, "the ticket must survive a rejected cancellation")
	assert.Equal(t, 8, eventRepo.remaining(event.ID))
}

func TestCreateTicketDirectFailsClosedWithoutPayment(t *testing.T) {
	svc, ticketRepo, eventRepo, event := newTicketFixture(t, 10)

	_, err := svc.CreateTicketDirect(context.Background(), event.ID, primitive.NewObjectID(), 2, false)
	assert.ErrorIs(t, err, models.ErrPaymentRequired)
	assert.Empty(t, ticketRepo.tickets)
	assert.Equal(t, 10, eventRepo.remaining(event.ID))
}

func TestCreateTicketDirectIssuesWhenPaid(t *testing.T) {
	svc, _, eventRepo, event := newTicketFixture(t, 10)
	buyer := primitive.NewObjectID()

	ticket, err := svc.CreateTicketDirect(context.Background(), event.ID, buyer, 2, true)
	require.NoError(t, err)

	assert.Equal(t, buyer, ticket.User)
	assert.Empty(t, ticket.PaymentRef)
	assert.Equal(t, 8, eventRepo.remaining(event.ID))
}

func TestListMyTicketsEmbedsEvent(t *testing.T) {
	svc, _, eventRepo, event := newTicketFixture(t, 10)
	buyer := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.IssueTicket(ctx, event.ID, buyer, 2, "cs_test_embed")
	require.NoError(t, err)

	tickets, err := svc.ListTicketsByUser(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].Event)
	assert.Equal(t, event.ID, tickets[0].Event.ID)
	assert.Equal(t, "Summer Jazz Night", tickets[0].Event.Title)

	// A deleted event leaves the ticket listable with a null event.
	require.NoError(t, eventRepo.DeleteEvent(ctx, event.ID))
	tickets, err = svc.ListTicketsByUser(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Nil(t, tickets[0].Event)
}

func TestTicketsForEventStats(t *testing.T) {
	svc, _, _, event := newTicketFixture(t, 100)
	ctx := context.Background()

	for _, qty := range []int{2, 3, 1} {
		_, err := svc.IssueTicket(ctx, event.ID, primitive.NewObjectID(), qty, "")
		require.NoError(t, err)
	}

	tickets, stats, err := svc.TicketsForEvent(ctx, event.ID, event.Organizer)
	require.NoError(t, err)

	assert.Len(t, tickets, 3)
	for _, ticket := range tickets {
		require.NotNil(t, ticket.User, "organizer listing embeds the buyer")
	}
	assert.Equal(t, 3, stats.TicketCount)
	assert.Equal(t, 6, stats.TotalAttendees)
	assert.InDelta(t, 150.0, stats.TotalSales, 0.001) // 6 attendees at 25 each
}

func TestTicketsForEventOrganizerOnly(t *testing.T) {
	svc, _, _, event := newTicketFixture(t, 10)

	_, _, err := svc.TicketsForEvent(context.Background(), event.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrForbidden)
}
