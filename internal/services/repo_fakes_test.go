package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Business-Integration-Technologies/EventNest/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories with the same contract as the Mongo-backed ones,
// including the guarded decrement on ReserveTickets and the unique paymentRef
// constraint on InsertTicket.

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]*models.Event
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: map[primitive.ObjectID]*models.Event{}}
	for _, ev := range events {
		if ev.ID.IsZero() {
			ev.ID = primitive.NewObjectID()
		}
		repo.events[ev.ID] = ev
	}
	return repo
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeEventRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("event not found: %w", models.ErrNotFound)
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) ListEvents(_ context.Context) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Event, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEventRepo) ListEventsByOrganizer(_ context.Context, organizer primitive.ObjectID) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Event
	for _, ev := range f.events {
		if ev.Organizer == organizer {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListEventsByCategory(_ context.Context, category string) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Event
	for _, ev := range f.events {
		if ev.Category == category {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) SearchEvents(_ context.Context, query, category string) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []*models.Event
	for _, ev := range f.events {
		if category != "" && category != models.CategoryAll && ev.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(ev.Title), q) &&
			!strings.Contains(strings.ToLower(ev.Description), q) &&
			!strings.Contains(strings.ToLower(ev.Venue), q) &&
			!strings.Contains(strings.ToLower(ev.Address), q) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEventRepo) UpdateEvent(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("event not found: %w", models.ErrNotFound)
	}
	for key, value := range fields {
		switch key {
		case "title":
			event.Title = value.(string)
		case "description":
			event.Description = value.(string)
		case "date":
			event.Date = value.(time.Time)
		case "venue":
			event.Venue = value.(string)
		case "address":
			event.Address = value.(string)
		case "category":
			event.Category = value.(string)
		case "price":
			event.Price = value.(float64)
		case "totalTickets":
			event.TotalTickets = value.(int)
		case "updatedAt":
			event.UpdatedAt = value.(time.Time)
		}
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return fmt.Errorf("event not found: %w", models.ErrNotFound)
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) ReserveTickets(_ context.Context, id primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return fmt.Errorf("event not found: %w", models.ErrNotFound)
	}
	if event.TotalTickets < quantity {
		return fmt.Errorf("only %d tickets left: %w", event.TotalTickets, models.ErrSoldOut)
	}
	event.TotalTickets -= quantity
	return nil
}

func (f *fakeEventRepo) ReleaseTickets(_ context.Context, id primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return fmt.Errorf("event not found: %w", models.ErrNotFound)
	}
	event.TotalTickets += quantity
	return nil
}

func (f *fakeEventRepo) remaining(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id].TotalTickets
}

// lookup returns a copy of the stored event, or nil when it was deleted.
func (f *fakeEventRepo) lookup(id primitive.ObjectID) *models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil
	}
	clone := *event
	return &clone
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[primitive.ObjectID]*models.Ticket
	events  *fakeEventRepo

	// insertErr, when set, makes the next InsertTicket fail once.
	insertErr error
}

func newFakeTicketRepo(events *fakeEventRepo) *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: map[primitive.ObjectID]*models.Ticket{},
		events:  events,
	}
}

func (f *fakeTicketRepo) InsertTicket(_ context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		err := f.insertErr
		f.insertErr = nil
		return nil, err
	}
	if ticket.PaymentRef != "" {
		for _, existing := range f.tickets {
			if existing.PaymentRef == ticket.PaymentRef {
				return nil, fmt.Errorf("paymentRef already recorded: %w", models.ErrDuplicate)
			}
		}
	}
	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	if ticket.PurchaseDate.IsZero() {
		ticket.PurchaseDate = time.Now()
	}
	f.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (f *fakeTicketRepo) GetTicketByID(_ context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket not found: %w", models.ErrNotFound)
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) GetTicketByPaymentRef(_ context.Context, paymentRef string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.PaymentRef == paymentRef {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("ticket not found: %w", models.ErrNotFound)
}

func (f *fakeTicketRepo) ListTicketsByUser(_ context.Context, user primitive.ObjectID) ([]*models.PopulatedTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PopulatedTicket
	for _, ticket := range f.tickets {
		if ticket.User != user {
			continue
		}
		out = append(out, &models.PopulatedTicket{
			ID:           ticket.ID,
			User:         ticket.User,
			Event:        f.events.lookup(ticket.Event),
			QRCode:       ticket.QRCode,
			PurchaseDate: ticket.PurchaseDate,
			Quantity:     ticket.Quantity,
			PaymentRef:   ticket.PaymentRef,
		})
	}
	return out, nil
}

func (f *fakeTicketRepo) ListTicketsByEvent(_ context.Context, event primitive.ObjectID) ([]*models.AttendeeTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AttendeeTicket
	for _, ticket := range f.tickets {
		if ticket.Event != event {
			continue
		}
		out = append(out, &models.AttendeeTicket{
			ID:           ticket.ID,
			User:         &models.TicketBuyer{ID: ticket.User},
			Event:        ticket.Event,
			QRCode:       ticket.QRCode,
			PurchaseDate: ticket.PurchaseDate,
			Quantity:     ticket.Quantity,
		})
	}
	return out, nil
}

func (f *fakeTicketRepo) DeleteTicket(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return fmt.Errorf("ticket not found: %w", models.ErrNotFound)
	}
	delete(f.tickets, id)
	return nil
}

type fakeFavouriteRepo struct {
	mu         sync.Mutex
	favourites map[primitive.ObjectID]*models.Favourite
	events     *fakeEventRepo
}

func newFakeFavouriteRepo(events *fakeEventRepo) *fakeFavouriteRepo {
	return &fakeFavouriteRepo{
		favourites: map[primitive.ObjectID]*models.Favourite{},
		events:     events,
	}
}

func (f *fakeFavouriteRepo) InsertFavourite(_ context.Context, fav *models.Favourite) (*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fav.ID.IsZero() {
		fav.ID = primitive.NewObjectID()
	}
	f.favourites[fav.ID] = fav
	return fav, nil
}

func (f *fakeFavouriteRepo) FindFavourite(_ context.Context, user, event primitive.ObjectID) (*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fav := range f.favourites {
		if fav.User == user && fav.Event == event {
			clone := *fav
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("favourite not found: %w", models.ErrNotFound)
}

func (f *fakeFavouriteRepo) GetFavouriteByID(_ context.Context, id primitive.ObjectID) (*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav, ok := f.favourites[id]
	if !ok {
		return nil, fmt.Errorf("favourite not found: %w", models.ErrNotFound)
	}
	clone := *fav
	return &clone, nil
}

func (f *fakeFavouriteRepo) ListFavouritesByUser(_ context.Context, user primitive.ObjectID) ([]*models.PopulatedFavourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PopulatedFavourite
	for _, fav := range f.favourites {
		if fav.User != user {
			continue
		}
		out = append(out, &models.PopulatedFavourite{
			ID:        fav.ID,
			User:      fav.User,
			Event:     f.events.lookup(fav.Event),
			CreatedAt: fav.CreatedAt,
			UpdatedAt: fav.UpdatedAt,
		})
	}
	return out, nil
}

func (f *fakeFavouriteRepo) DeleteFavourite(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.favourites[id]; !ok {
		return fmt.Errorf("favourite not found: %w", models.ErrNotFound)
	}
	delete(f.favourites, id)
	return nil
}
