package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Ticket struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User  primitive.ObjectID `bson:"user" json:"user" validate:"required"`
	Event primitive.ObjectID `bson:"event" json:"event" validate:"required"`
	// QRCode is a data URL wrapping the scannable ticket payload.
	QRCode       string    `bson:"qrCode" json:"qrCode" validate:"required"`
	PurchaseDate time.Time `bson:"purchaseDate" json:"purchaseDate"`
	Quantity     int       `bson:"quantity" json:"quantity" validate:"gte=1"`
	// PaymentRef holds the checkout session id a webhook delivery carried.
	// A unique partial index on it makes redelivered notifications land on the
	// same ticket instead of minting a second one. Empty for the direct path.
	PaymentRef string `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
}

// PopulatedTicket is a ticket with its referenced event embedded, as the
// buyer-facing listings return it. Event is nil when the event was deleted
// after purchase.
type PopulatedTicket struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	Event        *Event             `bson:"event" json:"event"`
	QRCode       string             `bson:"qrCode" json:"qrCode"`
	PurchaseDate time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	PaymentRef   string             `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
}

// TicketBuyer is the public slice of a buyer embedded in organizer listings.
type TicketBuyer struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
}

// AttendeeTicket is a ticket with its buyer embedded, returned to the event's
// organizer.
type AttendeeTicket struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	User         *TicketBuyer       `bson:"user" json:"user"`
	Event        primitive.ObjectID `bson:"event" json:"event"`
	QRCode       string             `bson:"qrCode" json:"qrCode"`
	PurchaseDate time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	Quantity     int                `bson:"quantity" json:"quantity"`
}

type TicketRepo interface {
	InsertTicket(ctx context.Context, ticket *Ticket) (*Ticket, error)
	GetTicketByID(ctx context.Context, id primitive.ObjectID) (*Ticket, error)
	GetTicketByPaymentRef(ctx context.Context, paymentRef string) (*Ticket, error)
	ListTicketsByUser(ctx context.Context, user primitive.ObjectID) ([]*PopulatedTicket, error)
	ListTicketsByEvent(ctx context.Context, event primitive.ObjectID) ([]*AttendeeTicket, error)
	DeleteTicket(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) InsertTicket(ctx context.Context, ticket *Ticket) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	if ticket.PurchaseDate.IsZero() {
		ticket.PurchaseDate = time.Now()
	}
	if ticket.Quantity < 1 {
		ticket.Quantity = 1
	}

	if _, err := col.InsertOne(ctx, ticket); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("ticket for payment %q %w", ticket.PaymentRef, ErrDuplicate)
		}
		return nil, fmt.Errorf("error inserting ticket: %v", err)
	}
	return ticket, nil
}

func (mdb *MongodbRepo) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var ticket Ticket
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ticket %w", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding ticket: %v", err)
	}
	return &ticket, nil
}

func (mdb *MongodbRepo) GetTicketByPaymentRef(ctx context.Context, paymentRef string) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var ticket Ticket
	if err := col.FindOne(ctx, bson.M{"paymentRef": paymentRef}).Decode(&ticket); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ticket %w", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding ticket: %v", err)
	}
	return &ticket, nil
}

// ListTicketsByUser returns the user's tickets newest first, each with its
// event document joined in.
func (mdb *MongodbRepo) ListTicketsByUser(ctx context.Context, user primitive.ObjectID) ([]*PopulatedTicket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"user": user}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "purchaseDate", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         EventsColName,
			"localField":   "event",
			"foreignField": "_id",
			"as":           "event",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$event",
			"preserveNullAndEmptyArrays": true,
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %v", err)
	}
	defer cursor.Close(ctx)

	tickets := []*PopulatedTicket{}
	for cursor.Next(ctx) {
		var ticket PopulatedTicket
		if err := cursor.Decode(&ticket); err != nil {
			return nil, fmt.Errorf("error decoding ticket: %v", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return tickets, nil
}

// ListTicketsByEvent returns an event's tickets newest first, each with the
// buyer's public profile joined in.
func (mdb *MongodbRepo) ListTicketsByEvent(ctx context.Context, event primitive.ObjectID) ([]*AttendeeTicket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"event": event}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "purchaseDate", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         UsersColName,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$user",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"user._id":      1,
			"user.username": 1,
			"user.email":    1,
			"event":         1,
			"qrCode":        1,
			"purchaseDate":  1,
			"quantity":      1,
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %v", err)
	}
	defer cursor.Close(ctx)

	tickets := []*AttendeeTicket{}
	for cursor.Next(ctx) {
		var ticket AttendeeTicket
		if err := cursor.Decode(&ticket); err != nil {
			return nil, fmt.Errorf("error decoding ticket: %v", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return tickets, nil
}

func (mdb *MongodbRepo) DeleteTicket(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting ticket: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("ticket %w", ErrNotFound)
	}
	return nil
}
