package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryAll is the sentinel category value that disables category filtering.
const CategoryAll = "all"

var EventCategories = []string{
	"conference",
	"seminar",
	"workshop",
	"concert",
	"festival",
	"exhibition",
	"sport",
	"networking",
	"other",
}

func IsValidCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Date        time.Time          `bson:"date" json:"date" validate:"required"`
	Venue       string             `bson:"venue" json:"venue" validate:"required"`
	Address     string             `bson:"address" json:"address" validate:"required"`
	Category    string             `bson:"category" json:"category" validate:"required,oneof=conference seminar workshop concert festival exhibition sport networking other"`
	Price       float64            `bson:"price" json:"price" validate:"gte=0"`
	// TotalTickets is the remaining-ticket counter: it is decremented on every
	// issuance and restored on cancellation. It never goes below zero.
	TotalTickets int                `bson:"totalTickets" json:"totalTickets" validate:"gte=0"`
	Organizer    primitive.ObjectID `bson:"organizer" json:"organizer"`
	Images       []string           `bson:"images" json:"images"`
	Video        string             `bson:"video,omitempty" json:"video,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListEventsByOrganizer(ctx context.Context, organizer primitive.ObjectID) ([]*Event, error)
	ListEventsByCategory(ctx context.Context, category string) ([]*Event, error)
	SearchEvents(ctx context.Context, query, category string) ([]*Event, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Event, error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	ReserveTickets(ctx context.Context, id primitive.ObjectID, quantity int) error
	ReleaseTickets(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// BuildSearchFilter constructs the Mongo filter for event search: a
// case-insensitive substring match of query against title, description, venue
// and address, intersected with an exact category match unless the category is
// empty or "all".
func BuildSearchFilter(query, category string) bson.M {
	filter := bson.M{}

	if query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"venue": pattern},
			bson.M{"address": pattern},
		}
	}

	if category != "" && category != CategoryAll {
		filter["category"] = category
	}

	return filter
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}

	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("error inserting event: %v", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("event %w", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding event: %v", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListEventsByOrganizer(ctx context.Context, organizer primitive.ObjectID) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"organizer": organizer})
}

func (mdb *MongodbRepo) ListEventsByCategory(ctx context.Context, category string) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"category": category})
}

func (mdb *MongodbRepo) SearchEvents(ctx context.Context, query, category string) ([]*Event, error) {
	return mdb.findEvents(ctx, BuildSearchFilter(query, category))
}

func (mdb *MongodbRepo) findEvents(ctx context.Context, filter bson.M) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("error decoding event: %v", err)
		}
		events = append(events, &event)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return events, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("event %w", ErrNotFound)
		}
		return nil, fmt.Errorf("error updating event: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting event: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("event %w", ErrNotFound)
	}
	return nil
}

// ReserveTickets atomically decrements the remaining-ticket counter, but only
// when at least quantity tickets remain. A failed guard means the event is
// fully booked; the counter can never go negative.
func (mdb *MongodbRepo) ReserveTickets(ctx context.Context, id primitive.ObjectID, quantity int) error {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"_id":          id,
		"totalTickets": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"totalTickets": -quantity},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error reserving tickets: %v", err)
	}
	if res.MatchedCount == 0 {
		// Either the event is gone or the guard failed.
		if _, err := mdb.GetEventByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("event %s: %w", id.Hex(), ErrSoldOut)
	}
	return nil
}

// ReleaseTickets restores quantity onto the remaining-ticket counter, used on
// cancellation and to compensate a failed ticket insert.
func (mdb *MongodbRepo) ReleaseTickets(ctx context.Context, id primitive.ObjectID, quantity int) error {
	col, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$inc": bson.M{"totalTickets": quantity},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("error releasing tickets: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("event %w", ErrNotFound)
	}
	return nil
}
