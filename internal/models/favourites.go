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

type Favourite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user" validate:"required"`
	Event     primitive.ObjectID `bson:"event" json:"event" validate:"required"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedFavourite is a favourite with its referenced event embedded, as the
// listing returns it. Event is nil when the event was deleted.
type PopulatedFavourite struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Event     *Event             `bson:"event" json:"event"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type FavouriteRepo interface {
	InsertFavourite(ctx context.Context, fav *Favourite) (*Favourite, error)
	FindFavourite(ctx context.Context, user, event primitive.ObjectID) (*Favourite, error)
	GetFavouriteByID(ctx context.Context, id primitive.ObjectID) (*Favourite, error)
	ListFavouritesByUser(ctx context.Context, user primitive.ObjectID) ([]*PopulatedFavourite, error)
	DeleteFavourite(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) InsertFavourite(ctx context.Context, fav *Favourite) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, DbName, FavouritesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if fav.ID.IsZero() {
		fav.ID = primitive.NewObjectID()
	}
	now := time.Now()
	fav.CreatedAt = now
	fav.UpdatedAt = now

	if _, err := col.InsertOne(ctx, fav); err != nil {
		return nil, fmt.Errorf("error inserting favourite: %v", err)
	}
	return fav, nil
}

func (mdb *MongodbRepo) FindFavourite(ctx context.Context, user, event primitive.ObjectID) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, DbName, FavouritesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var fav Favourite
	if err := col.FindOne(ctx, bson.M{"user": user, "event": event}).Decode(&fav); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("favourite %w", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding favourite: %v", err)
	}
	return &fav, nil
}

func (mdb *MongodbRepo) GetFavouriteByID(ctx context.Context, id primitive.ObjectID) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, DbName, FavouritesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var fav Favourite
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&fav); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("favourite %w", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding favourite: %v", err)
	}
	return &fav, nil
}

// ListFavouritesByUser returns the user's favourites with their event
// documents joined in.
func (mdb *MongodbRepo) ListFavouritesByUser(ctx context.Context, user primitive.ObjectID) ([]*PopulatedFavourite, error) {
	col, err := mdb.GetCollection(ctx, DbName, FavouritesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"user": user}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
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
		return nil, fmt.Errorf("error listing favourites: %v", err)
	}
	defer cursor.Close(ctx)

	favourites := []*PopulatedFavourite{}
	for cursor.Next(ctx) {
		var fav PopulatedFavourite
		if err := cursor.Decode(&fav); err != nil {
			return nil, fmt.Errorf("error decoding favourite: %v", err)
		}
		favourites = append(favourites, &fav)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return favourites, nil
}

func (mdb *MongodbRepo) DeleteFavourite(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, FavouritesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting favourite: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("favourite %w", ErrNotFound)
	}
	return nil
}
