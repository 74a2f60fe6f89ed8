package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. Uniqueness on
// users guards registration races; the partial unique index on paymentRef is
// what makes webhook redelivery idempotent at the storage layer.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	users, err := mdb.GetCollection(ctx, DbName, UsersColName)
	if err != nil {
		return err
	}
	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	events, err := mdb.GetCollection(ctx, DbName, EventsColName)
	if err != nil {
		return err
	}
	_, err = events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organizer", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %v", err)
	}

	tickets, err := mdb.GetCollection(ctx, DbName, TicketsColName)
	if err != nil {
		return err
	}
	_, err = tickets.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "event", Value: 1}}},
		{
			Keys: bson.D{{Key: "paymentRef", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"paymentRef": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create ticket indexes: %v", err)
	}

	favourites, err := mdb.GetCollection(ctx, DbName, FavouritesColName)
	if err != nil {
		return err
	}
	_, err = favourites.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "event", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create favourite indexes: %v", err)
	}

	return nil
}
