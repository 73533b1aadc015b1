package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the stores rely on. The unique pairKey
// indexes are what keep friendships and conversations one per pair.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := func(name string) *options.IndexOptions {
		return options.Index().SetUnique(true).SetName(name)
	}
	plan := map[string][]mongo.IndexModel{
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("uniq_email")},
		},
		FriendCollection: {
			{Keys: bson.D{{Key: "pairKey", Value: 1}}, Options: unique("uniq_pair")},
			{Keys: bson.D{{Key: "users", Value: 1}}},
		},
		ConversationCollection: {
			{Keys: bson.D{{Key: "pairKey", Value: 1}}, Options: unique("uniq_pair")},
			{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}}},
		},
		MessageCollection: {
			{Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		PostCollection: {
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CommentCollection: {
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		LikeCollection: {
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "targetType", Value: 1}, {Key: "target", Value: 1}},
				Options: unique("uniq_like"),
			},
			{Keys: bson.D{{Key: "targetType", Value: 1}, {Key: "target", Value: 1}}},
		},
		NotificationCollection: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, indexes := range plan {
		if _, err := m.OpenCollection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
