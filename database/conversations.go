package database

import (
	"context"
	"time"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConversationStore struct {
	coll *mongo.Collection
}

func NewConversationStore(m *Mongo) *ConversationStore {
	return &ConversationStore{coll: m.OpenCollection(ConversationCollection)}
}

// GetOrCreate upserts on pairKey. Two concurrent upserts for the same pair can
// both miss and race on insert; the unique index rejects the loser, which then
// reads the winner's document.
func (s *ConversationStore) GetOrCreate(ctx context.Context, a, b primitive.ObjectID) (models.Conversation, error) {
	key := models.PairKey(a, b)
	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{"$setOnInsert": bson.M{
		"_id":          primitive.NewObjectID(),
		"participants": models.SortedPair(a, b),
		"createdAt":    now,
		"updatedAt":    now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv models.Conversation
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"pairKey": key}, update, opts).Decode(&conv)
	if mongo.IsDuplicateKeyError(err) {
		err = s.coll.FindOne(ctx, bson.M{"pairKey": key}).Decode(&conv)
	}
	return conv, translate(err)
}

func (s *ConversationStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Conversation, error) {
	var conv models.Conversation
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	return conv, translate(err)
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// SetLastMessage moves the last-message pointer forward. A pointer that is
// already newer than at is left alone.
func (s *ConversationStore) SetLastMessage(ctx context.Context, id, messageID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id, "updatedAt": bson.M{"$lte": at}}
	update := bson.M{"$set": bson.M{"lastMessage": messageID, "updatedAt": at}}
	_, err := s.coll.UpdateOne(ctx, filter, update)
	return err
}
