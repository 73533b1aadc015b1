package database

import (
	"context"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(m *Mongo) *MessageStore {
	return &MessageStore{coll: m.OpenCollection(MessageCollection)}
}

func (s *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	_, err := s.coll.InsertOne(ctx, msg)
	return translate(err)
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"conversation": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Message, error) {
	out := make(map[primitive.ObjectID]models.Message, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	for _, m := range messages {
		out[m.ID] = m
	}
	return out, nil
}
