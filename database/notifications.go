package database

import (
	"context"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(m *Mongo) *NotificationStore {
	return &NotificationStore{coll: m.OpenCollection(NotificationCollection)}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := s.coll.InsertOne(ctx, n)
	return translate(err)
}

func (s *NotificationStore) ListForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "recipient": recipient}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, bson.M{"recipient": recipient, "isRead": false}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"recipient": recipient, "isRead": false})
}

func (s *NotificationStore) Delete(ctx context.Context, recipient, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "recipient": recipient})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationStore) DeleteAll(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"recipient": recipient})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
