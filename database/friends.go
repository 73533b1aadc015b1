package database

import (
	"context"
	"time"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FriendStore struct {
	coll *mongo.Collection
}

func NewFriendStore(m *Mongo) *FriendStore {
	return &FriendStore{coll: m.OpenCollection(FriendCollection)}
}

func (s *FriendStore) Add(ctx context.Context, a, b primitive.ObjectID) (models.Friend, error) {
	friend := models.Friend{
		ID:        primitive.NewObjectID(),
		Users:     models.SortedPair(a, b),
		PairKey:   models.PairKey(a, b),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.coll.InsertOne(ctx, friend)
	return friend, translate(err)
}

func (s *FriendStore) Exists(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"pairKey": models.PairKey(a, b)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *FriendStore) FriendIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"users": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var edges []models.Friend
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(edges))
	for _, e := range edges {
		for _, u := range e.Users {
			if u != userID {
				ids = append(ids, u)
			}
		}
	}
	return ids, nil
}
