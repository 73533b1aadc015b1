package database

import (
	"context"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LikeStore struct {
	coll *mongo.Collection
}

func NewLikeStore(m *Mongo) *LikeStore {
	return &LikeStore{coll: m.OpenCollection(LikeCollection)}
}

// Insert fails with ErrDuplicateKey when the user already likes the target.
func (s *LikeStore) Insert(ctx context.Context, like *models.Like) error {
	_, err := s.coll.InsertOne(ctx, like)
	return translate(err)
}

// Remove deletes the like and reports whether one existed.
func (s *LikeStore) Remove(ctx context.Context, userID primitive.ObjectID, targetType models.TargetType, target primitive.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"user": userID, "targetType": targetType, "target": target})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *LikeStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Like, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	likes := []models.Like{}
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

func (s *LikeStore) UsersByTarget(ctx context.Context, targetType models.TargetType, target primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetProjection(bson.M{"user": 1})
	cursor, err := s.coll.Find(ctx, bson.M{"targetType": targetType, "target": target}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.User)
	}
	return ids, nil
}

func (s *LikeStore) DeleteByTargets(ctx context.Context, targetType models.TargetType, targets []primitive.ObjectID) error {
	if len(targets) == 0 {
		return nil
	}
	_, err := s.coll.DeleteMany(ctx, bson.M{"targetType": targetType, "target": bson.M{"$in": targets}})
	return err
}
