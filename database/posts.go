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

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(m *Mongo) *PostStore {
	return &PostStore{coll: m.OpenCollection(PostCollection)}
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	_, err := s.coll.InsertOne(ctx, post)
	return translate(err)
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	return post, translate(err)
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostStore) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// IncrementLikes applies delta with $inc and returns the resulting counter.
func (s *PostStore) IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	return incrementCounter(ctx, s.coll, id, "likesCount", delta)
}

func (s *PostStore) IncrementComments(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := incrementCounter(ctx, s.coll, id, "commentsCount", delta)
	return err
}

func incrementCounter(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, delta int64) (int64, error) {
	update := bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{field: 1})

	var doc bson.M
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return 0, translate(err)
	}
	switch v := doc[field].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	}
	return 0, nil
}
