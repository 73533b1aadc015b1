package database

import (
	"context"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(m *Mongo) *CommentStore {
	return &CommentStore{coll: m.OpenCollection(CommentCollection)}
}

func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	_, err := s.coll.InsertOne(ctx, comment)
	return translate(err)
}

func (s *CommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var comment models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	return comment, translate(err)
}

func (s *CommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"post": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByPost removes every comment on a post and returns their ids.
func (s *CommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"post": postID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	_, err = s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return ids, err
}

func (s *CommentStore) IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	update := bson.M{"$inc": bson.M{"likesCount": delta}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment); err != nil {
		return 0, translate(err)
	}
	return comment.LikesCount, nil
}
