package database

import (
	"context"

	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(m *Mongo) *UserStore {
	return &UserStore{coll: m.OpenCollection(UserCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.coll.InsertOne(ctx, user)
	return translate(err)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, translate(err)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, translate(err)
}

func (s *UserStore) FindPublicProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicProfile, error) {
	out := make(map[primitive.ObjectID]models.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	projection := bson.M{"username": 1, "picture": 1}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.PublicProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}
