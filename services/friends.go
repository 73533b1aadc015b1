package services

import (
	"context"
	"errors"
	"fmt"

	"connectly/database"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendService only creates edges; there is no request/accept flow.
type FriendService struct {
	users   UserStore
	friends FriendStore
}

func NewFriendService(users UserStore, friends FriendStore) *FriendService {
	return &FriendService{users: users, friends: friends}
}

func (s *FriendService) Befriend(ctx context.Context, a, b primitive.ObjectID) (models.Friend, error) {
	if a == b {
		return models.Friend{}, helper.InvalidRequest("A user cannot befriend themselves")
	}
	for _, id := range []primitive.ObjectID{a, b} {
		if _, err := s.users.FindByID(ctx, id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return models.Friend{}, helper.NotFound("User " + id.Hex() + " not found")
			}
			return models.Friend{}, fmt.Errorf("find user: %w", err)
		}
	}
	edge, err := s.friends.Add(ctx, a, b)
	if errors.Is(err, database.ErrDuplicateKey) {
		return models.Friend{}, helper.InvalidRequest("Users are already friends")
	}
	if err != nil {
		return models.Friend{}, fmt.Errorf("add friend: %w", err)
	}
	return edge, nil
}
