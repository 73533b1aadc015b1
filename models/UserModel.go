package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

type User struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Username   string             `json:"username" bson:"username"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Picture    string             `json:"picture" bson:"picture"`
	Bio        string             `json:"bio" bson:"bio"`
	// Visibility is recorded on the account but nothing reads it yet; what
	// other users can see is decided per post.
	Visibility Visibility         `json:"visibility" bson:"visibility"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// PublicProfile is the subset of a user that other users may see.
type PublicProfile struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Picture  string             `json:"picture" bson:"picture"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, Picture: u.Picture}
}
