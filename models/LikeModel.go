package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

type Like struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	User       primitive.ObjectID `json:"user" bson:"user"`
	TargetType TargetType         `json:"targetType" bson:"targetType"`
	Target     primitive.ObjectID `json:"target" bson:"target"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// LikeIndex lists every target a user has liked, split by kind.
type LikeIndex struct {
	PostIDs    []primitive.ObjectID `json:"postIds"`
	CommentIDs []primitive.ObjectID `json:"commentIds"`
}

// LikeState is the outcome of a toggle.
type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}
