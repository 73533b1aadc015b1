package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// MaxPostMedia is the most attachments a single post may carry.
const MaxPostMedia = 10

type Media struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	URL         string             `json:"url" bson:"url"`
	ContentType string             `json:"contentType" bson:"contentType"`
	Filename    string             `json:"filename" bson:"filename"`
}

type Post struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	Author        primitive.ObjectID `json:"author" bson:"author"`
	Content       string             `json:"content" bson:"content"`
	Media         []Media            `json:"media" bson:"media"`
	Visibility    Visibility         `json:"visibility" bson:"visibility"`
	LikesCount    int64              `json:"likesCount" bson:"likesCount"`
	CommentsCount int64              `json:"commentsCount" bson:"commentsCount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Comment struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Post       primitive.ObjectID `json:"post" bson:"post"`
	Author     primitive.ObjectID `json:"author" bson:"author"`
	Content    string             `json:"content" bson:"content"`
	LikesCount int64              `json:"likesCount" bson:"likesCount"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
