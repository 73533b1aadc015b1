package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type Message struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Conversation primitive.ObjectID `json:"conversation" bson:"conversation"`
	Sender       primitive.ObjectID `json:"sender" bson:"sender"`
	Content      string             `json:"content" bson:"content"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// MessageView is a message with its sender's public profile attached.
type MessageView struct {
	ID           primitive.ObjectID `json:"_id"`
	Conversation primitive.ObjectID `json:"conversation"`
	Sender       PublicProfile      `json:"sender"`
	Content      string             `json:"content"`
	CreatedAt    time.Time          `json:"createdAt"`
}
