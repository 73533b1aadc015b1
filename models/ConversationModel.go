package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type Conversation struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id"`
	Participants []primitive.ObjectID `json:"participants" bson:"participants"`
	PairKey      string               `json:"-" bson:"pairKey"`
	LastMessage  *primitive.ObjectID  `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID.
func (c Conversation) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return primitive.NilObjectID
}

// ConversationSummary is a conversation as listed for one participant.
type ConversationSummary struct {
	ID          primitive.ObjectID `json:"_id"`
	User        *PublicProfile     `json:"user"`
	LastMessage *Message           `json:"lastMessage"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
