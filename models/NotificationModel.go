package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

const NotificationLike = "like"

type Notification struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Recipient  primitive.ObjectID `json:"recipient" bson:"recipient"`
	Actor      primitive.ObjectID `json:"actor" bson:"actor"`
	Type       string             `json:"type" bson:"type"`
	TargetType TargetType         `json:"targetType" bson:"targetType"`
	Target     primitive.ObjectID `json:"target" bson:"target"`
	Message    string             `json:"message" bson:"message"`
	IsRead     bool               `json:"isRead" bson:"isRead"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
