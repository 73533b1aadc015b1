package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UserCollection         = "user-collection"
	FriendCollection       = "friend-collection"
	ConversationCollection = "conversation-collection"
	MessageCollection      = "message-collection"
	PostCollection         = "posts-collection"
	CommentCollection      = "comment-collection"
	LikeCollection         = "like-collection"
	NotificationCollection = "notification-collection"
	MediaBucket            = "media"
)

type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// DBinstance connects to uri and pings the primary before returning.
func DBinstance(ctx context.Context, uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Println("Connected to MongoDB!")
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

func (m *Mongo) OpenCollection(collectionName string) *mongo.Collection {
	return m.DB.Collection(collectionName)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
