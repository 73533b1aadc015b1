// Package services holds the request-independent rules of the API: who may
// read or write what, and how counters and pointers move. Handlers call into
// it with the authenticated caller id; every check is re-derived from stored
// data on each call.
package services

import (
	"context"
	"io"
	"time"

	"connectly/database"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindPublicProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicProfile, error)
}

type FriendStore interface {
	Add(ctx context.Context, a, b primitive.ObjectID) (models.Friend, error)
	Exists(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	FriendIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type ConversationStore interface {
	GetOrCreate(ctx context.Context, a, b primitive.ObjectID) (models.Conversation, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Conversation, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
	SetLastMessage(ctx context.Context, id, messageID primitive.ObjectID, at time.Time) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Message, error)
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter database.PostFilter) ([]models.Post, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error)
	IncrementComments(ctx context.Context, id primitive.ObjectID, delta int64) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) ([]primitive.ObjectID, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error)
}

type LikeStore interface {
	Insert(ctx context.Context, like *models.Like) error
	Remove(ctx context.Context, userID primitive.ObjectID, targetType models.TargetType, target primitive.ObjectID) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Like, error)
	UsersByTarget(ctx context.Context, targetType models.TargetType, target primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByTargets(ctx context.Context, targetType models.TargetType, targets []primitive.ObjectID) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, recipient, id primitive.ObjectID) error
	DeleteAll(ctx context.Context, recipient primitive.ObjectID) (int64, error)
}

type MediaStore interface {
	Save(ctx context.Context, filename, contentType string, src io.Reader) (primitive.ObjectID, error)
	Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Publisher pushes an event to whichever of users are connected.
type Publisher interface {
	Publish(users []primitive.ObjectID, action string, payload any)
}

// Stores bundles every store a Registry needs.
type Stores struct {
	Users         UserStore
	Friends       FriendStore
	Conversations ConversationStore
	Messages      MessageStore
	Posts         PostStore
	Comments      CommentStore
	Likes         LikeStore
	Notifications NotificationStore
	Media         MediaStore
}

// Registry is the set of services the HTTP layer and the CLI share.
type Registry struct {
	Users         *UserService
	Friends       *FriendService
	Conversations *ConversationService
	Posts         *PostService
	Likes         *LikeService
	Notifications *NotificationService
}

// NewRegistry wires every service over st. events may be nil.
func NewRegistry(st Stores, events Publisher, mediaURLPrefix string) *Registry {
	return &Registry{
		Users:         NewUserService(st.Users),
		Friends:       NewFriendService(st.Users, st.Friends),
		Conversations: NewConversationService(st.Conversations, st.Messages, st.Friends, st.Users, events),
		Posts:         NewPostService(st.Posts, st.Comments, st.Likes, st.Friends, st.Users, st.Media, mediaURLPrefix),
		Likes:         NewLikeService(st.Likes, st.Posts, st.Comments, st.Friends, st.Users, st.Notifications),
		Notifications: NewNotificationService(st.Notifications),
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
