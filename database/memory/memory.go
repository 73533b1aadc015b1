// Package memory holds process-local stores with the same contracts as the
// Mongo stores, including the unique constraints. It backs the "memory" store
// driver and the service tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"connectly/database"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB is one in-memory database. All stores created from it share a lock.
type DB struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]models.User
	friends       map[string]models.Friend
	conversations map[primitive.ObjectID]models.Conversation
	convByPair    map[string]primitive.ObjectID
	messages      map[primitive.ObjectID]models.Message
	posts         map[primitive.ObjectID]models.Post
	comments      map[primitive.ObjectID]models.Comment
	likes         map[likeKey]models.Like
	notifications map[primitive.ObjectID]models.Notification
	media         map[primitive.ObjectID]blob
}

type likeKey struct {
	user       primitive.ObjectID
	targetType models.TargetType
	target     primitive.ObjectID
}

type blob struct {
	contentType string
	data        []byte
}

func New() *DB {
	return &DB{
		users:         map[primitive.ObjectID]models.User{},
		friends:       map[string]models.Friend{},
		conversations: map[primitive.ObjectID]models.Conversation{},
		convByPair:    map[string]primitive.ObjectID{},
		messages:      map[primitive.ObjectID]models.Message{},
		posts:         map[primitive.ObjectID]models.Post{},
		comments:      map[primitive.ObjectID]models.Comment{},
		likes:         map[likeKey]models.Like{},
		notifications: map[primitive.ObjectID]models.Notification{},
		media:         map[primitive.ObjectID]blob{},
	}
}

// Users

type UserStore struct{ db *DB }

func (db *DB) Users() *UserStore { return &UserStore{db} }

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return database.ErrDuplicateKey
		}
	}
	if _, ok := s.db.users[user.ID]; ok {
		return database.ErrDuplicateKey
	}
	s.db.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (s *UserStore) FindPublicProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[primitive.ObjectID]models.PublicProfile, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = u.Public()
		}
	}
	return out, nil
}

// Friends

type FriendStore struct{ db *DB }

func (db *DB) Friends() *FriendStore { return &FriendStore{db} }

func (s *FriendStore) Add(ctx context.Context, a, b primitive.ObjectID) (models.Friend, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := models.PairKey(a, b)
	if _, ok := s.db.friends[key]; ok {
		return models.Friend{}, database.ErrDuplicateKey
	}
	f := models.Friend{
		ID:        primitive.NewObjectID(),
		Users:     models.SortedPair(a, b),
		PairKey:   key,
		CreatedAt: time.Now().UTC(),
	}
	s.db.friends[key] = f
	return f, nil
}

func (s *FriendStore) Exists(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.friends[models.PairKey(a, b)]
	return ok, nil
}

func (s *FriendStore) FriendIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []primitive.ObjectID
	for _, f := range s.db.friends {
		switch userID {
		case f.Users[0]:
			ids = append(ids, f.Users[1])
		case f.Users[1]:
			ids = append(ids, f.Users[0])
		}
	}
	return ids, nil
}

// Conversations

type ConversationStore struct{ db *DB }

func (db *DB) Conversations() *ConversationStore { return &ConversationStore{db} }

func (s *ConversationStore) GetOrCreate(ctx context.Context, a, b primitive.ObjectID) (models.Conversation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := models.PairKey(a, b)
	if id, ok := s.db.convByPair[key]; ok {
		return s.db.conversations[id], nil
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	conv := models.Conversation{
		ID:           primitive.NewObjectID(),
		Participants: models.SortedPair(a, b),
		PairKey:      key,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.conversations[conv.ID] = conv
	s.db.convByPair[key] = conv.ID
	return conv, nil
}

func (s *ConversationStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Conversation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.conversations[id]
	if !ok {
		return models.Conversation{}, database.ErrNotFound
	}
	return c, nil
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range s.db.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *ConversationStore) SetLastMessage(ctx context.Context, id, messageID primitive.ObjectID, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.conversations[id]
	if !ok || c.UpdatedAt.After(at) {
		return nil
	}
	c.LastMessage = &messageID
	c.UpdatedAt = at
	s.db.conversations[id] = c
	return nil
}

// Messages

type MessageStore struct{ db *DB }

func (db *DB) Messages() *MessageStore { return &MessageStore{db} }

func (s *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.messages[msg.ID] = *msg
	return nil
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Message{}
	for _, m := range s.db.messages {
		if m.Conversation == conversationID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s *MessageStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Message, len(ids))
	for _, id := range ids {
		if m, ok := s.db.messages[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

// Posts

type PostStore struct{ db *DB }

func (db *DB) Posts() *PostStore { return &PostStore{db} }

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.posts[post.ID] = *post
	return nil
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.posts[id]
	if !ok {
		return models.Post{}, database.ErrNotFound
	}
	return p, nil
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.db.posts, id)
	return nil
}

func (s *PostStore) List(ctx context.Context, filter database.PostFilter) ([]models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Post{}
	for _, p := range s.db.posts {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *PostStore) IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.posts[id]
	if !ok {
		return 0, database.ErrNotFound
	}
	p.LikesCount += delta
	s.db.posts[id] = p
	return p.LikesCount, nil
}

func (s *PostStore) IncrementComments(ctx context.Context, id primitive.ObjectID, delta int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.posts[id]
	if !ok {
		return database.ErrNotFound
	}
	p.CommentsCount += delta
	s.db.posts[id] = p
	return nil
}

// Comments

type CommentStore struct{ db *DB }

func (db *DB) Comments() *CommentStore { return &CommentStore{db} }

func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.comments[comment.ID] = *comment
	return nil
}

func (s *CommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return models.Comment{}, database.ErrNotFound
	}
	return c, nil
}

func (s *CommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.db.comments {
		if c.Post == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s *CommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

func (s *CommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := []primitive.ObjectID{}
	for id, c := range s.db.comments {
		if c.Post == postID {
			ids = append(ids, id)
			delete(s.db.comments, id)
		}
	}
	return ids, nil
}

func (s *CommentStore) IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return 0, database.ErrNotFound
	}
	c.LikesCount += delta
	s.db.comments[id] = c
	return c.LikesCount, nil
}

// Likes

type LikeStore struct{ db *DB }

func (db *DB) Likes() *LikeStore { return &LikeStore{db} }

func (s *LikeStore) Insert(ctx context.Context, like *models.Like) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := likeKey{like.User, like.TargetType, like.Target}
	if _, ok := s.db.likes[key]; ok {
		return database.ErrDuplicateKey
	}
	s.db.likes[key] = *like
	return nil
}

func (s *LikeStore) Remove(ctx context.Context, userID primitive.ObjectID, targetType models.TargetType, target primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := likeKey{userID, targetType, target}
	if _, ok := s.db.likes[key]; !ok {
		return false, nil
	}
	delete(s.db.likes, key)
	return true, nil
}

func (s *LikeStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Like, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Like{}
	for _, l := range s.db.likes {
		if l.User == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *LikeStore) UsersByTarget(ctx context.Context, targetType models.TargetType, target primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var likes []models.Like
	for _, l := range s.db.likes {
		if l.TargetType == targetType && l.Target == target {
			likes = append(likes, l)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })
	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.User)
	}
	return ids, nil
}

func (s *LikeStore) DeleteByTargets(ctx context.Context, targetType models.TargetType, targets []primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	drop := make(map[primitive.ObjectID]bool, len(targets))
	for _, t := range targets {
		drop[t] = true
	}
	for key := range s.db.likes {
		if key.targetType == targetType && drop[key.target] {
			delete(s.db.likes, key)
		}
	}
	return nil
}

// Notifications

type NotificationStore struct{ db *DB }

func (db *DB) Notifications() *NotificationStore { return &NotificationStore{db} }

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.notifications[n.ID] = *n
	return nil
}

func (s *NotificationStore) ListForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.db.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.Recipient != recipient {
		return database.ErrNotFound
	}
	n.IsRead = true
	s.db.notifications[id] = n
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, note := range s.db.notifications {
		if note.Recipient == recipient && !note.IsRead {
			note.IsRead = true
			s.db.notifications[id] = note
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, note := range s.db.notifications {
		if note.Recipient == recipient && !note.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) Delete(ctx context.Context, recipient, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.Recipient != recipient {
		return database.ErrNotFound
	}
	delete(s.db.notifications, id)
	return nil
}

func (s *NotificationStore) DeleteAll(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, note := range s.db.notifications {
		if note.Recipient == recipient {
			delete(s.db.notifications, id)
			n++
		}
	}
	return n, nil
}

// Media

type MediaStore struct{ db *DB }

func (db *DB) Media() *MediaStore { return &MediaStore{db} }

func (s *MediaStore) Save(ctx context.Context, filename, contentType string, src io.Reader) (primitive.ObjectID, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := primitive.NewObjectID()
	s.db.mu.Lock()
	s.db.media[id] = blob{contentType: contentType, data: data}
	s.db.mu.Unlock()
	return id, nil
}

func (s *MediaStore) Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.media[id]
	if !ok {
		return nil, "", database.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.contentType, nil
}

func (s *MediaStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.media, id)
	return nil
}
