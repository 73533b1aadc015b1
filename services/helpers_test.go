package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"connectly/database/memory"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type published struct {
	users  []primitive.ObjectID
	action string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(users []primitive.ObjectID, action string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{users: users, action: action})
}

type testEnv struct {
	db     *memory.DB
	reg    *Registry
	events *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memory.New()
	events := &recordingPublisher{}
	reg := NewRegistry(Stores{
		Users:         db.Users(),
		Friends:       db.Friends(),
		Conversations: db.Conversations(),
		Messages:      db.Messages(),
		Posts:         db.Posts(),
		Comments:      db.Comments(),
		Likes:         db.Likes(),
		Notifications: db.Notifications(),
		Media:         db.Media(),
	}, events, "http://localhost:8080/")
	return &testEnv{db: db, reg: reg, events: events}
}

func (e *testEnv) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := e.reg.Users.Register(context.Background(), RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func (e *testEnv) befriend(t *testing.T, a, b models.User) {
	t.Helper()
	if _, err := e.reg.Friends.Befriend(context.Background(), a.ID, b.ID); err != nil {
		t.Fatalf("befriend: %v", err)
	}
}

func (e *testEnv) post(t *testing.T, author models.User, visibility models.Visibility) models.Post {
	t.Helper()
	p, err := e.reg.Posts.Create(context.Background(), author.ID, CreatePostInput{
		Content:    "hello from " + author.Username,
		Visibility: visibility,
	}, nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected status %d, got nil error", status)
	}
	if !helper.IsStatus(err, status) {
		t.Fatalf("expected status %d, got %v", status, err)
	}
}

func textUpload(name, body string) Upload {
	return Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}
