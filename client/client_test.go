package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"connectly/auth"
	"connectly/client/media"
	"connectly/database/memory"
	"connectly/models"
	"connectly/routes"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": status, "message": message, "data": data})
}

// stubAPI answers /user/me with whatever status meStatus holds and
// /user/refresh-token with refreshStatus.
type stubAPI struct {
	meStatus      func(call int32) int
	refreshStatus int
	meCalls       atomic.Int32
	refreshCalls  atomic.Int32
}

func (s *stubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/user/me":
		n := s.meCalls.Add(1)
		status := s.meStatus(n)
		if status == http.StatusOK {
			writeEnvelope(w, status, "User fetched", map[string]string{"username": "alice"})
			return
		}
		writeEnvelope(w, status, "Access token expired", nil)
	case "/user/refresh-token":
		s.refreshCalls.Add(1)
		writeEnvelope(w, s.refreshStatus, "refresh", nil)
	case "/user/login":
		writeEnvelope(w, http.StatusUnauthorized, "Invalid email or password", nil)
	default:
		http.NotFound(w, r)
	}
}

func newStubClient(t *testing.T, api *stubAPI, expired *atomic.Int32) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, OnSessionExpired(func() { expired.Add(1) }))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRefreshThenReplay(t *testing.T) {
	api := &stubAPI{
		meStatus: func(call int32) int {
			if call == 1 {
				return http.StatusUnauthorized
			}
			return http.StatusOK
		},
		refreshStatus: http.StatusOK,
	}
	var expired atomic.Int32
	c := newStubClient(t, api, &expired)

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("user = %+v", user)
	}
	if api.meCalls.Load() != 2 || api.refreshCalls.Load() != 1 || expired.Load() != 0 {
		t.Fatalf("me=%d refresh=%d expired=%d", api.meCalls.Load(), api.refreshCalls.Load(), expired.Load())
	}
}

func TestSecond401IsReturnedAsIs(t *testing.T) {
	api := &stubAPI{
		meStatus:      func(int32) int { return http.StatusUnauthorized },
		refreshStatus: http.StatusOK,
	}
	var expired atomic.Int32
	c := newStubClient(t, api, &expired)

	_, err := c.Me(context.Background())
	if StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if api.meCalls.Load() != 2 || api.refreshCalls.Load() != 1 {
		t.Fatalf("me=%d refresh=%d, want 2 and 1", api.meCalls.Load(), api.refreshCalls.Load())
	}
	if expired.Load() != 0 {
		t.Fatal("a successful refresh must not expire the session")
	}
}

func TestFailedRefreshExpiresSession(t *testing.T) {
	api := &stubAPI{
		meStatus:      func(int32) int { return http.StatusUnauthorized },
		refreshStatus: http.StatusUnauthorized,
	}
	var expired atomic.Int32
	c := newStubClient(t, api, &expired)

	_, err := c.Me(context.Background())
	if StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if api.meCalls.Load() != 1 || expired.Load() != 1 {
		t.Fatalf("me=%d expired=%d, want 1 and 1", api.meCalls.Load(), expired.Load())
	}
}

func TestLoginFailureIsNotRefreshed(t *testing.T) {
	api := &stubAPI{meStatus: func(int32) int { return http.StatusOK }, refreshStatus: http.StatusOK}
	var expired atomic.Int32
	c := newStubClient(t, api, &expired)

	_, err := c.Login(context.Background(), "alice@example.com", "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected APIError 401, got %v", err)
	}
	if apiErr.Display() != "Invalid email or password" {
		t.Fatalf("Display = %q", apiErr.Display())
	}
	if api.refreshCalls.Load() != 0 {
		t.Fatal("login failures must not trigger a refresh")
	}
}

func TestDisplayFallback(t *testing.T) {
	if got := (&APIError{StatusCode: 502}).Display(); got != "Something went wrong" {
		t.Fatalf("Display = %q", got)
	}
	if got := Message(errors.New("dial tcp: refused"), "Failed to delete post"); got != "Failed to delete post" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(&APIError{StatusCode: 403, Message: "Access denied"}, "x"); got != "Access denied" {
		t.Fatalf("Message = %q", got)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()
	c, _ := New(srv.URL)

	_, err := c.Feed(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway || apiErr.Display() != "Something went wrong" {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestCreatePostRejectsTooManyFiles(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeEnvelope(w, http.StatusCreated, "Post created", nil)
	}))
	defer srv.Close()
	c, _ := New(srv.URL)

	files := make([]media.File, media.MaxFiles+1)
	for i := range files {
		files[i] = media.FromBytes("photo.png", []byte("png"))
	}
	_, err := c.CreatePost(context.Background(), "too many", models.VisibilityPublic, files)
	if !errors.Is(err, media.ErrTooManyFiles) {
		t.Fatalf("err = %v, want ErrTooManyFiles", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("%d requests sent", hits.Load())
	}
}

// newLiveServer runs the real router over in-memory stores.
func newLiveServer(t *testing.T) (string, *services.Registry) {
	t.Helper()
	db := memory.New()
	reg := services.NewRegistry(services.Stores{
		Users:         db.Users(),
		Friends:       db.Friends(),
		Conversations: db.Conversations(),
		Messages:      db.Messages(),
		Posts:         db.Posts(),
		Comments:      db.Comments(),
		Likes:         db.Likes(),
		Notifications: db.Notifications(),
		Media:         db.Media(),
	}, nil, "")
	authn := auth.NewAuthenticator("access", "refresh", time.Minute, time.Hour)
	srv := httptest.NewServer(routes.NewRouter(routes.Options{}, reg, authn, nil))
	t.Cleanup(srv.Close)
	return srv.URL, reg
}

func signedIn(t *testing.T, base, name string) (*Client, models.User) {
	t.Helper()
	c, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := c.Register(ctx, RegisterRequest{Username: name, Email: name + "@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, err := c.Login(ctx, name+"@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return c, user
}

func TestAgainstLiveRouter(t *testing.T) {
	base, reg := newLiveServer(t)
	ctx := context.Background()
	alice, aliceUser := signedIn(t, base, "alice")
	bob, bobUser := signedIn(t, base, "bob")

	if _, err := reg.Friends.Befriend(ctx, aliceUser.ID, bobUser.ID); err != nil {
		t.Fatal(err)
	}

	conv, err := alice.Conversation(ctx, bobUser.ID)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if _, err := alice.SendMessage(ctx, conv.ID, "hi bob"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	messages, err := bob.Messages(ctx, conv.ID)
	if err != nil || len(messages) != 1 || messages[0].Content != "hi bob" {
		t.Fatalf("Messages = %+v, %v", messages, err)
	}

	var sel media.Selection
	if err := sel.Add(media.FromBytes("a.txt", []byte("hello attachment"))); err != nil {
		t.Fatal(err)
	}
	post, err := alice.CreatePost(ctx, "first post", models.VisibilityFriends, sel.Files())
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if len(post.Media) != 1 {
		t.Fatalf("media = %+v", post.Media)
	}

	feed, err := bob.Feed(ctx)
	if err != nil || len(feed) != 1 || feed[0].ID != post.ID {
		t.Fatalf("Feed = %+v, %v", feed, err)
	}

	state, err := bob.TogglePostLike(ctx, post.ID)
	if err != nil || !state.Liked || state.LikesCount != 1 {
		t.Fatalf("TogglePostLike = %+v, %v", state, err)
	}
	likers, err := alice.PostLikes(ctx, post.ID)
	if err != nil || len(likers) != 1 || likers[0].ID != bobUser.ID {
		t.Fatalf("PostLikes = %+v, %v", likers, err)
	}
	if n, err := alice.UnreadNotificationCount(ctx); err != nil || n != 1 {
		t.Fatalf("UnreadNotificationCount = %d, %v", n, err)
	}
	if n, err := alice.MarkAllNotificationsRead(ctx); err != nil || n != 1 {
		t.Fatalf("MarkAllNotificationsRead = %d, %v", n, err)
	}

	err = bob.DeletePost(ctx, post.ID)
	if StatusCode(err) != http.StatusForbidden {
		t.Fatalf("bob deleting alice's post: %v", err)
	}
	if err := alice.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if err := alice.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := alice.Me(ctx); StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("Me after logout: %v", err)
	}
}
