package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"connectly/client"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeAPI is driven by function fields; unset ones fail the test if called.
type fakeAPI struct {
	t          *testing.T
	me         func() (models.User, error)
	login      func(email, password string) (models.User, error)
	logout     func() error
	userLikes  func() (models.LikeIndex, error)
	feed       func() ([]models.Post, error)
	userPosts  func(primitive.ObjectID) ([]models.Post, error)
	toggleLike func(primitive.ObjectID) (models.LikeState, error)
	deletePost func(primitive.ObjectID) error
}

func (f *fakeAPI) missing(name string) {
	f.t.Helper()
	f.t.Fatalf("unexpected call to %s", name)
}

func (f *fakeAPI) Me(ctx context.Context) (models.User, error) {
	if f.me == nil {
		f.missing("Me")
	}
	return f.me()
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (models.User, error) {
	if f.login == nil {
		f.missing("Login")
	}
	return f.login(email, password)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	if f.logout == nil {
		f.missing("Logout")
	}
	return f.logout()
}

func (f *fakeAPI) UserLikes(ctx context.Context) (models.LikeIndex, error) {
	if f.userLikes == nil {
		f.missing("UserLikes")
	}
	return f.userLikes()
}

func (f *fakeAPI) Feed(ctx context.Context) ([]models.Post, error) {
	if f.feed == nil {
		f.missing("Feed")
	}
	return f.feed()
}

func (f *fakeAPI) UserPosts(ctx context.Context, id primitive.ObjectID) ([]models.Post, error) {
	if f.userPosts == nil {
		f.missing("UserPosts")
	}
	return f.userPosts(id)
}

func (f *fakeAPI) TogglePostLike(ctx context.Context, id primitive.ObjectID) (models.LikeState, error) {
	if f.toggleLike == nil {
		f.missing("TogglePostLike")
	}
	return f.toggleLike(id)
}

func (f *fakeAPI) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	if f.deletePost == nil {
		f.missing("DeletePost")
	}
	return f.deletePost(id)
}

func seededStore(t *testing.T, api *fakeAPI, posts ...models.Post) *Store {
	t.Helper()
	api.t = t
	api.feed = func() ([]models.Post, error) { return posts, nil }
	s := New(api)
	if err := s.FetchFeed(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoginAndLogout(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Username: "alice"}
	api := &fakeAPI{t: t,
		login: func(email, password string) (models.User, error) {
			if password != "right" {
				return models.User{}, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
			}
			return user, nil
		},
		logout:    func() error { return nil },
		userLikes: func() (models.LikeIndex, error) { return models.LikeIndex{PostIDs: []primitive.ObjectID{primitive.NewObjectID()}}, nil },
	}
	s := New(api)
	ctx := context.Background()

	if err := s.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected a login error")
	}
	if st := s.State(); st.Auth.Error != "Invalid email or password" || st.Auth.IsAuthenticated {
		t.Fatalf("unexpected auth state %+v", st.Auth)
	}

	if err := s.Login(ctx, "alice@example.com", "right"); err != nil {
		t.Fatal(err)
	}
	if err := s.FetchUserLikes(ctx); err != nil {
		t.Fatal(err)
	}
	st := s.State()
	if !st.Auth.IsAuthenticated || st.Auth.User.ID != user.ID || st.Auth.Error != "" || len(st.UserLikes.PostIDs) != 1 {
		t.Fatalf("unexpected state after login %+v", st)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	st = s.State()
	if st.Auth.IsAuthenticated || st.Auth.User != nil || st.Auth.Loading || len(st.UserLikes.PostIDs) != 0 {
		t.Fatalf("logout should reset state, got %+v", st)
	}
}

func TestLoginFallbackMessage(t *testing.T) {
	api := &fakeAPI{t: t, login: func(string, string) (models.User, error) {
		return models.User{}, errors.New("connection refused")
	}}
	s := New(api)
	_ = s.Login(context.Background(), "a@example.com", "x")
	if got := s.State().Auth.Error; got != "Login failed" {
		t.Fatalf("Auth.Error = %q", got)
	}
}

func TestFetchCurrentUserFailureClearsSession(t *testing.T) {
	api := &fakeAPI{t: t, me: func() (models.User, error) {
		return models.User{}, &client.APIError{StatusCode: http.StatusUnauthorized}
	}}
	s := New(api)
	if !s.State().Auth.Loading {
		t.Fatal("auth starts out loading")
	}
	_ = s.FetchCurrentUser(context.Background())
	if st := s.State(); st.Auth.Loading || st.Auth.IsAuthenticated {
		t.Fatalf("unexpected auth state %+v", st.Auth)
	}
}

func TestToggleLikeOptimisticThenServerState(t *testing.T) {
	post := models.Post{ID: primitive.NewObjectID(), LikesCount: 4}
	release := make(chan struct{})
	api := &fakeAPI{toggleLike: func(primitive.ObjectID) (models.LikeState, error) {
		<-release
		// someone else liked in the meantime
		return models.LikeState{Liked: true, LikesCount: 6}, nil
	}}
	s := seededStore(t, api, post)

	var wg sync.WaitGroup
	wg.Add(1)
	var toggleErr error
	go func() {
		defer wg.Done()
		toggleErr = s.ToggleLike(context.Background(), post.ID)
	}()

	waitFor(t, s, func(st State) bool { return st.Liking[post.ID] })
	st := s.State()
	if !st.IsLiked(post.ID) || st.Feed.Posts[0].LikesCount != 5 {
		t.Fatalf("optimistic phase not applied: liked=%v count=%d", st.IsLiked(post.ID), st.Feed.Posts[0].LikesCount)
	}
	if err := s.ToggleLike(context.Background(), post.ID); !errors.Is(err, ErrLikeInFlight) {
		t.Fatalf("duplicate toggle: %v", err)
	}

	close(release)
	wg.Wait()
	if toggleErr != nil {
		t.Fatal(toggleErr)
	}
	st = s.State()
	if !st.IsLiked(post.ID) || st.Feed.Posts[0].LikesCount != 6 || st.Liking[post.ID] {
		t.Fatalf("server state not applied: liked=%v count=%d liking=%v", st.IsLiked(post.ID), st.Feed.Posts[0].LikesCount, st.Liking[post.ID])
	}
}

func TestToggleLikeRollsBackOnFailure(t *testing.T) {
	post := models.Post{ID: primitive.NewObjectID(), LikesCount: 3}
	api := &fakeAPI{toggleLike: func(primitive.ObjectID) (models.LikeState, error) {
		return models.LikeState{}, &client.APIError{StatusCode: http.StatusInternalServerError}
	}}
	s := seededStore(t, api, post)
	s.update(func(st *State) { st.UserLikes.PostIDs = []primitive.ObjectID{post.ID} })

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })
	defer unsubscribe()

	if err := s.ToggleLike(context.Background(), post.ID); err == nil {
		t.Fatal("expected the toggle to fail")
	}
	st := s.State()
	if !st.IsLiked(post.ID) || st.Feed.Posts[0].LikesCount != 3 || st.Liking[post.ID] {
		t.Fatalf("not rolled back: liked=%v count=%d", st.IsLiked(post.ID), st.Feed.Posts[0].LikesCount)
	}
	if len(seen) != 2 {
		t.Fatalf("expected two transitions, saw %d", len(seen))
	}
	if seen[0].IsLiked(post.ID) || seen[0].Feed.Posts[0].LikesCount != 2 {
		t.Fatalf("first transition should be the provisional unlike, got %+v", seen[0].Feed.Posts[0])
	}
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	post := models.Post{ID: primitive.NewObjectID(), LikesCount: 0}
	liked := false
	api := &fakeAPI{toggleLike: func(primitive.ObjectID) (models.LikeState, error) {
		liked = !liked
		count := int64(0)
		if liked {
			count = 1
		}
		return models.LikeState{Liked: liked, LikesCount: count}, nil
	}}
	s := seededStore(t, api, post)
	ctx := context.Background()

	_ = s.ToggleLike(ctx, post.ID)
	_ = s.ToggleLike(ctx, post.ID)
	st := s.State()
	if st.IsLiked(post.ID) || st.Feed.Posts[0].LikesCount != 0 {
		t.Fatalf("expected the original state, liked=%v count=%d", st.IsLiked(post.ID), st.Feed.Posts[0].LikesCount)
	}
}

func TestDeletePost(t *testing.T) {
	me := models.User{ID: primitive.NewObjectID()}
	keep := models.Post{ID: primitive.NewObjectID(), Author: me.ID}
	gone := models.Post{ID: primitive.NewObjectID(), Author: me.ID}

	var deleted []primitive.ObjectID
	feedCalls := 0
	api := &fakeAPI{
		t:     t,
		login: func(string, string) (models.User, error) { return me, nil },
		deletePost: func(id primitive.ObjectID) error {
			deleted = append(deleted, id)
			return nil
		},
		userPosts: func(id primitive.ObjectID) ([]models.Post, error) {
			if id != me.ID {
				t.Fatalf("profile refetch for %s", id.Hex())
			}
			return []models.Post{keep}, nil
		},
	}
	api.feed = func() ([]models.Post, error) {
		feedCalls++
		if feedCalls == 1 {
			return []models.Post{keep, gone}, nil
		}
		return []models.Post{keep}, nil
	}
	s := New(api)
	ctx := context.Background()
	_ = s.Login(ctx, "me@example.com", "pw")
	_ = s.FetchFeed(ctx)

	ok, err := s.DeletePost(ctx, gone.ID, func() bool { return false })
	if ok || err != nil || len(deleted) != 0 {
		t.Fatalf("declined confirm should do nothing: %v %v %v", ok, err, deleted)
	}

	ok, err = s.DeletePost(ctx, gone.ID, func() bool { return true })
	if !ok || err != nil {
		t.Fatalf("DeletePost = %v, %v", ok, err)
	}
	st := s.State()
	if len(st.Feed.Posts) != 1 || st.Feed.Posts[0].ID != keep.ID {
		t.Fatalf("feed = %+v", st.Feed.Posts)
	}
	if feedCalls != 2 || st.Profile.UserID != me.ID || len(st.Profile.Posts) != 1 {
		t.Fatalf("expected feed and profile refetch, feedCalls=%d profile=%+v", feedCalls, st.Profile)
	}
}

func TestDeletePostFailureKeepsPost(t *testing.T) {
	post := models.Post{ID: primitive.NewObjectID()}
	api := &fakeAPI{deletePost: func(primitive.ObjectID) error {
		return &client.APIError{StatusCode: http.StatusForbidden, Message: "You can only delete your own posts"}
	}}
	s := seededStore(t, api, post)

	ok, err := s.DeletePost(context.Background(), post.ID, nil)
	if ok || client.Message(err, "Failed to delete post") != "You can only delete your own posts" {
		t.Fatalf("DeletePost = %v, %v", ok, err)
	}
	if len(s.State().Feed.Posts) != 1 {
		t.Fatal("post should stay in the feed")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	post := models.Post{ID: primitive.NewObjectID(), LikesCount: 1}
	s := seededStore(t, &fakeAPI{}, post)

	snap := s.State()
	snap.Feed.Posts[0].LikesCount = 100
	if s.State().Feed.Posts[0].LikesCount != 1 {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func waitFor(t *testing.T, s *Store, cond func(State) bool) {
	t.Helper()
	done := make(chan struct{})
	var once sync.Once
	unsubscribe := s.Subscribe(func(st State) {
		if cond(st) {
			once.Do(func() { close(done) })
		}
	})
	defer unsubscribe()
	if cond(s.State()) {
		return
	}
	<-done
}
