// Package state holds the client application state: session, like index,
// feed and the profile being viewed. It changes only through the Store's
// action methods, and subscribers see a snapshot after every transition.
package state

import (
	"context"
	"errors"
	"sync"

	"connectly/client"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrLikeInFlight = errors.New("a like toggle for this post is already in flight")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// API is the part of client.Client the store drives.
type API interface {
	Me(ctx context.Context) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	UserLikes(ctx context.Context) (models.LikeIndex, error)
	Feed(ctx context.Context) ([]models.Post, error)
	UserPosts(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	TogglePostLike(ctx context.Context, postID primitive.ObjectID) (models.LikeState, error)
	DeletePost(ctx context.Context, postID primitive.ObjectID) error
}

type AuthState struct {
	User            *models.User
	IsAuthenticated bool
	Loading         bool
	Error           string
}

type FeedState struct {
	Posts   []models.Post
	Loading bool
	Error   string
}

type ProfileState struct {
	UserID  primitive.ObjectID
	Posts   []models.Post
	Loading bool
	Error   string
}

type State struct {
	Auth      AuthState
	UserLikes models.LikeIndex
	Feed      FeedState
	Profile   ProfileState
	// Liking marks posts with a like toggle in flight.
	Liking map[primitive.ObjectID]bool
}

func initialState() State {
	return State{
		Auth:      AuthState{Loading: true},
		UserLikes: models.LikeIndex{PostIDs: []primitive.ObjectID{}, CommentIDs: []primitive.ObjectID{}},
		Liking:    map[primitive.ObjectID]bool{},
	}
}

// clone copies everything a subscriber could otherwise mutate.
func (s State) clone() State {
	out := s
	if s.Auth.User != nil {
		u := *s.Auth.User
		out.Auth.User = &u
	}
	out.UserLikes = models.LikeIndex{
		PostIDs:    append([]primitive.ObjectID{}, s.UserLikes.PostIDs...),
		CommentIDs: append([]primitive.ObjectID{}, s.UserLikes.CommentIDs...),
	}
	out.Feed.Posts = append([]models.Post(nil), s.Feed.Posts...)
	out.Profile.Posts = append([]models.Post(nil), s.Profile.Posts...)
	out.Liking = make(map[primitive.ObjectID]bool, len(s.Liking))
	for k, v := range s.Liking {
		out.Liking[k] = v
	}
	return out
}

// IsLiked reports whether the post is in the caller's like index.
func (s State) IsLiked(postID primitive.ObjectID) bool {
	return indexOf(s.UserLikes.PostIDs, postID) >= 0
}

type Store struct {
	api API

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

func New(api API) *Store {
	return &Store{api: api, state: initialState(), subs: map[int]func(State){}}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every transition and
// returns a func that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// update applies one transition under the lock and notifies subscribers
// outside it.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

func (s *Store) FetchCurrentUser(ctx context.Context) error {
	s.update(func(st *State) { st.Auth.Loading = true })
	user, err := s.api.Me(ctx)
	s.update(func(st *State) {
		st.Auth.Loading = false
		if err != nil {
			st.Auth.User = nil
			st.Auth.IsAuthenticated = false
			return
		}
		st.Auth.User = &user
		st.Auth.IsAuthenticated = true
	})
	return err
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	s.update(func(st *State) {
		st.Auth.Loading = true
		st.Auth.Error = ""
	})
	user, err := s.api.Login(ctx, email, password)
	s.update(func(st *State) {
		st.Auth.Loading = false
		if err != nil {
			st.Auth.Error = client.Message(err, "Login failed")
			return
		}
		st.Auth.User = &user
		st.Auth.IsAuthenticated = true
	})
	return err
}

// Logout ends the session and drops everything the store knew about it.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.update(func(st *State) { st.Auth.Error = "Logout failed" })
		return err
	}
	s.update(func(st *State) {
		*st = initialState()
		st.Auth.Loading = false
	})
	return nil
}

func (s *Store) ResetError() {
	s.update(func(st *State) { st.Auth.Error = "" })
}

func (s *Store) FetchUserLikes(ctx context.Context) error {
	index, err := s.api.UserLikes(ctx)
	if err != nil {
		return err
	}
	if index.PostIDs == nil {
		index.PostIDs = []primitive.ObjectID{}
	}
	if index.CommentIDs == nil {
		index.CommentIDs = []primitive.ObjectID{}
	}
	s.update(func(st *State) { st.UserLikes = index })
	return nil
}

func (s *Store) FetchFeed(ctx context.Context) error {
	s.update(func(st *State) {
		st.Feed.Loading = true
		st.Feed.Error = ""
	})
	posts, err := s.api.Feed(ctx)
	s.update(func(st *State) {
		st.Feed.Loading = false
		if err != nil {
			st.Feed.Error = client.Message(err, "Failed to load feed")
			return
		}
		st.Feed.Posts = posts
	})
	return err
}

func (s *Store) FetchProfilePosts(ctx context.Context, userID primitive.ObjectID) error {
	s.update(func(st *State) {
		if st.Profile.UserID != userID {
			st.Profile.Posts = nil
		}
		st.Profile.UserID = userID
		st.Profile.Loading = true
		st.Profile.Error = ""
	})
	posts, err := s.api.UserPosts(ctx, userID)
	s.update(func(st *State) {
		if st.Profile.UserID != userID {
			// another profile was opened meanwhile
			return
		}
		st.Profile.Loading = false
		if err != nil {
			st.Profile.Error = client.Message(err, "Failed to load posts")
			return
		}
		st.Profile.Posts = posts
	})
	return err
}

// ToggleLike flips the like on a post in two phases. The flag and counters
// change at once; the server's answer then either confirms them, replacing
// the counter with the server count, or they are put back as they were.
func (s *Store) ToggleLike(ctx context.Context, postID primitive.ObjectID) error {
	var (
		wasLiked bool
		busy     bool
		before   = map[*[]models.Post]int64{}
	)
	s.update(func(st *State) {
		if st.Liking[postID] {
			busy = true
			return
		}
		st.Liking[postID] = true
		wasLiked = st.IsLiked(postID)
		setLiked(st, postID, !wasLiked)

		delta := int64(1)
		if wasLiked {
			delta = -1
		}
		for _, posts := range postLists(st) {
			if i := findPost(*posts, postID); i >= 0 {
				before[posts] = (*posts)[i].LikesCount
				(*posts)[i].LikesCount += delta
			}
		}
	})
	if busy {
		return ErrLikeInFlight
	}

	result, err := s.api.TogglePostLike(ctx, postID)

	s.update(func(st *State) {
		delete(st.Liking, postID)
		if err != nil {
			setLiked(st, postID, wasLiked)
			for _, posts := range postLists(st) {
				if i := findPost(*posts, postID); i >= 0 {
					if count, ok := before[posts]; ok {
						(*posts)[i].LikesCount = count
					}
				}
			}
			return
		}
		setLiked(st, postID, result.Liked)
		for _, posts := range postLists(st) {
			if i := findPost(*posts, postID); i >= 0 {
				(*posts)[i].LikesCount = result.LikesCount
			}
		}
	})
	return err
}

// DeletePost asks confirm first, then deletes on the server, drops the post
// from the local lists and reloads the feed and the caller's own profile.
// It reports whether the post was deleted.
func (s *Store) DeletePost(ctx context.Context, postID primitive.ObjectID, confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}
	if err := s.api.DeletePost(ctx, postID); err != nil {
		return false, err
	}

	var me *models.User
	s.update(func(st *State) {
		for _, posts := range postLists(st) {
			if i := findPost(*posts, postID); i >= 0 {
				*posts = append((*posts)[:i:i], (*posts)[i+1:]...)
			}
		}
		if st.Auth.User != nil {
			u := *st.Auth.User
			me = &u
		}
	})

	// refetch failures land in the feed/profile error fields
	_ = s.FetchFeed(ctx)
	if me != nil {
		_ = s.FetchProfilePosts(ctx, me.ID)
	}
	return true, nil
}

func postLists(st *State) []*[]models.Post {
	return []*[]models.Post{&st.Feed.Posts, &st.Profile.Posts}
}

func setLiked(st *State, postID primitive.ObjectID, liked bool) {
	i := indexOf(st.UserLikes.PostIDs, postID)
	switch {
	case liked && i < 0:
		st.UserLikes.PostIDs = append(st.UserLikes.PostIDs, postID)
	case !liked && i >= 0:
		st.UserLikes.PostIDs = append(st.UserLikes.PostIDs[:i:i], st.UserLikes.PostIDs[i+1:]...)
	}
}

func indexOf(ids []primitive.ObjectID, id primitive.ObjectID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func findPost(posts []models.Post, id primitive.ObjectID) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
