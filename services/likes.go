package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"connectly/database"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LikeService struct {
	likes         LikeStore
	posts         PostStore
	comments      CommentStore
	friends       FriendStore
	users         UserStore
	notifications NotificationStore
}

func NewLikeService(likes LikeStore, posts PostStore, comments CommentStore, friends FriendStore, users UserStore, notifications NotificationStore) *LikeService {
	return &LikeService{
		likes:         likes,
		posts:         posts,
		comments:      comments,
		friends:       friends,
		users:         users,
		notifications: notifications,
	}
}

// Toggle flips the caller's like on a target. The like record decides the
// direction; the counter only moves, by $inc, when the record changed, so
// concurrent toggles cannot drift it.
func (s *LikeService) Toggle(ctx context.Context, callerID primitive.ObjectID, targetType models.TargetType, targetID primitive.ObjectID) (models.LikeState, error) {
	owner, err := s.target(ctx, callerID, targetType, targetID)
	if err != nil {
		return models.LikeState{}, err
	}

	removed, err := s.likes.Remove(ctx, callerID, targetType, targetID)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("remove like: %w", err)
	}
	if removed {
		count, err := s.increment(ctx, targetType, targetID, -1)
		if err != nil {
			return models.LikeState{}, err
		}
		return models.LikeState{Liked: false, LikesCount: count}, nil
	}

	like := models.Like{
		ID:         primitive.NewObjectID(),
		User:       callerID,
		TargetType: targetType,
		Target:     targetID,
		CreatedAt:  now(),
	}
	err = s.likes.Insert(ctx, &like)
	if errors.Is(err, database.ErrDuplicateKey) {
		// A concurrent toggle inserted first and already counted it.
		count, err := s.increment(ctx, targetType, targetID, 0)
		if err != nil {
			return models.LikeState{}, err
		}
		return models.LikeState{Liked: true, LikesCount: count}, nil
	}
	if err != nil {
		return models.LikeState{}, fmt.Errorf("insert like: %w", err)
	}
	count, err := s.increment(ctx, targetType, targetID, 1)
	if err != nil {
		return models.LikeState{}, err
	}

	if owner != callerID {
		s.notify(ctx, callerID, owner, targetType, targetID)
	}
	return models.LikeState{Liked: true, LikesCount: count}, nil
}

// LikedBy lists the users who liked a post the caller can see.
func (s *LikeService) LikedBy(ctx context.Context, callerID, postID primitive.ObjectID) ([]models.PublicProfile, error) {
	if _, err := s.target(ctx, callerID, models.TargetPost, postID); err != nil {
		return nil, err
	}
	ids, err := s.likes.UsersByTarget(ctx, models.TargetPost, postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	profiles, err := s.users.FindPublicProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	out := make([]models.PublicProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Index returns every post and comment the caller has liked.
func (s *LikeService) Index(ctx context.Context, callerID primitive.ObjectID) (models.LikeIndex, error) {
	likes, err := s.likes.ListByUser(ctx, callerID)
	if err != nil {
		return models.LikeIndex{}, fmt.Errorf("list likes: %w", err)
	}
	index := models.LikeIndex{PostIDs: []primitive.ObjectID{}, CommentIDs: []primitive.ObjectID{}}
	for _, l := range likes {
		switch l.TargetType {
		case models.TargetPost:
			index.PostIDs = append(index.PostIDs, l.Target)
		case models.TargetComment:
			index.CommentIDs = append(index.CommentIDs, l.Target)
		}
	}
	return index, nil
}

// target checks the target exists and is visible to the caller, and returns
// its author.
func (s *LikeService) target(ctx context.Context, callerID primitive.ObjectID, targetType models.TargetType, targetID primitive.ObjectID) (primitive.ObjectID, error) {
	postID := targetID
	var owner primitive.ObjectID
	switch targetType {
	case models.TargetComment:
		comment, err := s.comments.FindByID(ctx, targetID)
		if errors.Is(err, database.ErrNotFound) {
			return primitive.NilObjectID, helper.NotFound("Comment not found")
		}
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("find comment: %w", err)
		}
		postID, owner = comment.Post, comment.Author
	case models.TargetPost:
	default:
		return primitive.NilObjectID, helper.InvalidRequest("Invalid like target")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if errors.Is(err, database.ErrNotFound) {
		return primitive.NilObjectID, helper.NotFound("Post not found")
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("find post: %w", err)
	}
	ok, err := canView(ctx, s.friends, callerID, post)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, helper.NotFound("Post not found")
	}
	if targetType == models.TargetPost {
		owner = post.Author
	}
	return owner, nil
}

func (s *LikeService) increment(ctx context.Context, targetType models.TargetType, targetID primitive.ObjectID, delta int64) (int64, error) {
	var (
		count int64
		err   error
	)
	if targetType == models.TargetComment {
		count, err = s.comments.IncrementLikes(ctx, targetID, delta)
	} else {
		count, err = s.posts.IncrementLikes(ctx, targetID, delta)
	}
	if errors.Is(err, database.ErrNotFound) {
		return 0, helper.NotFound("Target not found")
	}
	if err != nil {
		return 0, fmt.Errorf("update like counter: %w", err)
	}
	return count, nil
}

func (s *LikeService) notify(ctx context.Context, actor, recipient primitive.ObjectID, targetType models.TargetType, targetID primitive.ObjectID) {
	n := models.Notification{
		ID:         primitive.NewObjectID(),
		Recipient:  recipient,
		Actor:      actor,
		Type:       models.NotificationLike,
		TargetType: targetType,
		Target:     targetID,
		Message:    "liked your " + string(targetType),
		CreatedAt:  now(),
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		log.Printf("create like notification: %v", err)
	}
}
