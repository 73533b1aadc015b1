package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"connectly/database"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload is one attached file of a post being created.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

type CreatePostInput struct {
	Content    string            `form:"content" validate:"max=5000"`
	Visibility models.Visibility `form:"visibility"`
}

type CreateCommentInput struct {
	PostID  string `json:"postId" validate:"required"`
	Content string `json:"content" validate:"max=2000"`
}

type PostService struct {
	posts          PostStore
	comments       CommentStore
	likes          LikeStore
	friends        FriendStore
	users          UserStore
	media          MediaStore
	mediaURLPrefix string
}

func NewPostService(posts PostStore, comments CommentStore, likes LikeStore, friends FriendStore, users UserStore, media MediaStore, mediaURLPrefix string) *PostService {
	return &PostService{
		posts:          posts,
		comments:       comments,
		likes:          likes,
		friends:        friends,
		users:          users,
		media:          media,
		mediaURLPrefix: strings.TrimRight(mediaURLPrefix, "/"),
	}
}

func (s *PostService) Create(ctx context.Context, callerID primitive.ObjectID, in CreatePostInput, uploads []Upload) (models.Post, error) {
	if err := helper.Validate(in); err != nil {
		return models.Post{}, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" && len(uploads) == 0 {
		return models.Post{}, helper.InvalidRequest("Post cannot be empty")
	}
	if len(uploads) > models.MaxPostMedia {
		return models.Post{}, helper.InvalidRequest(fmt.Sprintf("Maximum %d files allowed", models.MaxPostMedia))
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return models.Post{}, helper.InvalidRequest("Invalid visibility")
	}

	media := make([]models.Media, 0, len(uploads))
	for _, up := range uploads {
		m, err := s.store(ctx, up)
		if err != nil {
			s.discard(ctx, media)
			return models.Post{}, err
		}
		media = append(media, m)
	}

	ts := now()
	post := models.Post{
		ID:         primitive.NewObjectID(),
		Author:     callerID,
		Content:    content,
		Media:      media,
		Visibility: visibility,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.posts.Create(ctx, &post); err != nil {
		s.discard(ctx, media)
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *PostService) store(ctx context.Context, up Upload) (models.Media, error) {
	src, err := up.Open()
	if err != nil {
		return models.Media{}, fmt.Errorf("open upload %q: %w", up.Filename, err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return models.Media{}, fmt.Errorf("read upload %q: %w", up.Filename, err)
	}
	if n == 0 {
		return models.Media{}, helper.InvalidRequest("File " + up.Filename + " is empty")
	}
	contentType := http.DetectContentType(head[:n])

	id, err := s.media.Save(ctx, up.Filename, contentType, io.MultiReader(bytes.NewReader(head[:n]), src))
	if err != nil {
		return models.Media{}, fmt.Errorf("save upload %q: %w", up.Filename, err)
	}
	return models.Media{
		ID:          id,
		URL:         s.mediaURLPrefix + "/media/" + id.Hex(),
		ContentType: contentType,
		Filename:    up.Filename,
	}, nil
}

func (s *PostService) discard(ctx context.Context, media []models.Media) {
	for _, m := range media {
		if err := s.media.Delete(ctx, m.ID); err != nil {
			log.Printf("delete media %s: %v", m.ID.Hex(), err)
		}
	}
}

// Delete removes a post the caller authored, with its comments, likes and
// media.
func (s *PostService) Delete(ctx context.Context, callerID, postID primitive.ObjectID) error {
	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author != callerID {
		return helper.Forbidden("You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return helper.NotFound("Post not found")
		}
		return fmt.Errorf("delete post: %w", err)
	}

	commentIDs, err := s.comments.DeleteByPost(ctx, postID)
	if err != nil {
		log.Printf("delete comments of post %s: %v", postID.Hex(), err)
	}
	if err := s.likes.DeleteByTargets(ctx, models.TargetComment, commentIDs); err != nil {
		log.Printf("delete comment likes of post %s: %v", postID.Hex(), err)
	}
	if err := s.likes.DeleteByTargets(ctx, models.TargetPost, []primitive.ObjectID{postID}); err != nil {
		log.Printf("delete likes of post %s: %v", postID.Hex(), err)
	}
	s.discard(ctx, post.Media)
	return nil
}

// Feed returns every post the caller may see, newest first.
func (s *PostService) Feed(ctx context.Context, callerID primitive.ObjectID) ([]models.Post, error) {
	filter, err := s.filterFor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return posts, nil
}

// ByAuthor returns the author's posts the caller may see, newest first.
func (s *PostService) ByAuthor(ctx context.Context, callerID, authorID primitive.ObjectID) ([]models.Post, error) {
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, helper.NotFound("User not found")
		}
		return nil, fmt.Errorf("find author: %w", err)
	}
	filter, err := s.filterFor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	filter.Author = &authorID
	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) filterFor(ctx context.Context, callerID primitive.ObjectID) (database.PostFilter, error) {
	friends, err := s.friends.FriendIDs(ctx, callerID)
	if err != nil {
		return database.PostFilter{}, fmt.Errorf("list friends: %w", err)
	}
	return database.PostFilter{Viewer: callerID, Friends: friends}, nil
}

func (s *PostService) OpenMedia(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, string, error) {
	rc, contentType, err := s.media.Open(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, "", helper.NotFound("Media not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("open media: %w", err)
	}
	return rc, contentType, nil
}

func (s *PostService) CreateComment(ctx context.Context, callerID primitive.ObjectID, in CreateCommentInput) (models.Comment, error) {
	if err := helper.Validate(in); err != nil {
		return models.Comment{}, err
	}
	postID, err := helper.ParseObjectID(in.PostID, "postId")
	if err != nil {
		return models.Comment{}, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Comment{}, helper.InvalidRequest("Comment cannot be empty")
	}
	if _, err := s.visiblePost(ctx, callerID, postID); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Post:      postID,
		Author:    callerID,
		Content:   content,
		CreatedAt: now(),
	}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if err := s.posts.IncrementComments(ctx, postID, 1); err != nil {
		return models.Comment{}, fmt.Errorf("increment comments: %w", err)
	}
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, callerID, postID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.visiblePost(ctx, callerID, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment lets the comment's author or the post's author remove it.
func (s *PostService) DeleteComment(ctx context.Context, callerID, commentID primitive.ObjectID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if errors.Is(err, database.ErrNotFound) {
		return helper.NotFound("Comment not found")
	}
	if err != nil {
		return fmt.Errorf("find comment: %w", err)
	}
	if comment.Author != callerID {
		post, err := s.find(ctx, comment.Post)
		if err != nil && !helper.IsStatus(err, http.StatusNotFound) {
			return err
		}
		if err != nil || post.Author != callerID {
			return helper.Forbidden("You can only delete your own comments")
		}
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return helper.NotFound("Comment not found")
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	if err := s.posts.IncrementComments(ctx, comment.Post, -1); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("decrement comments: %w", err)
	}
	if err := s.likes.DeleteByTargets(ctx, models.TargetComment, []primitive.ObjectID{commentID}); err != nil {
		log.Printf("delete likes of comment %s: %v", commentID.Hex(), err)
	}
	return nil
}

func (s *PostService) find(ctx context.Context, postID primitive.ObjectID) (models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Post{}, helper.NotFound("Post not found")
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// visiblePost loads a post and hides it as NotFound when the caller may not
// see it.
func (s *PostService) visiblePost(ctx context.Context, callerID, postID primitive.ObjectID) (models.Post, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	ok, err := canView(ctx, s.friends, callerID, post)
	if err != nil {
		return models.Post{}, err
	}
	if !ok {
		return models.Post{}, helper.NotFound("Post not found")
	}
	return post, nil
}

func canView(ctx context.Context, friends FriendStore, viewer primitive.ObjectID, post models.Post) (bool, error) {
	switch {
	case post.Author == viewer, post.Visibility == models.VisibilityPublic:
		return true, nil
	case post.Visibility == models.VisibilityFriends:
		ok, err := friends.Exists(ctx, viewer, post.Author)
		if err != nil {
			return false, fmt.Errorf("check friendship: %w", err)
		}
		return ok, nil
	}
	return false, nil
}
