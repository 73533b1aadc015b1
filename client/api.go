package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"connectly/client/media"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (models.User, error) {
	return call[models.User](ctx, c, http.MethodPost, "/user/register", in)
}

func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	return call[models.User](ctx, c, http.MethodPost, "/user/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/user/logout", nil)
	return err
}

func (c *Client) RefreshToken(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, refreshPath, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	return call[models.User](ctx, c, http.MethodGet, "/user/me", nil)
}

func (c *Client) UserProfile(ctx context.Context, userID primitive.ObjectID) (models.PublicProfile, error) {
	return call[models.PublicProfile](ctx, c, http.MethodGet, "/user/"+userID.Hex(), nil)
}

func (c *Client) Conversations(ctx context.Context) ([]models.ConversationSummary, error) {
	return call[[]models.ConversationSummary](ctx, c, http.MethodGet, "/conversation/all", nil)
}

// Conversation gets or creates the conversation with a friend.
func (c *Client) Conversation(ctx context.Context, otherUserID primitive.ObjectID) (models.Conversation, error) {
	return call[models.Conversation](ctx, c, http.MethodGet, "/conversation/"+otherUserID.Hex(), nil)
}

func (c *Client) Messages(ctx context.Context, conversationID primitive.ObjectID) ([]models.MessageView, error) {
	return call[[]models.MessageView](ctx, c, http.MethodGet, "/message/"+conversationID.Hex(), nil)
}

func (c *Client) SendMessage(ctx context.Context, conversationID primitive.ObjectID, content string) (models.Message, error) {
	return call[models.Message](ctx, c, http.MethodPost, "/message/send", map[string]string{
		"conversationId": conversationID.Hex(),
		"content":        content,
	})
}

// CreatePost uploads content and files as one multipart form. More than
// media.MaxFiles files is refused before anything is sent.
func (c *Client) CreatePost(ctx context.Context, content string, visibility models.Visibility, files []media.File) (models.Post, error) {
	var post models.Post
	if len(files) > media.MaxFiles {
		return post, media.ErrTooManyFiles
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("content", content); err != nil {
		return post, err
	}
	if visibility != "" {
		if err := w.WriteField("visibility", string(visibility)); err != nil {
			return post, err
		}
	}
	for _, f := range files {
		if err := writeFile(w, f); err != nil {
			return post, err
		}
	}
	if err := w.Close(); err != nil {
		return post, err
	}

	r := request{
		method:      http.MethodPost,
		path:        "/post/create",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}
	err := c.do(ctx, r, &post)
	return post, err
}

func writeFile(w *multipart.Writer, f media.File) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()
	part, err := w.CreateFormFile("media", f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	return nil
}

func (c *Client) DeletePost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, "/post/delete/"+postID.Hex(), nil)
	return err
}

func (c *Client) Feed(ctx context.Context) ([]models.Post, error) {
	return call[[]models.Post](ctx, c, http.MethodGet, "/post/feed", nil)
}

func (c *Client) UserPosts(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return call[[]models.Post](ctx, c, http.MethodGet, "/post/user/"+userID.Hex(), nil)
}

func (c *Client) AddComment(ctx context.Context, postID primitive.ObjectID, content string) (models.Comment, error) {
	return call[models.Comment](ctx, c, http.MethodPost, "/comment/create", map[string]string{
		"postId":  postID.Hex(),
		"content": content,
	})
}

func (c *Client) Comments(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return call[[]models.Comment](ctx, c, http.MethodGet, "/comment/post/"+postID.Hex(), nil)
}

func (c *Client) DeleteComment(ctx context.Context, commentID primitive.ObjectID) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, "/comment/delete/"+commentID.Hex(), nil)
	return err
}

func (c *Client) TogglePostLike(ctx context.Context, postID primitive.ObjectID) (models.LikeState, error) {
	return call[models.LikeState](ctx, c, http.MethodPost, "/like/toggle/post/"+postID.Hex(), nil)
}

func (c *Client) ToggleCommentLike(ctx context.Context, commentID primitive.ObjectID) (models.LikeState, error) {
	return call[models.LikeState](ctx, c, http.MethodPost, "/like/toggle/comment/"+commentID.Hex(), nil)
}

func (c *Client) PostLikes(ctx context.Context, postID primitive.ObjectID) ([]models.PublicProfile, error) {
	out, err := call[struct {
		Users []models.PublicProfile `json:"users"`
	}](ctx, c, http.MethodGet, "/like/get/post/"+postID.Hex(), nil)
	return out.Users, err
}

func (c *Client) UserLikes(ctx context.Context) (models.LikeIndex, error) {
	return call[models.LikeIndex](ctx, c, http.MethodGet, "/like/all", nil)
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	return call[[]models.Notification](ctx, c, http.MethodGet, "/notification/all", nil)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/notification/read/"+id.Hex(), nil)
	return err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	out, err := call[struct {
		Updated int64 `json:"updated"`
	}](ctx, c, http.MethodPost, "/notification/read/all", nil)
	return out.Updated, err
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int64, error) {
	out, err := call[struct {
		Count int64 `json:"count"`
	}](ctx, c, http.MethodGet, "/notification/count/unread", nil)
	return out.Count, err
}

func (c *Client) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, "/notification/"+id.Hex(), nil)
	return err
}

func (c *Client) DeleteAllNotifications(ctx context.Context) (int64, error) {
	out, err := call[struct {
		Deleted int64 `json:"deleted"`
	}](ctx, c, http.MethodDelete, "/notification/all", nil)
	return out.Deleted, err
}
