package controllers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"connectly/helper"
	"connectly/models"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

// MediaField is the multipart field carrying post attachments.
const MediaField = "media"

type PostController struct {
	posts *services.PostService
}

func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

func (pc *PostController) CreatePost(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}

	var files []*multipart.FileHeader
	form, err := c.MultipartForm()
	switch {
	case err == nil:
		files = form.File[MediaField]
	case errors.Is(err, http.ErrNotMultipart):
		// a text-only post may arrive url-encoded
	default:
		helper.Fail(c, helper.InvalidRequest("Invalid multipart form"))
		return
	}

	in := services.CreatePostInput{
		Content:    c.PostForm("content"),
		Visibility: models.Visibility(c.PostForm("visibility")),
	}
	post, err := pc.posts.Create(c.Request.Context(), userID, in, toUploads(files))
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusCreated, "Post created", post)
}

func toUploads(files []*multipart.FileHeader) []services.Upload {
	uploads := make([]services.Upload, 0, len(files))
	for _, file := range files {
		file := file
		uploads = append(uploads, services.Upload{
			Filename: file.Filename,
			Open: func() (io.ReadCloser, error) {
				return file.Open()
			},
		})
	}
	return uploads
}

func (pc *PostController) DeletePost(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	postID, err := helper.ObjectIDParam(c, "id")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	if err := pc.posts.Delete(c.Request.Context(), userID, postID); err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Post deleted", nil)
}

func (pc *PostController) GetFeed(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	posts, err := pc.posts.Feed(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Posts fetched", posts)
}

func (pc *PostController) GetPostsByUserId(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	authorID, err := helper.ObjectIDParam(c, "userId")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	posts, err := pc.posts.ByAuthor(c.Request.Context(), userID, authorID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Posts fetched", posts)
}

// GetMedia streams a stored attachment.
func (pc *PostController) GetMedia(c *gin.Context) {
	mediaID, err := helper.ObjectIDParam(c, "id")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	file, contentType, err := pc.posts.OpenMedia(c.Request.Context(), mediaID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		// headers are already out, nothing left to tell the client
		log.Printf("[%s] streaming media %s: %v", c.GetString(helper.RequestIDKey), mediaID.Hex(), err)
	}
}
