package controllers

import (
	"net/http"

	"connectly/helper"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	posts *services.PostService
}

func NewCommentController(posts *services.PostService) *CommentController {
	return &CommentController{posts: posts}
}

func (cc *CommentController) AddComment(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	var in services.CreateCommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		helper.Fail(c, helper.InvalidRequest("Invalid request body"))
		return
	}
	comment, err := cc.posts.CreateComment(c.Request.Context(), userID, in)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusCreated, "Comment added", comment)
}

func (cc *CommentController) GetComments(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	postID, err := helper.ObjectIDParam(c, "postId")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	comments, err := cc.posts.Comments(c.Request.Context(), userID, postID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Comments fetched", comments)
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	commentID, err := helper.ObjectIDParam(c, "id")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	if err := cc.posts.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Comment deleted", nil)
}
