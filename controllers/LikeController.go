package controllers

import (
	"net/http"

	"connectly/helper"
	"connectly/models"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

type LikeController struct {
	likes *services.LikeService
}

func NewLikeController(likes *services.LikeService) *LikeController {
	return &LikeController{likes: likes}
}

// Toggle returns the handler flipping the caller's like on a target of the
// given type.
func (lc *LikeController) Toggle(targetType models.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := helper.CurrentUserID(c)
		if err != nil {
			helper.Fail(c, err)
			return
		}
		targetID, err := helper.ObjectIDParam(c, "id")
		if err != nil {
			helper.Fail(c, err)
			return
		}
		state, err := lc.likes.Toggle(c.Request.Context(), userID, targetType, targetID)
		if err != nil {
			helper.Fail(c, err)
			return
		}
		message := "Unliked"
		if state.Liked {
			message = "Liked"
		}
		helper.Respond(c, http.StatusOK, message, state)
	}
}

func (lc *LikeController) GetPostLikes(c *gin.Context) {
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
	users, err := lc.likes.LikedBy(c.Request.Context(), userID, postID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Likes fetched", gin.H{"users": users})
}

func (lc *LikeController) GetUserLikes(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	index, err := lc.likes.Index(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Likes fetched", index)
}
