package controllers

import (
	"net/http"
	"time"

	"connectly/auth"
	"connectly/helper"
	"connectly/middlewares"
	"connectly/models"
	"connectly/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserController struct {
	users        *services.UserService
	authn        *auth.Authenticator
	secureCookie bool
}

func NewUserController(users *services.UserService, authn *auth.Authenticator, secureCookie bool) *UserController {
	return &UserController{users: users, authn: authn, secureCookie: secureCookie}
}

func (uc *UserController) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		helper.Fail(c, helper.InvalidRequest("Invalid request body"))
		return
	}
	user, err := uc.users.Register(c.Request.Context(), in)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusCreated, "User registered", user)
}

func (uc *UserController) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		helper.Fail(c, helper.InvalidRequest("Invalid request body"))
		return
	}
	user, err := uc.users.Authenticate(c.Request.Context(), in)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	if err := uc.issueSession(c, user); err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Logged in", user)
}

// RefreshToken trades a valid refresh cookie for a fresh pair of cookies.
func (uc *UserController) RefreshToken(c *gin.Context) {
	tokenString, err := c.Cookie(middlewares.RefreshCookie)
	if err != nil || tokenString == "" {
		helper.Fail(c, helper.Unauthorized("Refresh token missing"))
		return
	}
	claims, err := uc.authn.ValidateRefreshToken(tokenString)
	if err != nil {
		helper.Fail(c, helper.Unauthorized("Invalid refresh token"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		helper.Fail(c, helper.Unauthorized("Invalid refresh token"))
		return
	}
	user, err := uc.users.Get(c.Request.Context(), userID)
	if err != nil {
		if helper.IsStatus(err, http.StatusNotFound) {
			err = helper.Unauthorized("Invalid refresh token")
		}
		helper.Fail(c, err)
		return
	}
	if err := uc.issueSession(c, user); err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Token refreshed", nil)
}

func (uc *UserController) Logout(c *gin.Context) {
	uc.setCookie(c, middlewares.AccessCookie, "", -1)
	uc.setCookie(c, middlewares.RefreshCookie, "", -1)
	helper.Respond(c, http.StatusOK, "Successfully logged out", nil)
}

func (uc *UserController) Me(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	user, err := uc.users.Get(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "User fetched", user)
}

func (uc *UserController) GetUserById(c *gin.Context) {
	userID, err := helper.ObjectIDParam(c, "id")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	profile, err := uc.users.Profile(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "User fetched", profile)
}

func (uc *UserController) issueSession(c *gin.Context, user models.User) error {
	access, err := uc.authn.GenerateAccessToken(user.ID.Hex())
	if err != nil {
		return err
	}
	refresh, err := uc.authn.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		return err
	}
	uc.setCookie(c, middlewares.AccessCookie, access, uc.authn.AccessTTL())
	uc.setCookie(c, middlewares.RefreshCookie, refresh, uc.authn.RefreshTTL())
	return nil
}

func (uc *UserController) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", uc.secureCookie, true)
}
