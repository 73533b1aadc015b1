package middlewares

import (
	"context"
	"errors"
	"net/http"

	"connectly/auth"
	"connectly/helper"
	"connectly/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

type UserLookup interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// RequireAuth resolves the caller from the access cookie and checks the user
// still exists. The caller's id is stored under helper.UserIDKey.
func RequireAuth(authn *auth.Authenticator, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(AccessCookie)
		if err != nil || tokenString == "" {
			helper.Fail(c, helper.Unauthorized("User is unauthorized"))
			return
		}

		claims, err := authn.ValidateAccessToken(tokenString)
		if err != nil {
			message := "Invalid access token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Access token expired"
			}
			helper.Fail(c, helper.Unauthorized(message))
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			helper.Fail(c, helper.Unauthorized("Invalid access token"))
			return
		}

		// check if the attached user exists
		if _, err := users.Get(c.Request.Context(), userID); err != nil {
			if helper.IsStatus(err, http.StatusNotFound) {
				err = helper.Unauthorized("User is unauthorized")
			}
			helper.Fail(c, err)
			return
		}

		c.Set(helper.UserIDKey, userID)
		c.Next()
	}
}
