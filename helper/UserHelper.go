package helper

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDKey is where middlewares.RequireAuth stores the caller's id.
const UserIDKey = "userId"

// CurrentUserID returns the authenticated caller, or Unauthorized when the
// auth middleware did not run or found nobody.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, error) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return primitive.NilObjectID, Unauthorized("User is unauthorized")
	}
	id, ok := v.(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, Unauthorized("User is unauthorized")
	}
	return id, nil
}

// ObjectIDParam parses a hex id path parameter.
func ObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	return ParseObjectID(c.Param(name), name)
}

func ParseObjectID(hex, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, InvalidRequest("Invalid " + name)
	}
	return id, nil
}
