package database

import (
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostFilter selects the posts a viewer is allowed to see, optionally limited
// to one author.
type PostFilter struct {
	Viewer  primitive.ObjectID
	Friends []primitive.ObjectID
	Author  *primitive.ObjectID
}

// Matches applies the same rule as the bson form, for stores that filter in
// memory.
func (f PostFilter) Matches(p models.Post) bool {
	if f.Author != nil && p.Author != *f.Author {
		return false
	}
	if p.Author == f.Viewer || p.Visibility == models.VisibilityPublic {
		return true
	}
	if p.Visibility == models.VisibilityFriends {
		for _, id := range f.Friends {
			if id == p.Author {
				return true
			}
		}
	}
	return false
}

func (f PostFilter) bson() bson.M {
	friends := f.Friends
	if friends == nil {
		friends = []primitive.ObjectID{}
	}
	filter := bson.M{
		"$or": []bson.M{
			{"author": f.Viewer},
			{"visibility": models.VisibilityPublic},
			{"visibility": models.VisibilityFriends, "author": bson.M{"$in": friends}},
		},
	}
	if f.Author != nil {
		filter["author"] = *f.Author
	}
	return filter
}
