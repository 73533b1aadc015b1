package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Friend is an unordered edge between two users. Users is stored sorted so
// that PairKey is the same whichever side created it.
type Friend struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id"`
	Users     []primitive.ObjectID `json:"users" bson:"users"`
	PairKey   string               `json:"-" bson:"pairKey"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
}

// PairKey normalizes an unordered pair of ids into a single key.
func PairKey(a, b primitive.ObjectID) string {
	ha, hb := a.Hex(), b.Hex()
	if hb < ha {
		ha, hb = hb, ha
	}
	return ha + ":" + hb
}

// SortedPair returns a and b ordered by hex value.
func SortedPair(a, b primitive.ObjectID) []primitive.ObjectID {
	if b.Hex() < a.Hex() {
		return []primitive.ObjectID{b, a}
	}
	return []primitive.ObjectID{a, b}
}
