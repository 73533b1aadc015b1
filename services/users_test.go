package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"connectly/models"
)

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	_, err := env.reg.Users.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "ALICE@example.com",
		Password: "password123",
	})
	expectStatus(t, err, http.StatusBadRequest)
}

func TestRegisterValidates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reg.Users.Register(context.Background(), RegisterInput{Username: "al", Email: "nope", Password: "short"})
	expectStatus(t, err, http.StatusBadRequest)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	ctx := context.Background()

	got, err := env.reg.Users.Authenticate(ctx, LoginInput{Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("expected %s, got %s", alice.ID.Hex(), got.ID.Hex())
	}

	_, err = env.reg.Users.Authenticate(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	expectStatus(t, err, http.StatusUnauthorized)

	_, err = env.reg.Users.Authenticate(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestBefriendRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	a, b := env.user(t, "alice"), env.user(t, "bob")
	env.befriend(t, a, b)

	_, err := env.reg.Friends.Befriend(context.Background(), b.ID, a.ID)
	expectStatus(t, err, http.StatusBadRequest)
}

func TestProfileIgnoresAccountVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	if alice.Visibility != models.VisibilityPublic {
		t.Fatalf("new account visibility = %q", alice.Visibility)
	}

	profile, err := env.reg.Users.Profile(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.ID != alice.ID || profile.Username != "alice" {
		t.Fatalf("profile = %+v", profile)
	}
	raw, _ := json.Marshal(profile)
	if strings.Contains(string(raw), "visibility") || strings.Contains(string(raw), "email") {
		t.Fatalf("profile leaks account fields: %s", raw)
	}
}
