package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) ApiResponse {
	t.Helper()
	var resp ApiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestFailWritesApiError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(c, fmt.Errorf("wrapped: %w", Forbidden("Access denied")))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.StatusCode != http.StatusForbidden || resp.Message != "Access denied" || resp.Data != nil {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if !c.IsAborted() {
		t.Fatal("Fail should abort the chain")
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(c, errors.New("connection refused to 10.0.0.3:27017"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Message != "Internal server error" {
		t.Fatalf("internal detail leaked: %q", resp.Message)
	}
}

func TestRespond(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, http.StatusCreated, "Created", gin.H{"ok": true})

	resp := decodeResponse(t, w)
	if w.Code != http.StatusCreated || resp.StatusCode != http.StatusCreated || resp.Message != "Created" {
		t.Fatalf("unexpected envelope %d %+v", w.Code, resp)
	}
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NotFound("gone"))
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatal("expected 404")
	}
	if IsStatus(err, http.StatusForbidden) || IsStatus(errors.New("plain"), http.StatusNotFound) {
		t.Fatal("unexpected match")
	}
}

func TestValidateUsesJSONNames(t *testing.T) {
	type input struct {
		ConversationID string `json:"conversationId" validate:"required"`
	}
	err := Validate(input{})
	var apiErr *ApiError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
	if apiErr.Message != "conversationId is invalid (required)" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if err := Validate(input{ConversationID: "x"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, err := CurrentUserID(c); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 without a caller, got %v", err)
	}

	id := primitive.NewObjectID()
	c.Set(UserIDKey, id)
	got, err := CurrentUserID(c)
	if err != nil || got != id {
		t.Fatalf("CurrentUserID = %v, %v", got, err)
	}
}

func TestParseObjectID(t *testing.T) {
	if _, err := ParseObjectID("not-an-id", "postId"); !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400, got %v", err)
	}
	id := primitive.NewObjectID()
	if got, err := ParseObjectID(id.Hex(), "postId"); err != nil || got != id {
		t.Fatalf("ParseObjectID = %v, %v", got, err)
	}
}
