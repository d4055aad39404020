package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/screenverse/backend/internal/auth"
	"github.com/screenverse/backend/internal/rated"
	"github.com/screenverse/backend/internal/titles"
	"github.com/screenverse/backend/internal/users"
	"github.com/screenverse/backend/internal/watchlist"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	databasePath := filepath.Join(t.TempDir(), "server.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &watchlist.Item{}, &rated.Item{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	userService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create user service: %v", err)
	}
	codec, err := auth.NewTokenCodec(auth.TokenCodecConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "screenverse-api",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	sessions, err := auth.NewSessionIssuer(userService, codec)
	if err != nil {
		t.Fatalf("failed to create session issuer: %v", err)
	}
	watchlistService, err := watchlist.NewService(watchlist.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create watchlist service: %v", err)
	}
	ratedService, err := rated.NewService(rated.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create rated service: %v", err)
	}
	titlesClient, err := titles.NewClient(titles.ClientConfig{APIKey: "unused", BaseURL: "http://127.0.0.1:0"})
	if err != nil {
		t.Fatalf("failed to create titles client: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		TokenVerifier:    codec,
		SessionService:   sessions,
		UserService:      userService,
		WatchlistService: watchlistService,
		RatedService:     ratedService,
		TitlesClient:     titlesClient,
	})
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler
}

func postJSON(t *testing.T, handler http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeSession(t *testing.T, recorder *httptest.ResponseRecorder) sessionResponsePayload {
	t.Helper()
	var session sessionResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session response: %v", err)
	}
	return session
}

func startTestSession(t *testing.T, handler http.Handler, providerUserID, email string) sessionResponsePayload {
	t.Helper()
	recorder := postJSON(t, handler, "/auth/clerk/auth", map[string]string{
		"providerUserId": providerUserID,
		"email":          email,
		"firstName":      "Ann",
		"providerName":   "google",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
	}
	return decodeSession(t, recorder)
}

func TestUnifiedAuthCreatesAndReturnsSameUser(t *testing.T) {
	handler := newTestHandler(t)

	first := startTestSession(t, handler, "p1", "a@x.com")
	if first.AccessToken == "" || first.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", first)
	}
	if first.Email != "a@x.com" {
		t.Fatalf("unexpected email in session: %q", first.Email)
	}
	if first.IsNewUser {
		t.Fatalf("expected isNewUser false in unified flow")
	}

	second := startTestSession(t, handler, "p1", "a@x.com")
	if second.UserID != first.UserID {
		t.Fatalf("expected idempotent reconciliation, got user ids %d and %d", first.UserID, second.UserID)
	}
}

func TestSignupRouteSharesUnifiedFlow(t *testing.T) {
	handler := newTestHandler(t)

	recorder := postJSON(t, handler, "/auth/signup", map[string]string{
		"providerUserId": "p1",
		"email":          "a@x.com",
		"providerName":   "google",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestStartSessionRejectsMalformedBody(t *testing.T) {
	handler := newTestHandler(t)

	recorder := postJSON(t, handler, "/auth/clerk/auth", map[string]string{"email": "a@x.com"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", recorder.Code)
	}
}

func TestStartSessionReportsIdentityConflict(t *testing.T) {
	handler := newTestHandler(t)

	startTestSession(t, handler, "p1", "a@x.com")
	startTestSession(t, handler, "p2", "b@x.com")

	recorder := postJSON(t, handler, "/auth/clerk/auth", map[string]string{
		"providerUserId": "p1",
		"email":          "b@x.com",
		"providerName":   "google",
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for cross-account collision, got %d", recorder.Code)
	}
	var body errorBody
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != "USER_ALREADY_EXISTS" || body.Action != "REDIRECT_TO_SIGNIN" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestRefreshAcceptsOnlyRefreshTokens(t *testing.T) {
	handler := newTestHandler(t)
	session := startTestSession(t, handler, "p1", "a@x.com")

	renewed := postJSON(t, handler, "/auth/refresh", map[string]string{"refreshToken": session.RefreshToken})
	if renewed.Code != http.StatusOK {
		t.Fatalf("expected successful renewal, got %d: %s", renewed.Code, renewed.Body.String())
	}
	renewedSession := decodeSession(t, renewed)
	if renewedSession.UserID != session.UserID {
		t.Fatalf("expected renewed session for same user")
	}

	// A valid access token is the wrong kind for the refresh flow.
	rejected := postJSON(t, handler, "/auth/refresh", map[string]string{"refreshToken": session.AccessToken})
	if rejected.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for access token, got %d", rejected.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rejected.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != "INVALID_CREDENTIAL" {
		t.Fatalf("unexpected error code %q", body.Code)
	}
}

func TestCheckUserProbe(t *testing.T) {
	handler := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/auth/check-user?email=missing@x.com", http.NoBody)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	var probe userCheckResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &probe); err != nil {
		t.Fatalf("failed to decode probe: %v", err)
	}
	if probe.Exists {
		t.Fatalf("expected no match on empty table")
	}

	startTestSession(t, handler, "p1", "a@x.com")

	request = httptest.NewRequest(http.MethodGet, "/auth/check-user?providerUserId=p1", http.NoBody)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if err := json.Unmarshal(recorder.Body.Bytes(), &probe); err != nil {
		t.Fatalf("failed to decode probe: %v", err)
	}
	if !probe.Exists || probe.Message != "User found by provider ID" {
		t.Fatalf("unexpected probe result: %+v", probe)
	}
}
