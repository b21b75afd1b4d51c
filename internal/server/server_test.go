package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discovrr/internal/bootstrap"
	"discovrr/internal/config"
	"discovrr/internal/database"
	"discovrr/internal/entity"
	"discovrr/internal/models"
	"discovrr/internal/thunk"
)

const testPassword = "SecurePass12!@"

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	app, rt := setupTestRuntime(t)
	return app, rt.DB
}

func setupTestRuntime(t *testing.T) (*fiber.App, *bootstrap.Runtime) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Env:             "test",
		AppVersion:      "1.0.0",
		JWTSecret:       "server-test-secret-with-32-characters!",
		SessionTTLHours: 1,
	}
	rt, err := bootstrap.New(context.Background(), cfg, db, nil, bootstrap.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })

	srv := NewServer(cfg, rt)
	app := fiber.New(AppConfig())
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return app, rt
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func register(t *testing.T, app *fiber.App, email, name string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": testPassword, "displayName": name,
	})
	require.Equal(t, http.StatusCreated, status, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createPost(t *testing.T, app *fiber.App, token, text string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"content": map[string]any{"kind": "text", "text": text},
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["data"].(map[string]any)["id"].(string)
}

func statistics(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, body)
	return data["statistics"].(map[string]any)
}

func TestHealthChecks(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)
	doJSON(t, app, http.MethodGet, "/health/live", "", nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestProtectedRoutesRequireActiveSession(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]any{"content": map[string]any{"text": "hi"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, body["code"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/posts", "not-a-jwt", map[string]any{"content": map[string]any{"text": "hi"}})
	assert.Equal(t, http.StatusUnauthorized, status)

	token := register(t, app, "alice@example.com", "Alice")
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/sign-out", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	// a once-valid token no longer matches the session held by the store
	status, _ = doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{"content": map[string]any{"text": "hi"}})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPostLifecycle(t *testing.T) {
	app, _ := setupTestApp(t)
	token := register(t, app, "alice@example.com", "Alice")
	id := createPost(t, app, token, "first light")

	status, body := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "fulfilled", body["status"])
	assert.Len(t, body["data"], 1)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "fulfilled", body["status"])

	status, body = doJSON(t, app, http.MethodPut, "/api/posts/"+id+"/like", token, map[string]any{"didLike": true})
	require.Equal(t, http.StatusOK, status, body)
	stats := statistics(t, body)
	assert.Equal(t, true, stats["didLike"])
	assert.EqualValues(t, 1, stats["totalLikes"])

	// liking again is answered from state without a second increment
	status, body = doJSON(t, app, http.MethodPut, "/api/posts/"+id+"/like", token, map[string]any{"didLike": true})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, statistics(t, body)["totalLikes"])

	status, _ = doJSON(t, app, http.MethodPut, "/api/posts/"+id+"/like", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, app, http.MethodPatch, "/api/posts/"+id, token, map[string]any{
		"content": map[string]any{"kind": "text", "text": "edited"},
	})
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "edited", data["content"].(map[string]any)["text"])
	assert.EqualValues(t, 1, data["statistics"].(map[string]any)["totalLikes"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/posts/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts/"+id+"?reload=true", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, body["code"])
}

func TestCreatePostValidation(t *testing.T) {
	app, _ := setupTestApp(t)
	token := register(t, app, "alice@example.com", "Alice")

	status, body := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"content": map[string]any{"kind": "text"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, body["code"])
}

func TestCommentsAndReplies(t *testing.T) {
	app, _ := setupTestApp(t)
	token := register(t, app, "alice@example.com", "Alice")
	postID := createPost(t, app, token, "thread")

	status, body := doJSON(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", token, map[string]any{"message": "top"})
	require.Equal(t, http.StatusCreated, status, body)
	commentID := body["data"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/comments/"+commentID+"/replies", token, map[string]any{"message": "reply"})
	require.Equal(t, http.StatusCreated, status, body)
	replyID := body["data"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts/"+postID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = doJSON(t, app, http.MethodGet, "/api/comments/"+commentID+"/replies", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = doJSON(t, app, http.MethodPut, "/api/replies/"+replyID+"/like", token, map[string]any{"didLike": true})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, statistics(t, body)["totalLikes"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/comments/"+commentID, token, nil)
	require.Equal(t, http.StatusNoContent, status)

	_, body = doJSON(t, app, http.MethodGet, "/api/state", "", nil)
	assert.Empty(t, body["commentReplies"].(map[string]any)["ids"])
}

func TestStoredIDsSurviveLaterRequests(t *testing.T) {
	app, rt := setupTestRuntime(t)
	token := register(t, app, "carol@example.com", "Carol")
	postID := createPost(t, app, token, "kept")

	status, body := doJSON(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", token, map[string]any{"message": "hello"})
	require.Equal(t, http.StatusCreated, status, body)
	commentID := body["data"].(map[string]any)["id"].(string)

	for _, path := range []string{"/api/profiles", "/api/state", "/api/posts/search?q=zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "/api/products"} {
		doJSON(t, app, http.MethodGet, path, "", nil)
	}

	comment, ok := rt.Store.State().Comments.SelectByID(commentID)
	require.True(t, ok)
	assert.Equal(t, postID, comment.PostID)
	assert.Equal(t, entity.StatusFulfilled, rt.Store.State().Posts.StatusOf(postID).Status)
	assert.True(t, AppConfig().Immutable)
}

func TestFollowProfile(t *testing.T) {
	app, _ := setupTestApp(t)
	bobToken := register(t, app, "bob@example.com", "Bob")
	_, body := doJSON(t, app, http.MethodGet, "/api/state", "", nil)
	bobProfile := body["auth"].(map[string]any)["user"].(map[string]any)["profileId"].(string)
	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/sign-out", bobToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	token := register(t, app, "alice@example.com", "Alice")
	status, body = doJSON(t, app, http.MethodGet, "/api/profiles/"+bobProfile, "", nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = doJSON(t, app, http.MethodPut, "/api/profiles/"+bobProfile+"/follow", token, map[string]any{"didFollow": true})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["isFollowing"])

	status, body = doJSON(t, app, http.MethodPut, "/api/profiles/"+bobProfile+"/follow", token, map[string]any{"didFollow": false})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["isFollowing"])
}

func TestSignOutResetsCachedData(t *testing.T) {
	app, _ := setupTestApp(t)
	token := register(t, app, "alice@example.com", "Alice")
	createPost(t, app, token, "soon gone")

	status, _ := doJSON(t, app, http.MethodPut, "/api/profiles/me/fcm-token", token, map[string]any{"token": "device-1"})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/sign-out", token, map[string]any{"resetPushToken": false})
	require.Equal(t, http.StatusNoContent, status)

	_, body := doJSON(t, app, http.MethodGet, "/api/state", "", nil)
	auth := body["auth"].(map[string]any)
	assert.Equal(t, "idle", auth["status"])
	assert.Nil(t, auth["user"])
	assert.Empty(t, body["posts"].(map[string]any)["ids"])
	assert.Equal(t, true, body["notifications"].(map[string]any)["didRegisterFCMToken"])
}

func TestSignInRejected(t *testing.T) {
	app, _ := setupTestApp(t)
	register(t, app, "alice@example.com", "Alice")

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/sign-in", "", map[string]any{
		"email": "alice@example.com", "password": "wrong-Password1!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, body["code"])

	_, body = doJSON(t, app, http.MethodGet, "/api/state", "", nil)
	assert.Equal(t, "rejected", body["auth"].(map[string]any)["status"])

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/sign-in", "", map[string]any{
		"email": "alice@example.com", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])
}

func TestSettings(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, http.MethodPut, "/api/settings/explore-layout", "", map[string]any{"layout": "grid"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "grid", body["exploreLayout"])

	status, _ = doJSON(t, app, http.MethodPut, "/api/settings/explore-layout", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, app, http.MethodPut, "/api/settings/location", "", map[string]any{"searchRadiusKm": 25})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 25, body["locationQueryPrefs"].(map[string]any)["searchRadiusKm"])

	_, body = doJSON(t, app, http.MethodGet, "/api/state", "", nil)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "1.0.0", settings["appVersion"])
	assert.Equal(t, "grid", settings["exploreLayout"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewNotFoundError("post", "p1"), http.StatusNotFound},
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{models.NewConflictError("dup"), http.StatusConflict},
		{&thunk.ConditionError{Action: "posts/fetchByID"}, http.StatusConflict},
		{errors.Join(thunk.ErrAborted, context.Canceled), http.StatusRequestTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(thunk.Code(tt.err)), tt.err.Error())
	}
}
