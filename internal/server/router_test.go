package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pgdb "github.com/yungbote/pathforge-backend/internal/db"
	"github.com/yungbote/pathforge-backend/internal/handlers"
	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/middleware"
	"github.com/yungbote/pathforge-backend/internal/repos"
	"github.com/yungbote/pathforge-backend/internal/services"
	"github.com/yungbote/pathforge-backend/internal/sse"
)

const testRoadmapJSON = `{
  "title": "Test Roadmap",
  "phases": [
    {
      "id": "phase-1",
      "title": "Phase One",
      "description": "First phase",
      "topics": [
        {"id": "topic-1-1", "title": "Topic A", "description": "First topic", "estimatedMinutes": 60},
        {"id": "topic-1-2", "title": "Topic B", "description": "Second topic", "estimatedMinutes": 30}
      ]
    }
  ]
}`

type stubAIClient struct {
	response string
	deltas   []string
}

func (s *stubAIClient) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	return s.response, nil
}

func (s *stubAIClient) StreamText(ctx context.Context, prompt string, temperature float64, onDelta func(string)) (string, error) {
	var full string
	for _, d := range s.deltas {
		full += d
		if onDelta != nil {
			onDelta(d)
		}
	}
	return full, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, pgdb.AutoMigrate(gdb))

	log, err := logger.New("development")
	require.NoError(t, err)
	t.Cleanup(func() { log.Sync() })

	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	roadmapRepo := repos.NewRoadmapRepo(gdb, log)
	phaseRepo := repos.NewPhaseRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)

	hub := sse.NewSSEHub(log)
	aiClient := &stubAIClient{response: testRoadmapJSON, deltas: []string{"Sure, ", "here is help."}}

	authService := services.NewAuthService(gdb, log, userRepo, userTokenRepo, "test-secret", time.Hour, 24*time.Hour)
	userService := services.NewUserService(gdb, log, userRepo, userTokenRepo, roadmapRepo, phaseRepo, topicRepo)
	roadmapService := services.NewRoadmapService(gdb, log, roadmapRepo, phaseRepo, topicRepo)
	generationService := services.NewRoadmapGenerationService(gdb, log, aiClient, roadmapService)
	tutorService := services.NewTutorService(log, aiClient)

	return NewRouter(RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(authService),
		AuthMiddleware: middleware.NewAuthMiddleware(log, authService),
		UserHandler:    handlers.NewUserHandler(userService),
		RoadmapHandler: handlers.NewRoadmapHandler(roadmapService),
		AIHandler:      handlers.NewAIHandler(generationService, tutorService),
		SSEHandler:     handlers.NewSSEHandler(log, hub),
		SSEHub:         hub,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Jo", "email": "jo@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "jo@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := envelope(t, w)["data"].(map[string]any)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterValidationMessages(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "J", "email": "jo@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name must be at least 2 characters", envelope(t, w)["error"])

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Jo", "email": "jo@x.com", "password": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at least 6 characters", envelope(t, w)["error"])

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Jo", "email": "jo@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := envelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "Jo", data["name"])
	assert.Equal(t, "jo@x.com", data["email"])
	assert.NotEmpty(t, data["id"])

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Jo", "email": "jo@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", envelope(t, w)["error"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/roadmaps"},
		{http.MethodPost, "/api/ai/generate"},
		{http.MethodGet, "/api/user/profile"},
		{http.MethodDelete, "/api/roadmaps/00000000-0000-0000-0000-000000000000"},
	} {
		w := doJSON(t, router, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestGenerateAndTrackFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/ai/generate", token, gin.H{
		"goal":        "skill-learning",
		"targetRole":  "Backend Engineer",
		"stack":       []string{"Go"},
		"timeline":    gin.H{"value": 2, "unit": "weeks"},
		"hoursPerDay": 2,
		"skillLevel":  "beginner",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := envelope(t, w)["data"].(map[string]any)
	roadmapID, _ := created["id"].(string)
	require.NotEmpty(t, roadmapID)
	assert.Equal(t, "Test Roadmap", created["title"])

	w = doJSON(t, router, http.MethodGet, "/api/roadmaps", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := envelope(t, w)["data"].([]any)
	require.Len(t, list, 1)

	w = doJSON(t, router, http.MethodPatch, "/api/roadmaps/"+roadmapID+"/topics/topic-1-1", token, gin.H{
		"status": "done",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/roadmaps/"+roadmapID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := envelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(50), full["progress"])

	w = doJSON(t, router, http.MethodPatch, "/api/roadmaps/"+roadmapID+"/topics/topic-1-1", token, gin.H{
		"status": "finished",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/roadmaps/"+roadmapID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/roadmaps/"+roadmapID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTutorStreamsPlainText(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/ai/tutor", token, gin.H{
		"message": "Explain goroutines",
		"context": gin.H{"roadmapTitle": "Go Mastery"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Sure, here is help.", w.Body.String())
}

func TestTutorRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/ai/tutor", token, gin.H{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, envelope(t, w)["success"])
}

func TestProfileEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := envelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "Jo", profile["name"])

	w = doJSON(t, router, http.MethodPatch, "/api/user/profile", token, gin.H{"name": "Joanna"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/user/password", token, gin.H{
		"currentPassword": "wrong", "newPassword": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", envelope(t, w)["error"])

	w = doJSON(t, router, http.MethodDelete, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
