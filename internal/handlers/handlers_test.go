package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/app"
	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories/memory"
	"talent2income_backend/internal/services"
)

type apiFixture struct {
	router *gin.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenManager("handlers-secret", time.Hour)
	container := services.NewServiceContainer(services.Deps{
		Store: memory.NewStore(),
		Bus:   events.NewBus(),
	}, tokens, true)
	return &apiFixture{router: app.SetupRouter(container, tokens, nil)}
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) register(t *testing.T, email string) (string, uint64) {
	t.Helper()
	w := f.call(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name": "Test User", "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		AccessToken string      `json:"access_token"`
		TokenType   string      `json:"token_type"`
		User        models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotContains(t, w.Body.String(), "password")
	return resp.AccessToken, resp.User.ID
}

func TestAuthHandlers(t *testing.T) {
	api := newAPI(t)
	token, id := api.register(t, "me@test.com")

	w := api.call(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"id":%d`, id))

	w = api.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "me@test.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.call(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email", "password": "password123", "name": "X Y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.call(t, http.MethodPatch, "/api/v1/users/me", token, map[string]string{"name": "  Renamed  ", "bio": "Go developer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Renamed"`)
}

func TestSkillHandlers(t *testing.T) {
	api := newAPI(t)
	owner, ownerID := api.register(t, "owner@test.com")
	stranger, _ := api.register(t, "stranger@test.com")

	w := api.call(t, http.MethodPost, "/api/v1/skills", owner, map[string]interface{}{
		"category_id": 2,
		"title":       "Go backend",
		"price_from":  50,
		"tags":        []string{"go", "postgres"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var skill models.Skill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &skill))
	assert.True(t, skill.IsAvailable)
	skillPath := fmt.Sprintf("/api/v1/skills/%d", skill.ID)

	w = api.call(t, http.MethodPatch, skillPath, stranger, map[string]interface{}{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.call(t, http.MethodPatch, skillPath, owner, map[string]interface{}{"is_available": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_available":false`)

	w = api.call(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/skills", ownerID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go backend")

	w = api.call(t, http.MethodDelete, skillPath, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.call(t, http.MethodGet, skillPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPathParams(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/api/v1/jobs/abc", "/api/v1/jobs/0", "/api/v1/users/-1", "/api/v1/skills/1.5"} {
		w := api.call(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w := api.call(t, http.MethodGet, "/api/v1/jobs/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	w = api.call(t, http.MethodGet, "/api/v1/jobs?page_size=1000", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.call(t, http.MethodGet, "/api/v1/jobs?status=open&page=1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"jobs":[]`)
}
