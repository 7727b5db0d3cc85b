package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/app"
	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/config"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories/memory"
)

// TestServer - полное приложение поверх хранилища в памяти и miniredis
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Redis  *miniredis.Miniredis
}

// NewTestServer поднимает приложение целиком: HTTP, кэш, рассылку, relay и воркеры.
// Все останавливается в t.Cleanup.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// 1. Конфиг без файла: только значения по умолчанию
	for _, k := range []string{"DATABASE_URL", "SERVER_ENV", "SERVER_PORT", "JWT_SECRET", "REDIS_ADDR", "REDIS_PASSWORD"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "my_super_secret_key_for_tests_12345"
	cfg.Auth.AutoVerify = true
	cfg.Notify.RealtimeEnabled = true

	// 2. Redis для кэша и realtime
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// 3. Приложение и фоновые компоненты
	a := app.New(cfg, memory.NewStore(), rdb)
	stop := a.StartBackground(context.Background())

	server := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		server.Close()
		stop()
		_ = rdb.Close()
	})

	log.Printf("✅ Тестовый сервер запущен: %s", server.URL)
	return &TestServer{Server: server, App: a, Redis: mr}
}

// SendRequest отправляет JSON-запрос и возвращает ответ с телом в виде строки
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	url := ts.Server.URL + path

	var reqBody io.Reader = nil
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}

	return res, string(resBodyBytes)
}

// Decode разбирает тело ответа в out
func Decode(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), "Не удалось распарсить JSON: %s", body)
}

// RegisterUser регистрирует пользователя через API и возвращает токен и его id
func (ts *TestServer) RegisterUser(t *testing.T, name, email string) (string, uint64) {
	t.Helper()
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "Регистрация должна быть успешной. Ответ: %s", body)

	var resp struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	Decode(t, body, &resp)
	require.NotEmpty(t, resp.AccessToken)

	log.Printf("✅ [Helper] Зарегистрирован пользователь %s (id=%d)", email, resp.User.ID)
	return resp.AccessToken, resp.User.ID
}

// CreateAdmin создает администратора напрямую в хранилище и логинит его
func (ts *TestServer) CreateAdmin(t *testing.T, email string) (string, uint64) {
	t.Helper()
	hash, err := auth.HashPassword("admin_password")
	require.NoError(t, err)

	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Admin",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
		IsVerified:   true,
	}
	require.NoError(t, ts.App.Store.Users().Create(context.Background(), admin))

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "admin_password",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Логин администратора должен быть успешным. Ответ: %s", body)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	Decode(t, body, &resp)
	return resp.AccessToken, admin.ID
}
