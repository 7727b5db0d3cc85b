package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/config"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories/memory"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "SERVER_ENV", "SERVER_PORT", "JWT_SECRET", "REDIS_ADDR", "REDIS_PASSWORD", "FIRST_ADMIN_EMAIL", "FIRST_ADMIN_PASSWORD"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestSeedFirstAdmin(t *testing.T) {
	cfg := testConfig(t)
	store := memory.NewStore()
	ctx := context.Background()

	// без учетных данных ничего не создается
	require.NoError(t, seedFirstAdmin(ctx, store, cfg))
	_, err := store.Users().GetByEmail(ctx, "root@test.com")
	require.Error(t, err)

	cfg.FirstAdminEmail = "root@test.com"
	cfg.FirstAdminPassword = "root_password"
	require.NoError(t, seedFirstAdmin(ctx, store, cfg))
	require.NoError(t, seedFirstAdmin(ctx, store, cfg))

	admin, err := store.Users().GetByEmail(ctx, "root@test.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)
	assert.True(t, admin.IsVerifiedActive())
	assert.NotEqual(t, "root_password", admin.PasswordHash)
}

func TestSeedFirstAdmin_NormalizesEmail(t *testing.T) {
	cfg := testConfig(t)
	store := memory.NewStore()
	ctx := context.Background()

	cfg.FirstAdminEmail = "  Root@Test.COM "
	cfg.FirstAdminPassword = "root_password"
	require.NoError(t, seedFirstAdmin(ctx, store, cfg))
	require.NoError(t, seedFirstAdmin(ctx, store, cfg))

	// логин ищет пользователя по email в нижнем регистре
	admin, err := store.Users().GetByEmail(ctx, "root@test.com")
	require.NoError(t, err)
	assert.Equal(t, "root@test.com", admin.Email)
	_, err = store.Users().GetByID(ctx, admin.ID+1)
	assert.Error(t, err, "повторный запуск не создает второго админа")
}

func TestNew_WithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.Notify.RealtimeEnabled = true

	store, closeDB, err := openStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, closeDB)

	a := New(cfg, store, nil)
	assert.Nil(t, a.relay, "relay requires redis")

	stop := a.StartBackground(context.Background())
	defer stop()

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "sqlite"
	_, _, err := openStore(cfg)
	assert.Error(t, err)
}
