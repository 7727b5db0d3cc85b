package integration_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/models"
	"talent2income_backend/test/helpers"
)

// TestMarketplaceFlow - полный путь сделки: задание, назначение, эскроу, отзыв
func TestMarketplaceFlow(t *testing.T) {
	ts := helpers.NewTestServer(t)

	clientToken, clientID := ts.RegisterUser(t, "Client", "client@test.com")
	freelancerToken, freelancerID := ts.RegisterUser(t, "Freelancer", "freelancer@test.com")

	// --- Шаг 1: Клиент публикует задание ---
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", clientToken, map[string]interface{}{
		"category_id":     3,
		"title":           "Логотип для кофейни",
		"description":     "Нужен логотип и фирменные цвета",
		"budget_min":      100,
		"budget_max":      300,
		"budget_type":     "fixed",
		"required_skills": []string{"illustrator", "branding"},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var job models.Job
	helpers.Decode(t, body, &job)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	jobPath := fmt.Sprintf("/api/v1/jobs/%d", job.ID)
	t.Logf("ЗАДАНИЕ: создано id=%d", job.ID)

	// Анонимное чтение кладет задание в кэш
	res, body = ts.SendRequest(t, http.MethodGet, jobPath, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	// --- Шаг 2: Назначение исполнителя ---
	res, body = ts.SendRequest(t, http.MethodPost, jobPath+"/assign", clientToken, map[string]interface{}{
		"user_id": freelancerID,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	// чтение после записи не видит устаревший кэш
	res, body = ts.SendRequest(t, http.MethodGet, jobPath, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	helpers.Decode(t, body, &job)
	assert.Equal(t, models.JobStatusInProgress, job.Status)
	require.NotNil(t, job.AssignedTo)
	assert.Equal(t, freelancerID, *job.AssignedTo)

	// --- Шаг 3: Завершение ---
	res, body = ts.SendRequest(t, http.MethodPost, jobPath+"/transition", freelancerToken, map[string]interface{}{
		"status": "completed",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode, "Исполнитель не может закрыть чужое задание. Ответ: %s", body)

	res, body = ts.SendRequest(t, http.MethodPost, jobPath+"/transition", clientToken, map[string]interface{}{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	// из completed переходов нет
	res, _ = ts.SendRequest(t, http.MethodPost, jobPath+"/transition", clientToken, map[string]interface{}{
		"status": "open",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// --- Шаг 4: Эскроу ---
	res, body = ts.SendRequest(t, http.MethodPost, jobPath+"/payment", clientToken, map[string]interface{}{
		"amount": 250,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var payment models.Payment
	helpers.Decode(t, body, &payment)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, clientID, payment.PayerID)
	assert.Equal(t, freelancerID, payment.PayeeID)
	paymentPath := fmt.Sprintf("/api/v1/payments/%d", payment.ID)

	res, _ = ts.SendRequest(t, http.MethodPost, jobPath+"/payment", clientToken, map[string]interface{}{
		"amount": 250,
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Второй платеж по заданию запрещен")

	res, _ = ts.SendRequest(t, http.MethodPost, paymentPath+"/hold", freelancerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode, "Получатель не вносит средства")

	for _, step := range []struct {
		action string
		status models.PaymentStatus
	}{
		{"hold", models.PaymentStatusHeld},
		{"release", models.PaymentStatusReleased},
	} {
		res, body = ts.SendRequest(t, http.MethodPost, paymentPath+"/"+step.action, clientToken, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		helpers.Decode(t, body, &payment)
		assert.Equal(t, step.status, payment.Status)
		t.Logf("ПЛАТЕЖ: %s -> %s", step.action, payment.Status)
	}

	// --- Шаг 5: Отзыв ---
	reviewBody := map[string]interface{}{
		"reviewee_id": clientID,
		"rating":      5,
		"comment":     "Четкое ТЗ и быстрая оплата",
	}
	res, body = ts.SendRequest(t, http.MethodPost, jobPath+"/reviews", freelancerToken, reviewBody)
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	res, _ = ts.SendRequest(t, http.MethodPost, jobPath+"/reviews", freelancerToken, reviewBody)
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Повторный отзыв запрещен")

	res, body = ts.SendRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/rating", clientID), "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var stats models.RatingStats
	helpers.Decode(t, body, &stats)
	assert.EqualValues(t, 1, stats.TotalReviews)
	assert.InDelta(t, 5.0, stats.AverageRating, 0.001)
}

func TestJobValidation(t *testing.T) {
	ts := helpers.NewTestServer(t)
	token, _ := ts.RegisterUser(t, "Client", "client@test.com")

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{
			name:   "missing title",
			body:   map[string]interface{}{"category_id": 1, "budget_type": "fixed"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown budget type",
			body:   map[string]interface{}{"category_id": 1, "title": "Landing page", "budget_type": "barter"},
			status: http.StatusBadRequest,
		},
		{
			name:   "min above max",
			body:   map[string]interface{}{"category_id": 1, "title": "Landing page", "budget_type": "fixed", "budget_min": 500, "budget_max": 100},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", token, tt.body)
			assert.Equal(t, tt.status, res.StatusCode, body)
		})
	}

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", "", tests[0].body)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
