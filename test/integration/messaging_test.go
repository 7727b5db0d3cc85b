package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/notify"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/test/helpers"
)

// dialWS подключается к /ws и складывает входящие конверты в канал
func dialWS(t *testing.T, ts *helpers.TestServer, token string) <-chan notify.Envelope {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	out := make(chan notify.Envelope, 64)
	go func() {
		defer close(out)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env notify.Envelope
			if json.Unmarshal(data, &env) == nil && env.Event != "" {
				out <- env
			}
		}
	}()
	return out
}

// waitEvent ждет конверт с нужным событием, пропуская остальные
func waitEvent(t *testing.T, ch <-chan notify.Envelope, name string, timeout time.Duration) notify.Envelope {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case env, ok := <-ch:
			require.True(t, ok, "websocket closed before %s", name)
			if env.Event == name {
				return env
			}
		case <-deadline:
			t.Fatalf("event %s not received", name)
		}
	}
}

// TestRealtimeMessaging - сообщение проходит путь HTTP -> шина -> redis -> relay -> websocket
func TestRealtimeMessaging(t *testing.T) {
	ts := helpers.NewTestServer(t)

	aliceToken, aliceID := ts.RegisterUser(t, "Alice", "alice@test.com")
	bobToken, bobID := ts.RegisterUser(t, "Bob", "bob@test.com")

	// --- Шаг 1: Боб подключается по websocket ---
	inbox := dialWS(t, ts, bobToken)
	typingPath := fmt.Sprintf("/api/v1/conversations/%d/typing", bobID)

	// relay подписывается асинхронно: повторяем индикатор набора, пока он не дойдет
	require.Eventually(t, func() bool {
		res, _ := ts.SendRequest(t, http.MethodPost, typingPath, aliceToken, nil)
		if res.StatusCode != http.StatusAccepted {
			return false
		}
		select {
		case env := <-inbox:
			return env.Event == events.NameUserTyping
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	// --- Шаг 2: Сообщение доходит до получателя ---
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/messages", aliceToken, map[string]interface{}{
		"recipient_id": bobID,
		"content":      "Привет! Посмотришь бриф?",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	env := waitEvent(t, inbox, events.NameMessageSent, 3*time.Second)
	assert.Equal(t, bobID, env.UserID)
	assert.Contains(t, string(env.Payload), "бриф")
	t.Logf("WEBSOCKET: получено %s", env.Event)

	// --- Шаг 3: История переписки ---
	res, body = ts.SendRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d", aliceID), bobToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var conv dto.ConversationResponse
	helpers.Decode(t, body, &conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, aliceID, conv.Messages[0].SenderID)

	// --- Шаг 4: Блокировка закрывает оба направления ---
	res, body = ts.SendRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/block", aliceID), bobToken, nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode, body)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/messages", aliceToken, map[string]interface{}{
		"recipient_id": bobID,
		"content":      "Ты тут?",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/messages", bobToken, map[string]interface{}{
		"recipient_id": aliceID,
		"content":      "Не пиши мне",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	ts := helpers.NewTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
