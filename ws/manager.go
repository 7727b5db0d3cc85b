package ws

import (
	"context"
	"sync"

	"talent2income_backend/internal/logger"
)

// Hub держит подключения по пользователям. У одного пользователя может быть
// несколько вкладок, поэтому значение - набор клиентов.
type Hub struct {
	clients    map[uint64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID, "connections", len(set))

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// leave не блокируется после остановки хаба
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// join возвращает false, если хаб уже остановлен
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	client.closed = true
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	logger.Debug("ws client unregistered", "user_id", client.UserID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			client.closed = true
			close(client.Send)
		}
		delete(h.clients, userID)
	}
}

// SendToUser кладет сообщение во все подключения пользователя.
// Клиент с переполненным буфером отключается. Возвращает число получателей.
func (h *Hub) SendToUser(userID uint64, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients[userID] {
		select {
		case client.Send <- message:
			sent++
		default:
			go h.leave(client)
			logger.Warn("ws client dropped: send buffer full", "user_id", userID)
		}
	}
	return sent
}

// sendToClient кладет ответ в буфер клиента. Send закрывается только под h.mu,
// поэтому флаг closed проверяется под той же блокировкой.
func (h *Hub) sendToClient(client *Client, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client.closed {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}

// GetClientCount возвращает количество подключений
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// IsUserConnected проверяет, есть ли у пользователя открытое подключение
func (h *Hub) IsUserConnected(userID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
