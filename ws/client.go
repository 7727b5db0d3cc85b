package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"talent2income_backend/internal/logger"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/services/dto"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
)

// MessageSender - часть MessageService, доступная из websocket
type MessageSender interface {
	Send(ctx context.Context, senderID uint64, req *dto.SendMessageRequest) (*models.Message, error)
	Typing(ctx context.Context, senderID, recipientID uint64) error
}

type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// outgoingAck - ответ клиенту на его действие; уведомления приходят через relay
type outgoingAck struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type Client struct {
	UserID uint64
	Conn   *websocket.Conn
	Send   chan []byte

	hub      *Hub
	messages MessageSender
	ctx      context.Context

	// closed меняется под hub.mu
	closed bool
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.CtxWarn(c.ctx, "ws read error", "error", err.Error())
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.reply(outgoingAck{Event: "error", Error: "invalid message format"})
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.CtxWarn(c.ctx, "ws write error", "error", err.Error())
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Централизованный обработчик
func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {

	case "send_message":
		var input dto.SendMessageRequest
		if err := json.Unmarshal(msg.Data, &input); err != nil {
			c.reply(outgoingAck{Event: "error", Error: "invalid send_message payload"})
			return
		}
		created, err := c.messages.Send(c.ctx, c.UserID, &input)
		if err != nil {
			c.reply(outgoingAck{Event: "error", Error: err.Error()})
			return
		}
		c.reply(outgoingAck{Event: "message_sent", Data: created})

	case "typing":
		var payload struct {
			RecipientID uint64 `json:"recipient_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.RecipientID == 0 {
			c.reply(outgoingAck{Event: "error", Error: "invalid typing payload"})
			return
		}
		if err := c.messages.Typing(c.ctx, c.UserID, payload.RecipientID); err != nil {
			c.reply(outgoingAck{Event: "error", Error: err.Error()})
		}

	default:
		c.reply(outgoingAck{Event: "error", Error: "unknown action: " + msg.Action})
	}
}

func (c *Client) reply(ack outgoingAck) {
	data, err := json.Marshal(ack)
	if err != nil {
		return
	}
	if !c.hub.sendToClient(c, data) {
		logger.CtxDebug(c.ctx, "ws reply dropped", "event", ack.Event)
	}
}
