package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"hubal/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 16 * 1024
	sendBuffer = 256
)

// connection represents a single WebSocket client
type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]bool
}

// envelope is the unit that travels between instances.
type envelope struct {
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

// Hub manages the WebSocket connections of this instance. A user may hold
// several connections (tabs, devices).
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	authorizer  Authorizer
	bridge      *RedisBridge
}

func NewHub() *Hub {
	return &Hub{connections: make(map[*connection]struct{})}
}

// SetAuthorizer wires conversation participation checks. It is set after
// construction because the chat service itself publishes through the hub.
func (h *Hub) SetAuthorizer(a Authorizer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.authorizer = a
}

// UseBridge routes every publish through Redis so that all instances see it.
func (h *Hub) UseBridge(b *RedisBridge) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridge = b
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
	metrics.RealtimeConnections.Inc()
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
		metrics.RealtimeConnections.Dec()
	}
}

// Publish sends an event to everyone following topic, on every instance
// when a bridge is configured.
func (h *Hub) Publish(ctx context.Context, topic string, event Event) error {
	event.Topic = topic
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	bridge := h.bridge
	h.mu.RUnlock()

	if bridge != nil {
		return bridge.publish(ctx, envelope{Topic: topic, Event: data})
	}
	h.deliver(topic, data)
	return nil
}

// deliver fans out to local connections only.
func (h *Hub) deliver(topic string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		if !c.topics[topic] {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

// Serve registers the connection and blocks until it closes.
func (h *Hub) Serve(conn *websocket.Conn, userID int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		topics: map[string]bool{UserTopic(userID): true},
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

type clientMessage struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id"`
	IsTyping       bool   `json:"is_typing"`
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Int64("user_id", c.userID).Msg("websocket closed")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reply(c, Event{Type: EventError, Payload: map[string]string{"code": "INVALID_JSON", "message": "Failed to parse message"}})
			continue
		}

		switch msg.Type {
		case "subscribe":
			h.subscribe(c, msg.ConversationID)
		case "unsubscribe":
			h.mu.Lock()
			delete(c.topics, ConversationTopic(msg.ConversationID))
			h.mu.Unlock()
		case "typing":
			topic := ConversationTopic(msg.ConversationID)
			h.mu.RLock()
			following := c.topics[topic]
			h.mu.RUnlock()
			if following {
				_ = h.Publish(context.Background(), topic, Event{
					Type:    EventTyping,
					Payload: map[string]any{"conversation_id": msg.ConversationID, "user_id": c.userID, "is_typing": msg.IsTyping},
				})
			}
		case "ping":
			h.reply(c, Event{Type: EventPong})
		default:
			h.reply(c, Event{Type: EventError, Payload: map[string]string{"code": "UNKNOWN_TYPE", "message": "Unknown message type: " + msg.Type}})
		}
	}
}

func (h *Hub) subscribe(c *connection, conversationID int64) {
	h.mu.RLock()
	authz := h.authorizer
	h.mu.RUnlock()

	if conversationID <= 0 || authz == nil {
		h.reply(c, Event{Type: EventError, Payload: map[string]string{"code": "INVALID_CONVERSATION", "message": "conversation_id is required"}})
		return
	}

	ok, err := authz.IsParticipant(context.Background(), c.userID, conversationID)
	if err != nil || !ok {
		h.reply(c, Event{Type: EventError, Payload: map[string]string{"code": "FORBIDDEN", "message": "not a participant of this conversation"}})
		return
	}

	h.mu.Lock()
	c.topics[ConversationTopic(conversationID)] = true
	h.mu.Unlock()
}

// reply queues an event for one connection only.
func (h *Hub) reply(c *connection, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
