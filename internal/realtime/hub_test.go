package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubal/internal/pkg/jwt"
)

type stubAuthorizer struct {
	allowed map[int64]bool
}

func (s stubAuthorizer) IsParticipant(_ context.Context, _ int64, conversationID int64) (bool, error) {
	return s.allowed[conversationID], nil
}

func startServer(t *testing.T, hub *Hub, jwtService *jwt.Service) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	NewHandler(hub, jwtService, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHub_DeliversUserTopic(t *testing.T) {
	hub := NewHub()
	jwtService := jwt.New("secret", time.Hour)
	srv := startServer(t, hub, jwtService)

	token, _ := jwtService.GenerateToken(5, "customer")
	conn := dial(t, srv, token)
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), UserTopic(5), Event{Type: EventNotificationCreated, Payload: map[string]string{"title": "hi"}}))

	ev := readEvent(t, conn)
	assert.Equal(t, EventNotificationCreated, ev.Type)
	assert.Equal(t, "user:5", ev.Topic)
}

func TestHub_ConversationSubscriptionRequiresParticipation(t *testing.T) {
	hub := NewHub()
	hub.SetAuthorizer(stubAuthorizer{allowed: map[int64]bool{10: true}})
	jwtService := jwt.New("secret", time.Hour)
	srv := startServer(t, hub, jwtService)

	token, _ := jwtService.GenerateToken(5, "customer")
	conn := dial(t, srv, token)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "conversation_id": 11}))
	ev := readEvent(t, conn)
	assert.Equal(t, EventError, ev.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "conversation_id": 10}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, EventPong, readEvent(t, conn).Type)

	require.NoError(t, hub.Publish(context.Background(), ConversationTopic(10), Event{Type: EventMessageCreated}))
	ev = readEvent(t, conn)
	assert.Equal(t, EventMessageCreated, ev.Type)
	assert.Equal(t, "conversation:10", ev.Topic)
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	srv := startServer(t, NewHub(), jwt.New("secret", time.Hour))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	c := &connection{userID: 1, send: make(chan []byte, 1), topics: map[string]bool{UserTopic(1): true}}
	hub.register(c)

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(context.Background(), UserTopic(1), Event{Type: EventTyping}))
	}
	assert.Len(t, c.send, 1)
}
