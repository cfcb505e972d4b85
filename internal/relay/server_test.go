package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanxiao1024/dycast/internal/dycast"
)

func newTestRelay(t *testing.T, queueSize int) (*Server, string) {
	t.Helper()
	s := NewServer("unused", queueSize)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.healthHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv.URL
}

func waitSubscribers(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s.SubscriberCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("订阅方数量未达到 %d，当前 %d", n, s.SubscriberCount())
}

func TestServer_BroadcastToSubscriber(t *testing.T) {
	s, url := newTestRelay(t, 8)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	waitSubscribers(t, s, 1)

	batch := []*dycast.DyMessage{
		{Method: "WebcastChatMessage", RoomNum: "123", Content: "测试弹幕", User: &dycast.CastUser{Name: "观众甲"}},
		{Method: "WebcastLikeMessage", RoomNum: "123", Content: "为主播点赞了(5)"},
	}
	s.Broadcast(batch)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got []*dycast.DyMessage
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "测试弹幕", got[0].Content)
	assert.Equal(t, "观众甲", got[0].User.Name)
	assert.Equal(t, "WebcastLikeMessage", got[1].Method)
}

func TestServer_EmptyBatchIgnored(t *testing.T) {
	s, url := newTestRelay(t, 8)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	waitSubscribers(t, s, 1)

	s.Broadcast(nil)
	s.Broadcast([]*dycast.DyMessage{{Method: "WebcastChatMessage", Content: "唯一一条"}})

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got []*dycast.DyMessage
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "唯一一条", got[0].Content)
}

func TestServer_SubscriberRemovedOnDisconnect(t *testing.T) {
	s, url := newTestRelay(t, 8)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	waitSubscribers(t, s, 1)

	conn.Close()
	waitSubscribers(t, s, 0)

	// 没有订阅方时广播不出错
	s.Broadcast([]*dycast.DyMessage{{Method: "WebcastChatMessage"}})
}

func TestServer_Health(t *testing.T) {
	_, url := newTestRelay(t, 8)

	resp, err := http.Get(url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health healthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 0, health.Subscribers)
	assert.GreaterOrEqual(t, health.UptimeSeconds, 0.0)
}
