// Package relay 提供解码弹幕的 WebSocket 转发服务
//
// 订阅方连接 /ws 后会收到全部监控房间的弹幕，按批以 JSON 数组下发。
// 每个订阅方有独立的发送队列，队列满时丢弃该订阅方的这一批，
// 不阻塞其他订阅方
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/internal/dycast"
	"github.com/hanxiao1024/dycast/pkg/logger"
	"github.com/hanxiao1024/dycast/pkg/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // 本地转发服务，不校验 Origin
	},
}

var startTime = time.Now()

// Server 弹幕转发服务
type Server struct {
	addr      string
	queueSize int

	mu          sync.RWMutex
	subscribers map[string]*subscriber
	// roomsFn 报告监控中的房间，供健康检查展示
	roomsFn func() []string

	httpServer *http.Server
}

type subscriber struct {
	id     string
	ws     *websocket.Conn
	sendCh chan []byte

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewServer 创建转发服务
func NewServer(addr string, queueSize int) *Server {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Server{
		addr:        addr,
		queueSize:   queueSize,
		subscribers: make(map[string]*subscriber),
	}
}

// Run 监听并服务，阻塞直到服务器关闭
func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.healthHandler)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	logger.Info("启动弹幕转发服务", zap.String("addr", s.addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 关闭服务并断开全部订阅方
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		s.closeSubscriber(sub, "server_shutdown")
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Broadcast 把一批弹幕下发给全部订阅方
//
// 批次序列化一次后复用；单个订阅方队列满只丢弃它自己的这一批
func (s *Server) Broadcast(messages []*dycast.DyMessage) {
	if len(messages) == 0 {
		return
	}

	data, err := json.Marshal(messages)
	if err != nil {
		logger.Warn("弹幕批次序列化失败", zap.Error(err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscribers {
		select {
		case sub.sendCh <- data:
			metrics.RelayMessagesSent.Add(float64(len(messages)))
		default:
			metrics.RelayMessagesDropped.Add(float64(len(messages)))
		}
	}
}

// SetRoomsFunc 注入监控房间来源
func (s *Server) SetRoomsFunc(fn func() []string) {
	s.mu.Lock()
	s.roomsFn = fn
	s.mu.Unlock()
}

// SubscriberCount 返回当前订阅方数量
func (s *Server) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("订阅方握手失败", zap.Error(err))
		return
	}

	sub := &subscriber{
		id:      uuid.New().String(),
		ws:      ws,
		sendCh:  make(chan []byte, s.queueSize),
		closeCh: make(chan struct{}),
	}

	s.mu.Lock()
	s.subscribers[sub.id] = sub
	s.mu.Unlock()

	metrics.RelaySubscribers.Inc()
	logger.Info("新增订阅方",
		zap.String("subscriber_id", sub.id),
		zap.String("remote_addr", r.RemoteAddr),
	)

	go s.writeLoop(sub)
	go s.readLoop(sub)
}

// readLoop 只用于感知订阅方断开，入站数据全部忽略
func (s *Server) readLoop(sub *subscriber) {
	defer s.closeSubscriber(sub, "read_error")

	for {
		if _, _, err := sub.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(sub *subscriber) {
	for {
		select {
		case <-sub.closeCh:
			return
		case data := <-sub.sendCh:
			if err := sub.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				s.closeSubscriber(sub, "write_error")
				return
			}
		}
	}
}

func (s *Server) closeSubscriber(sub *subscriber, reason string) {
	sub.closeOnce.Do(func() {
		close(sub.closeCh)
		sub.ws.Close()

		s.mu.Lock()
		delete(s.subscribers, sub.id)
		s.mu.Unlock()

		metrics.RelaySubscribers.Dec()
		logger.Debug("订阅方断开",
			zap.String("subscriber_id", sub.id),
			zap.String("reason", reason),
		)
	})
}

type healthStatus struct {
	Status        string   `json:"status"`
	Subscribers   int      `json:"subscribers"`
	Rooms         []string `json:"rooms,omitempty"`
	UptimeSeconds float64  `json:"uptime_seconds"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	roomsFn := s.roomsFn
	s.mu.RUnlock()

	health := &healthStatus{
		Status:        "healthy",
		Subscribers:   s.SubscriberCount(),
		UptimeSeconds: time.Since(startTime).Seconds(),
	}
	if roomsFn != nil {
		health.Rooms = roomsFn()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}
