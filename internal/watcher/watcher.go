package watcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/internal/dycast"
	"github.com/hanxiao1024/dycast/pkg/config"
	"github.com/hanxiao1024/dycast/pkg/logger"
	"github.com/hanxiao1024/dycast/pkg/metrics"
)

// RoomWatcher 房间监控器
//
// 维护一个先进先出的连接队列，串行地执行连接尝试并在相邻尝试之间
// 等待固定间隔，避免触发平台的风控；断开的房间按退避间隔重试，
// 只要房间仍被监控，重试不设总次数上限
type RoomWatcher struct {
	manager *Manager
	cfg     config.WatcherConfig

	mu        sync.Mutex
	watched   map[string]bool
	connected map[string]bool
	// attempts 仅用于选择下一次退避间隔，连接成功后清零
	attempts map[string]int
	retry    map[string]*time.Timer
	queue    []string
	queued   map[string]bool
	// draining 队列排空循环是否在运行，任何时刻至多一个
	draining bool
}

// NewRoomWatcher 创建房间监控器并订阅客户端事件
func NewRoomWatcher(manager *Manager, cfg config.WatcherConfig) *RoomWatcher {
	if cfg.QueueInterval <= 0 {
		cfg.QueueInterval = 500 * time.Millisecond
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	if cfg.RetryMaxInterval <= 0 {
		cfg.RetryMaxInterval = 5 * time.Minute
	}
	w := &RoomWatcher{
		manager:   manager,
		cfg:       cfg,
		watched:   make(map[string]bool),
		connected: make(map[string]bool),
		attempts:  make(map[string]int),
		retry:     make(map[string]*time.Timer),
		queued:    make(map[string]bool),
	}
	manager.OnEvent(w.handleEvent)
	return w
}

// AddRoom 加入监控并立即排队一次连接尝试；已监控的房间为空操作
func (w *RoomWatcher) AddRoom(roomNum string) {
	w.mu.Lock()
	if w.watched[roomNum] {
		w.mu.Unlock()
		return
	}
	w.watched[roomNum] = true
	w.connected[roomNum] = false
	w.attempts[roomNum] = 0
	metrics.WatcherRooms.Set(float64(len(w.watched)))
	w.mu.Unlock()

	logger.Info("开始监控房间", zap.String("room", roomNum))
	w.enqueue(roomNum)
}

// RemoveRoom 取消监控：撤销待触发的重试、移出队列并关闭客户端
func (w *RoomWatcher) RemoveRoom(roomNum string) {
	w.mu.Lock()
	if !w.watched[roomNum] {
		w.mu.Unlock()
		return
	}
	delete(w.watched, roomNum)
	delete(w.connected, roomNum)
	delete(w.attempts, roomNum)
	if t, ok := w.retry[roomNum]; ok {
		t.Stop()
		delete(w.retry, roomNum)
	}
	if w.queued[roomNum] {
		delete(w.queued, roomNum)
		for i, r := range w.queue {
			if r == roomNum {
				w.queue = append(w.queue[:i], w.queue[i+1:]...)
				break
			}
		}
		metrics.WatcherQueueLength.Set(float64(len(w.queue)))
	}
	metrics.WatcherRooms.Set(float64(len(w.watched)))
	w.mu.Unlock()

	logger.Info("停止监控房间", zap.String("room", roomNum))
	w.manager.RemoveRoom(roomNum)
}

// Rooms 返回监控中的房间号
func (w *RoomWatcher) Rooms() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	list := make([]string, 0, len(w.watched))
	for r := range w.watched {
		list = append(list, r)
	}
	return list
}

// Connected 返回房间当前是否标记为已连接
func (w *RoomWatcher) Connected(roomNum string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected[roomNum]
}

// Stop 取消全部重试并关闭全部客户端
func (w *RoomWatcher) Stop() {
	w.mu.Lock()
	for r, t := range w.retry {
		t.Stop()
		delete(w.retry, r)
	}
	w.watched = make(map[string]bool)
	w.connected = make(map[string]bool)
	w.queue = nil
	w.queued = make(map[string]bool)
	w.mu.Unlock()

	w.manager.CloseAll()
}

// enqueue 排队一次连接尝试
//
// 已在队列中或已标记连接的房间不会重复排队
func (w *RoomWatcher) enqueue(roomNum string) {
	w.mu.Lock()
	if !w.watched[roomNum] || w.queued[roomNum] || w.connected[roomNum] {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, roomNum)
	w.queued[roomNum] = true
	metrics.WatcherQueueLength.Set(float64(len(w.queue)))
	start := !w.draining
	if start {
		w.draining = true
	}
	w.mu.Unlock()

	if start {
		go w.drain()
	}
}

// drain 队列排空循环
//
// 逐个弹出房间执行连接尝试；仅当队列中还有剩余条目时，
// 等待固定间隔后再继续，保证跨房间的尝试节奏受控
func (w *RoomWatcher) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.draining = false
			w.mu.Unlock()
			return
		}
		roomNum := w.queue[0]
		w.queue = w.queue[1:]
		delete(w.queued, roomNum)
		metrics.WatcherQueueLength.Set(float64(len(w.queue)))
		w.mu.Unlock()

		w.attempt(roomNum)

		w.mu.Lock()
		more := len(w.queue) > 0
		if !more {
			w.draining = false
		}
		w.mu.Unlock()
		if !more {
			return
		}
		time.Sleep(w.cfg.QueueInterval)
	}
}

// attempt 执行一次连接尝试；任何失败只安排重试，不向外传播
func (w *RoomWatcher) attempt(roomNum string) {
	w.mu.Lock()
	if !w.watched[roomNum] {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	metrics.WatcherConnectAttempts.Inc()
	cast := w.manager.AddRoom(roomNum)

	// 连接仍在时不重复拨号，覆盖"状态翻转但连接未断"的情况
	switch cast.State() {
	case dycast.StateUnconnected, dycast.StateClosed:
	default:
		return
	}

	if err := cast.Connect(context.Background()); err != nil {
		logger.Warn("房间连接尝试失败",
			zap.String("room", roomNum),
			zap.Error(err),
		)
		w.scheduleRetry(roomNum)
	}
}

// scheduleRetry 安排下一次重试
//
// 已有待触发重试的房间不重复安排；第一次失败后 RetryInterval，
// 连续失败后 RetryMaxInterval
func (w *RoomWatcher) scheduleRetry(roomNum string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[roomNum] {
		return
	}
	if _, ok := w.retry[roomNum]; ok {
		return
	}
	w.attempts[roomNum]++
	delay := w.cfg.RetryInterval
	if w.attempts[roomNum] > 1 {
		delay = w.cfg.RetryMaxInterval
	}
	metrics.WatcherRetries.Inc()
	logger.Info("安排房间重试",
		zap.String("room", roomNum),
		zap.Int("attempt", w.attempts[roomNum]),
		zap.Duration("delay", delay),
	)
	w.retry[roomNum] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.retry, roomNum)
		w.mu.Unlock()
		w.enqueue(roomNum)
	})
}

// handleEvent 根据客户端事件维护连接状态
func (w *RoomWatcher) handleEvent(ev dycast.Event) {
	switch ev.Type {
	case dycast.EventOpen, dycast.EventReconnect:
		w.markConnected(ev.RoomNum)

	case dycast.EventClose, dycast.EventError:
		w.markDisconnected(ev.RoomNum)
		w.scheduleRetry(ev.RoomNum)

	case dycast.EventStatusChange:
		switch ev.NewStatus {
		case dycast.StatusLiving:
			w.mu.Lock()
			wasConnected := w.connected[ev.RoomNum]
			if t, ok := w.retry[ev.RoomNum]; ok {
				t.Stop()
				delete(w.retry, ev.RoomNum)
			}
			w.mu.Unlock()
			if !wasConnected {
				// 先排队再标记连接，否则去重守卫会吞掉这次尝试
				w.enqueue(ev.RoomNum)
				w.markConnected(ev.RoomNum)
			}
		case dycast.StatusEnd:
			// 只摘掉连接标记，何时重连交给已安排的重试
			w.markDisconnected(ev.RoomNum)
		}
	}
}

func (w *RoomWatcher) markConnected(roomNum string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[roomNum] {
		return
	}
	w.connected[roomNum] = true
	w.attempts[roomNum] = 0
	if t, ok := w.retry[roomNum]; ok {
		t.Stop()
		delete(w.retry, roomNum)
	}
	w.updateConnectedGauge()
}

func (w *RoomWatcher) markDisconnected(roomNum string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[roomNum] {
		return
	}
	w.connected[roomNum] = false
	w.updateConnectedGauge()
}

func (w *RoomWatcher) updateConnectedGauge() {
	n := 0
	for _, ok := range w.connected {
		if ok {
			n++
		}
	}
	metrics.WatcherConnectedRooms.Set(float64(n))
}
