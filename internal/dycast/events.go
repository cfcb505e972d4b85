package dycast

import (
	"sync"

	"github.com/hanxiao1024/dycast/internal/live"
)

// EventType 客户端事件种类，固定集合
type EventType int

const (
	// EventOpen 首次连接成功
	EventOpen EventType = iota + 1
	// EventClose 连接关闭
	EventClose
	// EventError 出错
	EventError
	// EventMessage 收到一批弹幕
	EventMessage
	// EventReconnecting 开始重连
	EventReconnecting
	// EventReconnect 重连成功
	EventReconnect
	// EventStatusChange 直播状态变化
	EventStatusChange
)

func (t EventType) String() string {
	switch t {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	case EventReconnecting:
		return "reconnecting"
	case EventReconnect:
		return "reconnect"
	case EventStatusChange:
		return "statusChange"
	default:
		return "unknown"
	}
}

// Event 客户端事件，按 Type 取对应字段
type Event struct {
	Type    EventType
	RoomNum string

	// open
	Info *live.RoomInfo

	// close / reconnecting
	Code   CloseCode
	Reason string

	// error
	Err error

	// message
	Messages []*DyMessage

	// reconnecting
	Attempt int

	// statusChange
	OldStatus RoomStatus
	NewStatus RoomStatus
}

// Handler 事件处理函数
type Handler func(Event)

// Emitter 事件分发器，按订阅顺序同步投递
type Emitter struct {
	mu       sync.RWMutex
	handlers []Handler
}

// Subscribe 订阅全部事件
func (e *Emitter) Subscribe(h Handler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, h)
	e.mu.Unlock()
}

// Emit 按订阅顺序投递一个事件
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
