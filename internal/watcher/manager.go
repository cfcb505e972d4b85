// Package watcher 管理多个直播间：客户端集合与带节流的连接调度
package watcher

import (
	"sync"

	"github.com/hanxiao1024/dycast/internal/dycast"
)

// Manager 弹幕客户端集合
//
// 只做组装与事件汇聚：每个客户端的事件原样转发到聚合流，
// 事件上的 RoomNum 标识来源房间
type Manager struct {
	mu      sync.Mutex
	casts   map[string]*dycast.DyCast
	emitter dycast.Emitter
	// factory 创建客户端，测试可替换
	factory func(roomNum string) *dycast.DyCast
}

// NewManager 创建客户端集合
func NewManager(factory func(roomNum string) *dycast.DyCast) *Manager {
	return &Manager{
		casts:   make(map[string]*dycast.DyCast),
		factory: factory,
	}
}

// OnEvent 订阅聚合事件流
func (m *Manager) OnEvent(h dycast.Handler) {
	m.emitter.Subscribe(h)
}

// AddRoom 获取或创建房间客户端
//
// 新建的客户端会被订阅，其全部事件转发到聚合流
func (m *Manager) AddRoom(roomNum string) *dycast.DyCast {
	m.mu.Lock()
	if cast, ok := m.casts[roomNum]; ok {
		m.mu.Unlock()
		return cast
	}
	cast := m.factory(roomNum)
	m.casts[roomNum] = cast
	m.mu.Unlock()

	cast.OnEvent(func(ev dycast.Event) {
		m.emitter.Emit(ev)
	})
	return cast
}

// RemoveRoom 关闭并移除房间客户端
func (m *Manager) RemoveRoom(roomNum string) {
	m.mu.Lock()
	cast, ok := m.casts[roomNum]
	if ok {
		delete(m.casts, roomNum)
	}
	m.mu.Unlock()

	if ok {
		cast.Close(dycast.CloseNormal, "room removed")
	}
}

// GetRoom 查询房间客户端
func (m *Manager) GetRoom(roomNum string) (*dycast.DyCast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cast, ok := m.casts[roomNum]
	return cast, ok
}

// GetAllRooms 返回全部房间客户端
func (m *Manager) GetAllRooms() []*dycast.DyCast {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*dycast.DyCast, 0, len(m.casts))
	for _, cast := range m.casts {
		list = append(list, cast)
	}
	return list
}

// CloseAll 关闭全部客户端并清空集合
func (m *Manager) CloseAll() {
	m.mu.Lock()
	casts := m.casts
	m.casts = make(map[string]*dycast.DyCast)
	m.mu.Unlock()

	for _, cast := range casts {
		cast.Close(dycast.CloseNormal, "close all")
	}
}
