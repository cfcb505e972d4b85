package watcher

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanxiao1024/dycast/internal/dycast"
)

func TestManager_AddRoomIdempotent(t *testing.T) {
	m := NewManager(func(roomNum string) *dycast.DyCast {
		return dycast.New(roomNum, dycast.Config{Fetcher: &failingFetcher{}})
	})

	a := m.AddRoom("123")
	b := m.AddRoom("123")
	assert.Same(t, a, b)
	assert.Len(t, m.GetAllRooms(), 1)
}

func TestManager_GetAndRemove(t *testing.T) {
	m := NewManager(func(roomNum string) *dycast.DyCast {
		return dycast.New(roomNum, dycast.Config{Fetcher: &failingFetcher{}})
	})

	_, ok := m.GetRoom("123")
	assert.False(t, ok)

	cast := m.AddRoom("123")
	got, ok := m.GetRoom("123")
	require.True(t, ok)
	assert.Same(t, cast, got)

	m.RemoveRoom("123")
	_, ok = m.GetRoom("123")
	assert.False(t, ok)
	assert.Empty(t, m.GetAllRooms())

	// 不存在的房间为空操作
	m.RemoveRoom("456")
}

func TestManager_ReemitsClientEvents(t *testing.T) {
	m := NewManager(func(roomNum string) *dycast.DyCast {
		return dycast.New(roomNum, dycast.Config{Fetcher: &failingFetcher{}})
	})

	var mu sync.Mutex
	var events []dycast.Event
	m.OnEvent(func(ev dycast.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	cast := m.AddRoom("123")
	err := cast.Connect(context.Background())
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.Equal(t, "123", ev.RoomNum)
	}
	assert.Equal(t, dycast.EventClose, events[0].Type)
}
