// Package store 提供断点游标的本地持久化
//
// 进程重启后可从上次确认的位置继续拉取，避免漏掉下播前的弹幕
package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/pkg/logger"
)

// roomCursor 单个房间的断点
type roomCursor struct {
	Cursor      string `msgpack:"cursor"`
	InternalExt string `msgpack:"internal_ext"`
}

// FileCursorStore 文件游标存储
//
// 全量快照落盘：每次 Save 把内存表序列化后原子替换文件
type FileCursorStore struct {
	path string

	mu      sync.Mutex
	cursors map[string]roomCursor
}

// OpenFileCursorStore 打开游标存储，文件不存在时从空表开始
func OpenFileCursorStore(path string) (*FileCursorStore, error) {
	s := &FileCursorStore{
		path:    path,
		cursors: make(map[string]roomCursor),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := msgpack.Unmarshal(data, &s.cursors); err != nil {
		// 快照损坏时丢弃旧数据，从头拉取比启动失败代价小
		logger.Warn("游标快照解析失败，忽略旧数据",
			zap.String("path", path),
			zap.Error(err),
		)
		s.cursors = make(map[string]roomCursor)
	}
	return s, nil
}

// Load 读取房间断点
func (s *FileCursorStore) Load(roomNum string) (cursor, internalExt string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[roomNum]
	if !ok {
		return "", "", false
	}
	return c.Cursor, c.InternalExt, true
}

// Save 记录房间断点并落盘
func (s *FileCursorStore) Save(roomNum, cursor, internalExt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[roomNum] = roomCursor{Cursor: cursor, InternalExt: internalExt}

	data, err := msgpack.Marshal(s.cursors)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
