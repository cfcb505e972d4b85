package protocol

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrInvalidWire 表示 wire 数据损坏或被截断
	ErrInvalidWire = errors.New("invalid wire data")
)

// reader 顺序读取 protobuf wire 格式字段
// 任意一步出错后，后续读取全部短路，最终由调用方检查 err
type reader struct {
	data []byte
	err  error
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// next 读取下一个字段 tag；数据耗尽或出错返回 false
func (r *reader) next() (protowire.Number, protowire.Type, bool) {
	if r.err != nil || len(r.data) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(r.data)
	if n < 0 {
		r.err = ErrInvalidWire
		return 0, 0, false
	}
	r.data = r.data[n:]
	return num, typ, true
}

func (r *reader) varint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := protowire.ConsumeVarint(r.data)
	if n < 0 {
		r.err = ErrInvalidWire
		return 0
	}
	r.data = r.data[n:]
	return v
}

func (r *reader) bool() bool {
	return r.varint() != 0
}

func (r *reader) bytes() []byte {
	if r.err != nil {
		return nil
	}
	v, n := protowire.ConsumeBytes(r.data)
	if n < 0 {
		r.err = ErrInvalidWire
		return nil
	}
	r.data = r.data[n:]
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (r *reader) text() string {
	if r.err != nil {
		return ""
	}
	v, n := protowire.ConsumeString(r.data)
	if n < 0 {
		r.err = ErrInvalidWire
		return ""
	}
	r.data = r.data[n:]
	return v
}

// skip 跳过一个未识别字段
func (r *reader) skip(num protowire.Number, typ protowire.Type) {
	if r.err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(num, typ, r.data)
	if n < 0 {
		r.err = ErrInvalidWire
		return
	}
	r.data = r.data[n:]
}

// 编码辅助：零值字段不写入，与 proto3 语义一致

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessageField 写入嵌套消息；msg 为 nil 时不写入
func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	if msg == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
