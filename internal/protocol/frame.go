// Package protocol 实现弹幕推送服务的帧编解码
//
// 外层信封为 PushFrame，内层为 Response，二者均为 protobuf wire 格式。
// Response.Messages 中每条消息的 payload 再按 method 对应的消息体解码。
package protocol

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

/*
PushFrame wire 布局：
  1 seq_id           varint
  2 log_id           varint
  3 service          varint
  4 method           varint
  5 headers_list     repeated { 1 key, 2 value }
  6 payload_encoding string
  7 payload_type     string
  8 payload          bytes
*/

// 帧消息体类型
const (
	PayloadTypeAck   = "ack"
	PayloadTypeClose = "close"
	PayloadTypeHb    = "hb"
	PayloadTypeMsg   = "msg"
)

// 识别的帧头
const (
	HeaderCompressType = "compress_type"
	HeaderCursor       = "im-cursor"
	HeaderInternalExt  = "im-internal_ext"
)

// CompressGzip 表示消息体经过 gzip 压缩
const CompressGzip = "gzip"

var (
	ErrInvalidFrame = errors.New("invalid frame")
)

// PushFrame 推送帧外层信封
type PushFrame struct {
	SeqID           uint64
	LogID           uint64
	Service         uint64
	Method          uint64
	Headers         map[string]string
	PayloadEncoding string
	PayloadType     string
	Payload         []byte
}

// EncodePushFrame 编码推送帧
func EncodePushFrame(f *PushFrame) []byte {
	var b []byte
	b = appendVarintField(b, 1, f.SeqID)
	b = appendVarintField(b, 2, f.LogID)
	b = appendVarintField(b, 3, f.Service)
	b = appendVarintField(b, 4, f.Method)
	for k, v := range f.Headers {
		var h []byte
		h = appendStringField(h, 1, k)
		h = appendStringField(h, 2, v)
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, h)
	}
	b = appendStringField(b, 6, f.PayloadEncoding)
	b = appendStringField(b, 7, f.PayloadType)
	b = appendBytesField(b, 8, f.Payload)
	return b
}

// DecodePushFrame 解码推送帧
func DecodePushFrame(data []byte) (*PushFrame, error) {
	f := &PushFrame{Headers: make(map[string]string)}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			f.SeqID = r.varint()
		case 2:
			f.LogID = r.varint()
		case 3:
			f.Service = r.varint()
		case 4:
			f.Method = r.varint()
		case 5:
			k, v, err := decodeHeader(r.bytes())
			if err != nil {
				return nil, err
			}
			f.Headers[k] = v
		case 6:
			f.PayloadEncoding = r.text()
		case 7:
			f.PayloadType = r.text()
		case 8:
			f.Payload = r.bytes()
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return nil, ErrInvalidFrame
	}
	return f, nil
}

func decodeHeader(data []byte) (key, value string, err error) {
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			key = r.text()
		case 2:
			value = r.text()
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return "", "", ErrInvalidFrame
	}
	return key, value, nil
}
