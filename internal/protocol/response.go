package protocol

/*
Response wire 布局：
  1 messages_list      repeated Message
  2 cursor             string
  3 fetch_interval     varint
  4 now                varint
  5 internal_ext       string
  6 fetch_type         varint
  8 heartbeat_duration varint
  9 need_ack           bool
  10 push_server       string
  11 live_cursor       string

Message wire 布局：
  1 method   string
  2 payload  bytes
  3 msg_id   varint
  4 msg_type varint
  5 offset   varint
*/

// Message 推送批次中的一条消息，payload 按 Method 对应的消息体解码
type Message struct {
	Method  string
	Payload []byte
	MsgID   int64
	MsgType int32
	Offset  int64
}

// Response 帧内层响应，携带一批消息和续传游标
type Response struct {
	Messages          []*Message
	Cursor            string
	FetchInterval     uint64
	Now               uint64
	InternalExt       string
	FetchType         int32
	HeartbeatDuration uint64
	NeedAck           bool
	PushServer        string
	LiveCursor        string
}

// EncodeMessage 编码一条消息
func EncodeMessage(m *Message) []byte {
	var b []byte
	b = appendStringField(b, 1, m.Method)
	b = appendBytesField(b, 2, m.Payload)
	b = appendVarintField(b, 3, uint64(m.MsgID))
	b = appendVarintField(b, 4, uint64(m.MsgType))
	b = appendVarintField(b, 5, uint64(m.Offset))
	return b
}

// DecodeMessage 解码一条消息
func DecodeMessage(data []byte) (*Message, error) {
	m := &Message{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Method = r.text()
		case 2:
			m.Payload = r.bytes()
		case 3:
			m.MsgID = int64(r.varint())
		case 4:
			m.MsgType = int32(r.varint())
		case 5:
			m.Offset = int64(r.varint())
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// EncodeResponse 编码响应
func EncodeResponse(resp *Response) []byte {
	var b []byte
	for _, m := range resp.Messages {
		b = appendMessageField(b, 1, EncodeMessage(m))
	}
	b = appendStringField(b, 2, resp.Cursor)
	b = appendVarintField(b, 3, resp.FetchInterval)
	b = appendVarintField(b, 4, resp.Now)
	b = appendStringField(b, 5, resp.InternalExt)
	b = appendVarintField(b, 6, uint64(resp.FetchType))
	b = appendVarintField(b, 8, resp.HeartbeatDuration)
	b = appendBoolField(b, 9, resp.NeedAck)
	b = appendStringField(b, 10, resp.PushServer)
	b = appendStringField(b, 11, resp.LiveCursor)
	return b
}

// DecodeResponse 解码响应
func DecodeResponse(data []byte) (*Response, error) {
	resp := &Response{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m, err := DecodeMessage(r.bytes())
			if err != nil {
				return nil, err
			}
			resp.Messages = append(resp.Messages, m)
		case 2:
			resp.Cursor = r.text()
		case 3:
			resp.FetchInterval = r.varint()
		case 4:
			resp.Now = r.varint()
		case 5:
			resp.InternalExt = r.text()
		case 6:
			resp.FetchType = int32(r.varint())
		case 8:
			resp.HeartbeatDuration = r.varint()
		case 9:
			resp.NeedAck = r.bool()
		case 10:
			resp.PushServer = r.text()
		case 11:
			resp.LiveCursor = r.text()
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return resp, nil
}
