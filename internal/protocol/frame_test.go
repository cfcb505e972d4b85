package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestPushFrame_RoundTrip(t *testing.T) {
	frame := &PushFrame{
		SeqID:   1,
		LogID:   1234567890123,
		Service: 5,
		Method:  7,
		Headers: map[string]string{
			HeaderCompressType: CompressGzip,
			HeaderCursor:       "r-1_d-1_u-1",
		},
		PayloadEncoding: "pb",
		PayloadType:     PayloadTypeMsg,
		Payload:         []byte{0x0a, 0x00},
	}

	data := EncodePushFrame(frame)
	got, err := DecodePushFrame(data)
	require.NoError(t, err)

	assert.Equal(t, frame.SeqID, got.SeqID)
	assert.Equal(t, frame.LogID, got.LogID)
	assert.Equal(t, frame.Service, got.Service)
	assert.Equal(t, frame.Method, got.Method)
	assert.Equal(t, frame.Headers, got.Headers)
	assert.Equal(t, frame.PayloadEncoding, got.PayloadEncoding)
	assert.Equal(t, frame.PayloadType, got.PayloadType)
	assert.Equal(t, frame.Payload, got.Payload)
}

func TestPushFrame_EmptyFieldsOmitted(t *testing.T) {
	data := EncodePushFrame(&PushFrame{PayloadType: PayloadTypeHb})

	// 仅 payload_type 一个字段
	num, typ, n := protowire.ConsumeTag(data)
	require.Greater(t, n, 0)
	assert.Equal(t, protowire.Number(7), num)
	assert.Equal(t, protowire.BytesType, typ)

	got, err := DecodePushFrame(data)
	require.NoError(t, err)
	assert.Equal(t, PayloadTypeHb, got.PayloadType)
	assert.Empty(t, got.Headers)
	assert.Nil(t, got.Payload)
}

func TestPushFrame_SkipsUnknownFields(t *testing.T) {
	data := EncodePushFrame(&PushFrame{SeqID: 9, PayloadType: PayloadTypeAck})
	// 追加一个未识别的字段
	data = protowire.AppendTag(data, 100, protowire.BytesType)
	data = protowire.AppendString(data, "future")

	got, err := DecodePushFrame(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.SeqID)
	assert.Equal(t, PayloadTypeAck, got.PayloadType)
}

func TestDecodePushFrame_Truncated(t *testing.T) {
	data := EncodePushFrame(&PushFrame{Payload: []byte("0123456789")})
	_, err := DecodePushFrame(data[:len(data)-5])
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestResponse_RoundTrip(t *testing.T) {
	resp := &Response{
		Messages: []*Message{
			{Method: MethodChat, Payload: []byte{0x1a, 0x02, 'h', 'i'}, MsgID: 42, MsgType: 1, Offset: 3},
			{Method: MethodLike, Payload: []byte{0x10, 0x05}},
		},
		Cursor:            "fh-1_t-2",
		FetchInterval:     1000,
		Now:               1700000000000,
		InternalExt:       "internal_src:dim",
		FetchType:         2,
		HeartbeatDuration: 10,
		NeedAck:           true,
		PushServer:        "wss-push",
		LiveCursor:        "live-1",
	}

	got, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, MethodChat, got.Messages[0].Method)
	assert.Equal(t, int64(42), got.Messages[0].MsgID)
	assert.Equal(t, int32(1), got.Messages[0].MsgType)
	assert.Equal(t, int64(3), got.Messages[0].Offset)
	assert.Equal(t, resp.Messages[0].Payload, got.Messages[0].Payload)
	assert.Equal(t, MethodLike, got.Messages[1].Method)

	assert.Equal(t, resp.Cursor, got.Cursor)
	assert.Equal(t, resp.FetchInterval, got.FetchInterval)
	assert.Equal(t, resp.Now, got.Now)
	assert.Equal(t, resp.InternalExt, got.InternalExt)
	assert.Equal(t, resp.FetchType, got.FetchType)
	assert.Equal(t, resp.HeartbeatDuration, got.HeartbeatDuration)
	assert.True(t, got.NeedAck)
	assert.Equal(t, resp.PushServer, got.PushServer)
	assert.Equal(t, resp.LiveCursor, got.LiveCursor)
}

func TestResponse_NeedAckDefaultsFalse(t *testing.T) {
	got, err := DecodeResponse(EncodeResponse(&Response{Cursor: "c"}))
	require.NoError(t, err)
	assert.False(t, got.NeedAck)
	assert.Empty(t, got.Messages)
}
