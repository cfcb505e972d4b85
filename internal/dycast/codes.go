// Package dycast 实现单个直播间的弹幕协议客户端
//
// 客户端负责拉取房间连接参数、建立 WebSocket、维持心跳与 ack、
// 解码推送帧并将消息翻译为统一的弹幕事件，断开后按上限自动重连。
package dycast

// ConnectionState 客户端连接状态
type ConnectionState int

const (
	// StateUnconnected 未连接
	StateUnconnected ConnectionState = iota + 1
	// StateConnecting 正在连接
	StateConnecting
	// StateConnected 已连接
	StateConnected
	// StateReconnecting 重连中
	StateReconnecting
	// StateClosed 已关闭
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// RoomStatus 直播间直播状态，与连接状态相互独立
type RoomStatus int

const (
	// StatusPrepare 主播准备中
	StatusPrepare RoomStatus = 1
	// StatusLiving 直播中
	StatusLiving RoomStatus = 2
	// StatusPause 主播暂时离开
	StatusPause RoomStatus = 3
	// StatusEnd 已下播
	StatusEnd RoomStatus = 4
)

// Describe 返回直播状态的中文描述
func (s RoomStatus) Describe() string {
	switch s {
	case StatusPrepare:
		return "主播正在准备中"
	case StatusLiving:
		return "主播正在直播中"
	case StatusPause:
		return "主播暂时离开了"
	case StatusEnd:
		return "主播已下播"
	default:
		return "未知状态"
	}
}

// CloseCode 关闭码，1000~1006 为标准传输码，4xxx 为应用自定义码
type CloseCode int

const (
	// CloseNormal 正常关闭
	CloseNormal CloseCode = 1000
	// CloseGoingAway 终端离开
	CloseGoingAway CloseCode = 1001
	// CloseProtocolError 协议错误
	CloseProtocolError CloseCode = 1002
	// CloseUnsupported 收到不允许的数据类型
	CloseUnsupported CloseCode = 1003
	// CloseNoStatus 没有收到预期的状态码
	CloseNoStatus CloseCode = 1005
	// CloseAbnormal 没有处理关闭帧
	CloseAbnormal CloseCode = 1006

	// CloseLiveEnd 主播未开播
	CloseLiveEnd CloseCode = 4001
	// CloseConnectingError 连接过程出错
	CloseConnectingError CloseCode = 4002
	// CloseCannotReceive 无法正常接收信息
	CloseCannotReceive CloseCode = 4003
	// CloseReconnecting 因重连而关闭
	CloseReconnecting CloseCode = 4004
)

// CloseRecord 本地记录的关闭原因
//
// 弹幕服务端不会处理关闭帧，主动关闭后传输层只会报告 1005/1006，
// 此时用最近一次记录的 CloseRecord 替换，保证监听方拿到有意义的原因。
type CloseRecord struct {
	Code   CloseCode
	Reason string
}

// defaultCloseRecord 未收到预期状态码时的缺省值
func defaultCloseRecord() CloseRecord {
	return CloseRecord{Code: CloseNoStatus, Reason: "CLOSE_NO_STATUS"}
}
