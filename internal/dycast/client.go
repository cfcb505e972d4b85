package dycast

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/internal/live"
	"github.com/hanxiao1024/dycast/internal/protocol"
	"github.com/hanxiao1024/dycast/pkg/logger"
	"github.com/hanxiao1024/dycast/pkg/metrics"
)

var (
	// ErrAlreadyConnected Connect 在非 Unconnected/Closed 状态下被调用
	ErrAlreadyConnected = errors.New("already connected")
	// ErrReconnectLimit 超过最大重连次数
	ErrReconnectLimit = errors.New("reconnect limit exceeded")
	// ErrSocketClosed 连接已不存在
	ErrSocketClosed = errors.New("socket closed")
)

// maxReconnectCount 单次会话内的最大自动重连次数
const maxReconnectCount = 3

// downgradePingCount 连续多少个心跳周期没有任何入站帧即判定接收异常
const downgradePingCount = 2

// CursorStore 游标快照存取接口，可选注入
type CursorStore interface {
	Load(roomNum string) (cursor, internalExt string, ok bool)
	Save(roomNum, cursor, internalExt string) error
}

// HookConfig 开播/下播钩子命令
type HookConfig struct {
	OnLiveStart string
	OnLiveEnd   string
}

// Config 客户端配置
type Config struct {
	// BaseURL 推送服务地址，空则使用 DefaultBaseURL
	BaseURL string
	// HeartbeatInterval 心跳间隔，低于 10s 时按 10s 处理
	HeartbeatInterval time.Duration
	// Hooks 直播状态切换时执行的外部命令
	Hooks HookConfig
	// Fetcher 房间信息来源，空则使用平台默认接口
	Fetcher live.Fetcher
	// Signer 连接签名来源，空则不签名
	Signer live.Signer
	// Store 游标快照存储，可为空
	Store CursorStore
}

// cursorState 续传游标
//
// first 只在本次连接内第一个非空游标处赋值一次，之后不再覆盖
type cursorState struct {
	cursor string
	first  string
	ext    string
}

// DyCast 单个直播间的弹幕客户端
type DyCast struct {
	roomNum string
	cfg     Config

	mu     sync.Mutex
	state  ConnectionState
	status RoomStatus
	info   *live.RoomInfo
	params *wsParams

	conn *websocket.Conn
	// gen 连接代号，旧连接的回调凭它失效
	gen int
	// opened 当前代号的连接是否计入过连接数
	opened bool

	cursor cursorState
	// resume 重连时沿用的最新游标
	resume      cursorState
	closeRecord CloseRecord

	heartbeatTimer *time.Timer
	// minHeartbeat 心跳下限，测试可调小
	minHeartbeat time.Duration
	pingCount    int
	lastReceive  time.Time

	reconnectCount  int
	shouldReconnect bool

	writeMu sync.Mutex
	emitter Emitter
}

// New 创建弹幕客户端
func New(roomNum string, cfg Config) *DyCast {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = live.NewHTTPFetcher("")
	}
	if cfg.Signer == nil {
		cfg.Signer = live.NoopSigner{}
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 10 * time.Second
	}
	return &DyCast{
		roomNum:      roomNum,
		cfg:          cfg,
		state:        StateUnconnected,
		status:       StatusEnd,
		minHeartbeat: 10 * time.Second,
		closeRecord:  defaultCloseRecord(),
		lastReceive:  time.Now(),
	}
}

// RoomNum 返回房间号
func (c *DyCast) RoomNum() string {
	return c.roomNum
}

// State 返回当前连接状态
func (c *DyCast) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status 返回当前直播状态
func (c *DyCast) Status() RoomStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Info 返回最近一次解析到的房间信息
func (c *DyCast) Info() *live.RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// OnEvent 订阅客户端事件
func (c *DyCast) OnEvent(h Handler) {
	c.emitter.Subscribe(h)
}

func (c *DyCast) emit(ev Event) {
	ev.RoomNum = c.roomNum
	c.emitter.Emit(ev)
}

// Connect 拉取连接参数并建立推送连接
//
// 仅允许在 Unconnected/Closed 状态下调用；房间未开播时不建立连接，
// 转为 Closed 并发出携带 CloseLiveEnd 的关闭事件
func (c *DyCast) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnconnected && c.state != StateClosed {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.mu.Unlock()

	info, err := c.cfg.Fetcher.LiveInfo(ctx, c.roomNum)
	if err != nil {
		return c.failConnect(err)
	}
	im, err := c.cfg.Fetcher.ImInfo(ctx, info.RoomID, info.UniqueID)
	if err != nil {
		return c.failConnect(err)
	}

	c.mu.Lock()
	c.info = info
	c.status = RoomStatus(info.Status)
	status := c.status
	c.mu.Unlock()

	if status != StatusLiving {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.emit(Event{Type: EventClose, Code: CloseLiveEnd, Reason: status.Describe()})
		return nil
	}

	sig, err := c.cfg.Signer.Sign(ctx, info.RoomID, info.UniqueID)
	if err != nil {
		return c.failConnect(err)
	}

	cursor, ext := im.Cursor, im.InternalExt
	if cursor == "" && c.cfg.Store != nil {
		if sc, se, ok := c.cfg.Store.Load(c.roomNum); ok {
			cursor, ext = sc, se
		}
	}
	p := &wsParams{
		RoomID:      info.RoomID,
		UniqueID:    info.UniqueID,
		Cursor:      cursor,
		InternalExt: ext,
		Signature:   sig,
	}
	return c.dial(p)
}

// failConnect 连接前置步骤失败的统一收尾
func (c *DyCast) failConnect(err error) error {
	logger.Error("房间连接前出错",
		zap.String("room", c.roomNum),
		zap.Error(err),
	)
	c.emit(Event{Type: EventClose, Code: CloseConnectingError, Reason: "房间连接前出错"})
	c.afterClose()
	c.emit(Event{Type: EventError, Err: err})
	return err
}

// dial 实际建连
func (c *DyCast) dial(p *wsParams) error {
	c.mu.Lock()
	c.params = p
	c.cursor = cursorState{first: p.Cursor, ext: p.InternalExt}
	c.lastReceive = time.Now()
	c.pingCount = 0
	wasReconnect := c.reconnectCount > 0
	c.mu.Unlock()

	header := http.Header{}
	header.Set("User-Agent", browserVersion)
	conn, resp, err := websocket.DefaultDialer.Dial(c.cfg.BaseURL+"?"+p.query(), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		logger.Error("房间连接过程出错",
			zap.String("room", c.roomNum),
			zap.Error(err),
		)
		c.emit(Event{Type: EventClose, Code: CloseConnectingError, Reason: "房间连接过程出错"})
		c.afterClose()
		c.emit(Event{Type: EventError, Err: err})
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.gen++
	gen := c.gen
	c.opened = true
	c.state = StateConnected
	c.shouldReconnect = false
	info := c.info
	c.mu.Unlock()

	metrics.CastConnections.Inc()
	if wasReconnect {
		c.emit(Event{Type: EventReconnect, Info: info})
	} else {
		c.emit(Event{Type: EventOpen, Info: info})
	}

	c.ping(gen)
	go c.readLoop(conn, gen)
	return nil
}

// readLoop 读循环：一个连接一个 goroutine
func (c *DyCast) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}
		c.handleFrame(gen, data)
	}
}

// handleClose 处理连接关闭：重标记含糊的关闭码，决定是否重连
func (c *DyCast) handleClose(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// 旧连接的读循环
		c.mu.Unlock()
		return
	}
	code := CloseAbnormal
	reason := ""
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		code = CloseCode(ce.Code)
		reason = ce.Text
	}
	if code == CloseNoStatus || code == CloseAbnormal {
		// 服务端不回应关闭帧，用本地记录的关闭原因替换
		code = c.closeRecord.Code
		if c.closeRecord.Reason != "" {
			reason = c.closeRecord.Reason
		}
	}
	if reason == "" {
		reason = "closed"
	}
	shouldReconnect := c.shouldReconnect || c.reconnectCount > 0
	c.mu.Unlock()

	c.afterClose()
	if shouldReconnect {
		c.reconnect()
	} else {
		c.emit(Event{Type: EventClose, Code: code, Reason: reason})
	}
}

// reconnect 以最新游标重新建连，超过上限则发出终止错误
func (c *DyCast) reconnect() {
	c.mu.Lock()
	c.shouldReconnect = false
	p := *c.params
	if c.resume.cursor != "" {
		p.Cursor = c.resume.cursor
		p.InternalExt = c.resume.ext
	}
	c.reconnectCount++
	count := c.reconnectCount
	c.mu.Unlock()

	if count > maxReconnectCount {
		logger.Error("已超过最大重连次数",
			zap.String("room", c.roomNum),
			zap.Int("count", count-1),
		)
		c.emit(Event{Type: EventError, Err: ErrReconnectLimit})
		return
	}

	c.mu.Lock()
	c.state = StateReconnecting
	c.mu.Unlock()

	metrics.CastReconnects.Inc()
	c.emit(Event{Type: EventReconnecting, Attempt: count, Code: CloseReconnecting})
	c.dial(&p)
}

// Close 主动关闭连接；连接不存在时为空操作
//
// 服务端不处理关闭帧，因此只记录关闭原因并直接断开
func (c *DyCast) Close(code CloseCode, reason string) {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.closeRecord = CloseRecord{Code: code, Reason: reason}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	conn.Close()
}

// afterClose 连接收尾：停心跳、存游标、复位瞬态字段
func (c *DyCast) afterClose() {
	c.mu.Lock()
	if c.heartbeatTimer != nil {
		c.heartbeatTimer.Stop()
		c.heartbeatTimer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.cursor.cursor != "" {
		c.resume = c.cursor
	}
	cursor := c.cursor
	c.cursor = cursorState{}
	c.state = StateClosed
	c.closeRecord = defaultCloseRecord()
	opened := c.opened
	c.opened = false
	c.mu.Unlock()

	if opened {
		metrics.CastConnections.Dec()
	}
	if c.cfg.Store != nil && cursor.cursor != "" {
		if err := c.cfg.Store.Save(c.roomNum, cursor.cursor, cursor.ext); err != nil {
			logger.Warn("保存游标快照失败",
				zap.String("room", c.roomNum),
				zap.Error(err),
			)
		}
	}
}

// ping 发送心跳帧并检查接收是否正常
//
// 每发送一次计数加一，任何入站帧都会清零；连续两个周期没有入站帧
// 即判定无法正常接收，主动断开并按上限决定是否重连
func (c *DyCast) ping(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.pingCount++
	count := c.pingCount
	c.mu.Unlock()

	hb := protocol.EncodePushFrame(&protocol.PushFrame{PayloadType: protocol.PayloadTypeHb})
	if err := c.send(hb); err != nil {
		logger.Warn("心跳发送失败",
			zap.String("room", c.roomNum),
			zap.Error(err),
		)
	}

	if count >= downgradePingCount {
		c.cannotReceive()
		return
	}

	c.mu.Lock()
	if gen == c.gen && c.conn != nil {
		c.heartbeatTimer = time.AfterFunc(c.heartbeatInterval(), func() {
			c.ping(gen)
		})
	}
	c.mu.Unlock()
}

func (c *DyCast) heartbeatInterval() time.Duration {
	d := c.cfg.HeartbeatInterval
	if d < c.minHeartbeat {
		d = c.minHeartbeat
	}
	return d
}

// cannotReceive 长时间未收到任何帧
func (c *DyCast) cannotReceive() {
	c.mu.Lock()
	elapsed := time.Since(c.lastReceive)
	if c.reconnectCount < maxReconnectCount {
		c.shouldReconnect = true
	}
	c.mu.Unlock()

	logger.Error("客户端无法正常接收信息",
		zap.String("room", c.roomNum),
		zap.Duration("since_last_receive", elapsed),
	)
	c.emit(Event{Type: EventClose, Code: CloseCannotReceive, Reason: "客户端无法正常接收信息"})
	c.Close(CloseCannotReceive, "客户端无法正常接收信息")
}

// handleFrame 处理一个入站帧
func (c *DyCast) handleFrame(gen int, data []byte) {
	c.mu.Lock()
	c.pingCount = 0
	// 收到帧说明连接健康，重连计数清零
	c.reconnectCount = 0
	c.lastReceive = time.Now()
	c.mu.Unlock()

	metrics.CastFramesReceived.Inc()

	frame, err := protocol.DecodePushFrame(data)
	if err != nil {
		logger.Warn("推送帧解码失败",
			zap.String("room", c.roomNum),
			zap.Error(err),
		)
		metrics.CastDecodeErrors.Inc()
		return
	}
	payload := frame.Payload
	if len(payload) == 0 {
		return
	}
	if frame.Headers[protocol.HeaderCompressType] == protocol.CompressGzip {
		payload, err = gunzip(payload)
		if err != nil {
			logger.Warn("消息体解压失败",
				zap.String("room", c.roomNum),
				zap.Error(err),
			)
			metrics.CastDecodeErrors.Inc()
			return
		}
	}
	res, err := protocol.DecodeResponse(payload)
	if err != nil {
		logger.Warn("响应解码失败",
			zap.String("room", c.roomNum),
			zap.Error(err),
		)
		metrics.CastDecodeErrors.Inc()
		return
	}

	cursor := frame.Headers[protocol.HeaderCursor]
	ext := frame.Headers[protocol.HeaderInternalExt]
	if cursor == "" {
		cursor = res.Cursor
	}
	if ext == "" {
		ext = res.InternalExt
	}

	if res.NeedAck {
		ack := protocol.EncodePushFrame(&protocol.PushFrame{
			LogID:       frame.LogID,
			PayloadType: protocol.PayloadTypeAck,
			Payload:     ackPayload(ext),
		})
		if err := c.send(ack); err != nil {
			// 连接已不可写，按异常关闭处理
			logger.Error("ACK 发送异常",
				zap.String("room", c.roomNum),
				zap.Error(err),
			)
			c.afterClose()
			return
		}
		metrics.CastAcksSent.Inc()
		c.setCursor(cursor, ext)
	}

	switch frame.PayloadType {
	case protocol.PayloadTypeMsg:
		c.dealMessages(res.Messages)
	case protocol.PayloadTypeClose:
		c.Close(CloseNormal, "Close By PayloadType")
	}
}

// setCursor 推进续传游标；firstCursor 只赋值一次
func (c *DyCast) setCursor(cursor, ext string) {
	c.mu.Lock()
	c.cursor.cursor = cursor
	c.cursor.ext = ext
	if c.cursor.first == "" && cursor != "" {
		c.cursor.first = cursor
	}
	c.mu.Unlock()
}

// dealMessages 翻译一批消息并发出 message 事件
func (c *DyCast) dealMessages(messages []*protocol.Message) {
	now := time.Now().UnixMilli()
	list := make([]*DyMessage, 0, len(messages))
	for _, msg := range messages {
		data, err := c.translate(msg)
		if err != nil {
			// 单条消息解码失败可恢复，跳过继续
			logger.Warn("消息解码失败",
				zap.String("room", c.roomNum),
				zap.String("method", msg.Method),
				zap.Error(err),
			)
			metrics.CastDecodeErrors.Inc()
			continue
		}
		if data == nil {
			continue
		}
		if data.Timestamp == 0 {
			data.Timestamp = now
		}
		metrics.CastMessages.WithLabelValues(data.Method).Inc()
		list = append(list, data)
	}
	if len(list) > 0 {
		metrics.CastBatchSize.Observe(float64(len(list)))
		c.emit(Event{Type: EventMessage, Messages: list})
	}
}

// send 发送一个二进制帧
func (c *DyCast) send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrSocketClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// ackPayload 将扩展串展开为 ack 消息体
//
// 服务端期望逐码点的 UTF-8 展开，且只处理 0x10000 以下的码点，
// 更高的码点直接丢弃，与平台端实现保持比特一致
func ackPayload(ext string) []byte {
	buf := make([]byte, 0, len(ext))
	for _, r := range ext {
		if r >= 0x10000 {
			continue
		}
		buf = utf8.AppendRune(buf, r)
	}
	return buf
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
