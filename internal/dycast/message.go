package dycast

// CastUser 弹幕用户
type CastUser struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	// Gender 0|1|2 => 未知|男|女
	Gender int32 `json:"gender,omitempty"`
}

// CastGift 弹幕礼物
type CastGift struct {
	ID    uint64 `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Price uint32 `json:"price,omitempty"`
	Type  uint32 `json:"type,omitempty"`
	Desc  string `json:"desc,omitempty"`
	Icon  string `json:"icon,omitempty"`
	// Count 重复/连击数量
	Count uint64 `json:"count,omitempty"`
	// RepeatEnd 非 0 表示该礼物连击已结束，用于去重渲染
	RepeatEnd uint32 `json:"repeatEnd,omitempty"`
}

// RtfContentType 富文本片段类型
type RtfContentType int

const (
	// RtfText 普通文本
	RtfText RtfContentType = 1
	// RtfEmoji 合并表情
	RtfEmoji RtfContentType = 2
)

// RtfContent 富文本片段
type RtfContent struct {
	Type RtfContentType `json:"type,omitempty"`
	Text string         `json:"text,omitempty"`
	URL  string         `json:"url,omitempty"`
}

// LiveRoom 直播间即时统计
type LiveRoom struct {
	AudienceCount  string     `json:"audienceCount,omitempty"`
	LikeCount      string     `json:"likeCount,omitempty"`
	FollowCount    string     `json:"followCount,omitempty"`
	TotalUserCount string     `json:"totalUserCount,omitempty"`
	Status         RoomStatus `json:"status,omitempty"`
}

// RankItem 送礼点赞榜条目
type RankItem struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
	Rank     string `json:"rank"`
}

// DyMessage 统一的弹幕消息，按 Method 区分种类
type DyMessage struct {
	ID      string       `json:"id,omitempty"`
	Method  string       `json:"method"`
	RoomNum string       `json:"roomNum,omitempty"`
	User    *CastUser    `json:"user,omitempty"`
	Gift    *CastGift    `json:"gift,omitempty"`
	Content string       `json:"content,omitempty"`
	Rtf     []RtfContent `json:"rtfContent,omitempty"`
	Room    *LiveRoom    `json:"room,omitempty"`
	Rank    []RankItem   `json:"rank,omitempty"`
	// Timestamp 毫秒时间戳，上游缺失时回落到接收时间
	Timestamp int64 `json:"timestamp,omitempty"`
}
