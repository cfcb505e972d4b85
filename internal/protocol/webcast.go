package protocol

// 消息 method 标识
const (
	MethodChat        = "WebcastChatMessage"
	MethodGift        = "WebcastGiftMessage"
	MethodLike        = "WebcastLikeMessage"
	MethodMember      = "WebcastMemberMessage"
	MethodSocial      = "WebcastSocialMessage"
	MethodEmojiChat   = "WebcastEmojiChatMessage"
	MethodRoomUserSeq = "WebcastRoomUserSeqMessage"
	MethodControl     = "WebcastControlMessage"
	MethodRoomRank    = "WebcastRoomRankMessage"
	MethodRoomStats   = "WebcastRoomStatsMessage"
)

// Common 各消息体共有的公共部分
type Common struct {
	Method     string // 1
	MsgID      uint64 // 2
	RoomID     uint64 // 3
	CreateTime uint64 // 4 毫秒时间戳
	IsShowMsg  bool   // 6
	Describe   string // 7
}

// EncodeCommon 编码公共部分
func EncodeCommon(c *Common) []byte {
	if c == nil {
		return nil
	}
	var b []byte
	b = appendStringField(b, 1, c.Method)
	b = appendVarintField(b, 2, c.MsgID)
	b = appendVarintField(b, 3, c.RoomID)
	b = appendVarintField(b, 4, c.CreateTime)
	b = appendBoolField(b, 6, c.IsShowMsg)
	b = appendStringField(b, 7, c.Describe)
	return b
}

// DecodeCommon 解码公共部分
func DecodeCommon(data []byte) (*Common, error) {
	c := &Common{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c.Method = r.text()
		case 2:
			c.MsgID = r.varint()
		case 3:
			c.RoomID = r.varint()
		case 4:
			c.CreateTime = r.varint()
		case 6:
			c.IsShowMsg = r.bool()
		case 7:
			c.Describe = r.text()
		default:
			r.skip(num, typ)
		}
	}
	return c, r.err
}

// ImageContent 图片附加内容，表情图片的名称在这里
type ImageContent struct {
	Name string // 1
}

// Image 图片资源
type Image struct {
	URLList []string      // 1
	URI     string        // 2
	Content *ImageContent // 8
}

// FirstURL 返回首个图片地址，没有则为空串
func (im *Image) FirstURL() string {
	if im == nil || len(im.URLList) == 0 {
		return ""
	}
	return im.URLList[0]
}

// EncodeImage 编码图片资源
func EncodeImage(im *Image) []byte {
	if im == nil {
		return nil
	}
	var b []byte
	for _, u := range im.URLList {
		b = appendStringField(b, 1, u)
	}
	b = appendStringField(b, 2, im.URI)
	if im.Content != nil {
		var c []byte
		c = appendStringField(c, 1, im.Content.Name)
		b = appendMessageField(b, 8, c)
	}
	return b
}

// DecodeImage 解码图片资源
func DecodeImage(data []byte) (*Image, error) {
	im := &Image{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			im.URLList = append(im.URLList, r.text())
		case 2:
			im.URI = r.text()
		case 8:
			c := &ImageContent{}
			cr := newReader(r.bytes())
			for {
				cn, ct, cok := cr.next()
				if !cok {
					break
				}
				if cn == 1 {
					c.Name = cr.text()
				} else {
					cr.skip(cn, ct)
				}
			}
			if cr.err != nil {
				return nil, cr.err
			}
			im.Content = c
		default:
			r.skip(num, typ)
		}
	}
	return im, r.err
}

// User 弹幕用户
type User struct {
	ID          uint64 // 1
	ShortID     uint64 // 2
	Nickname    string // 3
	Gender      int32  // 4 0|1|2 => 未知|男|女
	AvatarThumb *Image // 9
	SecUID      string // 46
}

// EncodeUser 编码用户
func EncodeUser(u *User) []byte {
	if u == nil {
		return nil
	}
	var b []byte
	b = appendVarintField(b, 1, u.ID)
	b = appendVarintField(b, 2, u.ShortID)
	b = appendStringField(b, 3, u.Nickname)
	b = appendVarintField(b, 4, uint64(u.Gender))
	b = appendMessageField(b, 9, EncodeImage(u.AvatarThumb))
	b = appendStringField(b, 46, u.SecUID)
	return b
}

// DecodeUser 解码用户
func DecodeUser(data []byte) (*User, error) {
	u := &User{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			u.ID = r.varint()
		case 2:
			u.ShortID = r.varint()
		case 3:
			u.Nickname = r.text()
		case 4:
			u.Gender = int32(r.varint())
		case 9:
			im, err := DecodeImage(r.bytes())
			if err != nil {
				return nil, err
			}
			u.AvatarThumb = im
		case 46:
			u.SecUID = r.text()
		default:
			r.skip(num, typ)
		}
	}
	return u, r.err
}

// TextPieceImage 富文本中的图片片段
type TextPieceImage struct {
	Image *Image // 1
}

// TextPiece 富文本片段，普通文本取 StringValue，表情取 ImageValue
type TextPiece struct {
	Type        int32           // 1
	StringValue string          // 11
	ImageValue  *TextPieceImage // 25
}

// Text 富文本
type Text struct {
	Key            string       // 1
	DefaultPattern string       // 2
	Pieces         []*TextPiece // 4
}

// EncodeText 编码富文本
func EncodeText(t *Text) []byte {
	if t == nil {
		return nil
	}
	var b []byte
	b = appendStringField(b, 1, t.Key)
	b = appendStringField(b, 2, t.DefaultPattern)
	for _, p := range t.Pieces {
		var pb []byte
		pb = appendVarintField(pb, 1, uint64(p.Type))
		pb = appendStringField(pb, 11, p.StringValue)
		if p.ImageValue != nil {
			var iv []byte
			iv = appendMessageField(iv, 1, EncodeImage(p.ImageValue.Image))
			pb = appendMessageField(pb, 25, iv)
		}
		b = appendMessageField(b, 4, pb)
	}
	return b
}

// DecodeText 解码富文本
func DecodeText(data []byte) (*Text, error) {
	t := &Text{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			t.Key = r.text()
		case 2:
			t.DefaultPattern = r.text()
		case 4:
			p, err := decodeTextPiece(r.bytes())
			if err != nil {
				return nil, err
			}
			t.Pieces = append(t.Pieces, p)
		default:
			r.skip(num, typ)
		}
	}
	return t, r.err
}

func decodeTextPiece(data []byte) (*TextPiece, error) {
	p := &TextPiece{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			p.Type = int32(r.varint())
		case 11:
			p.StringValue = r.text()
		case 25:
			iv := &TextPieceImage{}
			ir := newReader(r.bytes())
			for {
				in, it, iok := ir.next()
				if !iok {
					break
				}
				if in == 1 {
					im, err := DecodeImage(ir.bytes())
					if err != nil {
						return nil, err
					}
					iv.Image = im
				} else {
					ir.skip(in, it)
				}
			}
			if ir.err != nil {
				return nil, ir.err
			}
			p.ImageValue = iv
		default:
			r.skip(num, typ)
		}
	}
	return p, r.err
}

// ChatMessage 聊天弹幕
type ChatMessage struct {
	Common          *Common // 1
	User            *User   // 2
	Content         string  // 3
	VisibleToSender bool    // 4
	RtfContent      *Text   // 25 含合并表情的富文本
}

// EncodeChatMessage 编码聊天弹幕
func EncodeChatMessage(m *ChatMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendMessageField(b, 2, EncodeUser(m.User))
	b = appendStringField(b, 3, m.Content)
	b = appendBoolField(b, 4, m.VisibleToSender)
	b = appendMessageField(b, 25, EncodeText(m.RtfContent))
	return b
}

// DecodeChatMessage 解码聊天弹幕
func DecodeChatMessage(data []byte) (*ChatMessage, error) {
	m := &ChatMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.User = u
		case 3:
			m.Content = r.text()
		case 4:
			m.VisibleToSender = r.bool()
		case 25:
			t, err := DecodeText(r.bytes())
			if err != nil {
				return nil, err
			}
			m.RtfContent = t
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// GiftStruct 礼物描述
type GiftStruct struct {
	Image        *Image // 1
	Describe     string // 2
	ID           uint64 // 5
	Combo        bool   // 10
	Type         uint32 // 11
	DiamondCount uint32 // 12 抖币价格
	Name         string // 16
	Icon         *Image // 21
}

// EncodeGiftStruct 编码礼物描述
func EncodeGiftStruct(g *GiftStruct) []byte {
	if g == nil {
		return nil
	}
	var b []byte
	b = appendMessageField(b, 1, EncodeImage(g.Image))
	b = appendStringField(b, 2, g.Describe)
	b = appendVarintField(b, 5, g.ID)
	b = appendBoolField(b, 10, g.Combo)
	b = appendVarintField(b, 11, uint64(g.Type))
	b = appendVarintField(b, 12, uint64(g.DiamondCount))
	b = appendStringField(b, 16, g.Name)
	b = appendMessageField(b, 21, EncodeImage(g.Icon))
	return b
}

// DecodeGiftStruct 解码礼物描述
func DecodeGiftStruct(data []byte) (*GiftStruct, error) {
	g := &GiftStruct{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			im, err := DecodeImage(r.bytes())
			if err != nil {
				return nil, err
			}
			g.Image = im
		case 2:
			g.Describe = r.text()
		case 5:
			g.ID = r.varint()
		case 10:
			g.Combo = r.bool()
		case 11:
			g.Type = uint32(r.varint())
		case 12:
			g.DiamondCount = uint32(r.varint())
		case 16:
			g.Name = r.text()
		case 21:
			im, err := DecodeImage(r.bytes())
			if err != nil {
				return nil, err
			}
			g.Icon = im
		default:
			r.skip(num, typ)
		}
	}
	return g, r.err
}

// GiftMessage 礼物弹幕
type GiftMessage struct {
	Common         *Common     // 1
	GiftID         uint64      // 2
	FanTicketCount uint64      // 3
	GroupCount     uint64      // 4
	RepeatCount    uint64      // 5
	ComboCount     uint64      // 6
	User           *User       // 7
	ToUser         *User       // 8
	RepeatEnd      uint32      // 9 0 表示连击尚未结束
	Gift           *GiftStruct // 15
}

// EncodeGiftMessage 编码礼物弹幕
func EncodeGiftMessage(m *GiftMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendVarintField(b, 2, m.GiftID)
	b = appendVarintField(b, 3, m.FanTicketCount)
	b = appendVarintField(b, 4, m.GroupCount)
	b = appendVarintField(b, 5, m.RepeatCount)
	b = appendVarintField(b, 6, m.ComboCount)
	b = appendMessageField(b, 7, EncodeUser(m.User))
	b = appendMessageField(b, 8, EncodeUser(m.ToUser))
	b = appendVarintField(b, 9, uint64(m.RepeatEnd))
	b = appendMessageField(b, 15, EncodeGiftStruct(m.Gift))
	return b
}

// DecodeGiftMessage 解码礼物弹幕
func DecodeGiftMessage(data []byte) (*GiftMessage, error) {
	m := &GiftMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			m.GiftID = r.varint()
		case 3:
			m.FanTicketCount = r.varint()
		case 4:
			m.GroupCount = r.varint()
		case 5:
			m.RepeatCount = r.varint()
		case 6:
			m.ComboCount = r.varint()
		case 7:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.User = u
		case 8:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.ToUser = u
		case 9:
			m.RepeatEnd = uint32(r.varint())
		case 15:
			g, err := DecodeGiftStruct(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Gift = g
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// LikeMessage 点赞弹幕
type LikeMessage struct {
	Common *Common // 1
	Count  uint64  // 2 本次点赞数
	Total  uint64  // 3 本场累计点赞数
	User   *User   // 5
}

// EncodeLikeMessage 编码点赞弹幕
func EncodeLikeMessage(m *LikeMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendVarintField(b, 2, m.Count)
	b = appendVarintField(b, 3, m.Total)
	b = appendMessageField(b, 5, EncodeUser(m.User))
	return b
}

// DecodeLikeMessage 解码点赞弹幕
func DecodeLikeMessage(data []byte) (*LikeMessage, error) {
	m := &LikeMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			m.Count = r.varint()
		case 3:
			m.Total = r.varint()
		case 5:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.User = u
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// MemberMessage 进入直播间弹幕
type MemberMessage struct {
	Common      *Common // 1
	User        *User   // 2
	MemberCount uint64  // 3 在线观众数
	Action      uint64  // 10
}

// EncodeMemberMessage 编码进房弹幕
func EncodeMemberMessage(m *MemberMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendMessageField(b, 2, EncodeUser(m.User))
	b = appendVarintField(b, 3, m.MemberCount)
	b = appendVarintField(b, 10, m.Action)
	return b
}

// DecodeMemberMessage 解码进房弹幕
func DecodeMemberMessage(data []byte) (*MemberMessage, error) {
	m := &MemberMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.User = u
		case 3:
			m.MemberCount = r.varint()
		case 10:
			m.Action = r.varint()
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// SocialMessage 关注弹幕
type SocialMessage struct {
	Common      *Common // 1
	User        *User   // 2
	ShareType   uint64  // 3
	Action      uint64  // 4
	FollowCount uint64  // 6 主播粉丝数
}

// EncodeSocialMessage 编码关注弹幕
func EncodeSocialMessage(m *SocialMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendMessageField(b, 2, EncodeUser(m.User))
	b = appendVarintField(b, 3, m.ShareType)
	b = appendVarintField(b, 4, m.Action)
	b = appendVarintField(b, 6, m.FollowCount)
	return b
}

// DecodeSocialMessage 解码关注弹幕
func DecodeSocialMessage(data []byte) (*SocialMessage, error) {
	m := &SocialMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.User = u
		case 3:
			m.ShareType = r.varint()
		case 4:
			m.Action = r.varint()
		case 6:
			m.FollowCount = r.varint()
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// EmojiChatMessage 会员表情弹幕
type EmojiChatMessage struct {
	Common         *Common // 1
	User           *User   // 2
	EmojiID        uint64  // 3
	EmojiContent   *Text   // 4
	DefaultContent string  // 5
}

// EncodeEmojiChatMessage 编码会员表情弹幕
func EncodeEmojiChatMessage(m *EmojiChatMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendMessageField(b, 2, EncodeUser(m.User))
	b = appendVarintField(b, 3, m.EmojiID)
	b = appendMessageField(b, 4, EncodeText(m.EmojiContent))
	b = appendStringField(b, 5, m.DefaultContent)
	return b
}

// DecodeEmojiChatMessage 解码会员表情弹幕
func DecodeEmojiChatMessage(data []byte) (*EmojiChatMessage, error) {
	m := &EmojiChatMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			m.User = u
		case 3:
			m.EmojiID = r.varint()
		case 4:
			t, err := DecodeText(r.bytes())
			if err != nil {
				return nil, err
			}
			m.EmojiContent = t
		case 5:
			m.DefaultContent = r.text()
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// Contributor 贡献榜条目
type Contributor struct {
	Score uint64 // 1
	User  *User  // 2
	Rank  uint64 // 3
}

// RoomUserSeqMessage 在线观众榜弹幕
type RoomUserSeqMessage struct {
	Common       *Common        // 1
	Ranks        []*Contributor // 2
	Total        int64          // 3 在线观众数
	TotalUser    int64          // 7 累计观看人数
	TotalUserStr string         // 8
	TotalStr     string         // 9
}

// EncodeRoomUserSeqMessage 编码在线观众榜弹幕
func EncodeRoomUserSeqMessage(m *RoomUserSeqMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	for _, c := range m.Ranks {
		var cb []byte
		cb = appendVarintField(cb, 1, c.Score)
		cb = appendMessageField(cb, 2, EncodeUser(c.User))
		cb = appendVarintField(cb, 3, c.Rank)
		b = appendMessageField(b, 2, cb)
	}
	b = appendVarintField(b, 3, uint64(m.Total))
	b = appendVarintField(b, 7, uint64(m.TotalUser))
	b = appendStringField(b, 8, m.TotalUserStr)
	b = appendStringField(b, 9, m.TotalStr)
	return b
}

// DecodeRoomUserSeqMessage 解码在线观众榜弹幕
func DecodeRoomUserSeqMessage(data []byte) (*RoomUserSeqMessage, error) {
	m := &RoomUserSeqMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			c, err := decodeContributor(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Ranks = append(m.Ranks, c)
		case 3:
			m.Total = int64(r.varint())
		case 7:
			m.TotalUser = int64(r.varint())
		case 8:
			m.TotalUserStr = r.text()
		case 9:
			m.TotalStr = r.text()
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

func decodeContributor(data []byte) (*Contributor, error) {
	c := &Contributor{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c.Score = r.varint()
		case 2:
			u, err := DecodeUser(r.bytes())
			if err != nil {
				return nil, err
			}
			c.User = u
		case 3:
			c.Rank = r.varint()
		default:
			r.skip(num, typ)
		}
	}
	return c, r.err
}

// ControlMessage 直播间控制弹幕，Action 为新的直播状态
type ControlMessage struct {
	Common *Common // 1
	Action int32   // 2
}

// EncodeControlMessage 编码控制弹幕
func EncodeControlMessage(m *ControlMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendVarintField(b, 2, uint64(m.Action))
	return b
}

// DecodeControlMessage 解码控制弹幕
func DecodeControlMessage(data []byte) (*ControlMessage, error) {
	m := &ControlMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			m.Action = int32(r.varint())
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// RoomRank 礼物榜条目
type RoomRank struct {
	User     *User  // 1
	ScoreStr string // 2
}

// RoomRankMessage 礼物榜弹幕
type RoomRankMessage struct {
	Common *Common     // 1
	Ranks  []*RoomRank // 2
}

// EncodeRoomRankMessage 编码礼物榜弹幕
func EncodeRoomRankMessage(m *RoomRankMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	for _, rk := range m.Ranks {
		var rb []byte
		rb = appendMessageField(rb, 1, EncodeUser(rk.User))
		rb = appendStringField(rb, 2, rk.ScoreStr)
		b = appendMessageField(b, 2, rb)
	}
	return b
}

// DecodeRoomRankMessage 解码礼物榜弹幕
func DecodeRoomRankMessage(data []byte) (*RoomRankMessage, error) {
	m := &RoomRankMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			rk := &RoomRank{}
			rr := newReader(r.bytes())
			for {
				rn, rt, rok := rr.next()
				if !rok {
					break
				}
				switch rn {
				case 1:
					u, err := DecodeUser(rr.bytes())
					if err != nil {
						return nil, err
					}
					rk.User = u
				case 2:
					rk.ScoreStr = rr.text()
				default:
					rr.skip(rn, rt)
				}
			}
			if rr.err != nil {
				return nil, rr.err
			}
			m.Ranks = append(m.Ranks, rk)
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}

// RoomStatsMessage 直播间统计弹幕
type RoomStatsMessage struct {
	Common        *Common // 1
	DisplayShort  string  // 2
	DisplayMiddle string  // 3 在线观众数展示值
	DisplayLong   string  // 4
	Total         int64   // 9
}

// EncodeRoomStatsMessage 编码统计弹幕
func EncodeRoomStatsMessage(m *RoomStatsMessage) []byte {
	var b []byte
	b = appendMessageField(b, 1, EncodeCommon(m.Common))
	b = appendStringField(b, 2, m.DisplayShort)
	b = appendStringField(b, 3, m.DisplayMiddle)
	b = appendStringField(b, 4, m.DisplayLong)
	b = appendVarintField(b, 9, uint64(m.Total))
	return b
}

// DecodeRoomStatsMessage 解码统计弹幕
func DecodeRoomStatsMessage(data []byte) (*RoomStatsMessage, error) {
	m := &RoomStatsMessage{}
	r := newReader(data)
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			c, err := DecodeCommon(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Common = c
		case 2:
			m.DisplayShort = r.text()
		case 3:
			m.DisplayMiddle = r.text()
		case 4:
			m.DisplayLong = r.text()
		case 9:
			m.Total = int64(r.varint())
		default:
			r.skip(num, typ)
		}
	}
	return m, r.err
}
