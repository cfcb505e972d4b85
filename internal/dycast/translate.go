package dycast

import (
	"fmt"
	"strconv"

	"github.com/hanxiao1024/dycast/internal/protocol"
)

// translate 将一条推送消息翻译为统一弹幕消息
//
// 未映射的 method 返回 (nil, nil)，整批继续处理
func (c *DyCast) translate(msg *protocol.Message) (*DyMessage, error) {
	if len(msg.Payload) == 0 {
		return nil, nil
	}

	data := &DyMessage{
		Method:  msg.Method,
		RoomNum: c.roomNum,
	}
	if msg.MsgID != 0 {
		data.ID = strconv.FormatInt(msg.MsgID, 10)
	}

	switch msg.Method {
	case protocol.MethodChat:
		m, err := protocol.DecodeChatMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.User = castUser(m.User)
		data.Content = m.Content
		data.Rtf = castRtfContent(m.RtfContent)
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodGift:
		m, err := protocol.DecodeGiftMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		count := m.RepeatCount
		if count == 0 {
			count = m.ComboCount
		}
		data.User = castUser(m.User)
		data.Gift = castGift(m.Gift, count, m.RepeatEnd)
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodLike:
		m, err := protocol.DecodeLikeMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.User = castUser(m.User)
		data.Content = fmt.Sprintf("为主播点赞了(%d)", m.Count)
		data.Room = &LiveRoom{LikeCount: strconv.FormatUint(m.Total, 10)}
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodMember:
		m, err := protocol.DecodeMemberMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.User = castUser(m.User)
		data.Content = "进入直播间"
		data.Room = &LiveRoom{AudienceCount: strconv.FormatUint(m.MemberCount, 10)}
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodSocial:
		m, err := protocol.DecodeSocialMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.User = castUser(m.User)
		data.Content = "关注了主播"
		data.Room = &LiveRoom{FollowCount: strconv.FormatUint(m.FollowCount, 10)}
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodEmojiChat:
		m, err := protocol.DecodeEmojiChatMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.User = castUser(m.User)
		data.Content = castEmoji(m.EmojiContent)
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodRoomUserSeq:
		m, err := protocol.DecodeRoomUserSeqMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.Rank = castSeqRanks(m.Ranks)
		data.Room = &LiveRoom{
			AudienceCount:  strconv.FormatInt(m.Total, 10),
			TotalUserCount: strconv.FormatInt(m.TotalUser, 10),
		}
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodControl:
		m, err := protocol.DecodeControlMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		if m.Common != nil {
			data.Content = m.Common.Describe
		}
		data.Timestamp = commonTime(m.Common)
		newStatus := RoomStatus(m.Action)
		if newStatus != 0 {
			c.applyStatus(newStatus)
			data.Room = &LiveRoom{Status: newStatus}
		}

	case protocol.MethodRoomRank:
		m, err := protocol.DecodeRoomRankMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.Rank = castRoomRanks(m.Ranks)
		data.Timestamp = commonTime(m.Common)

	case protocol.MethodRoomStats:
		m, err := protocol.DecodeRoomStatsMessage(msg.Payload)
		if err != nil {
			return nil, err
		}
		data.Room = &LiveRoom{AudienceCount: m.DisplayMiddle}
		data.Timestamp = commonTime(m.Common)

	default:
		// 未映射的 method 不产生事件
		return nil, nil
	}

	return data, nil
}

// applyStatus 应用直播状态变化：发出事件并触发钩子
func (c *DyCast) applyStatus(newStatus RoomStatus) {
	c.mu.Lock()
	oldStatus := c.status
	if newStatus == oldStatus {
		c.mu.Unlock()
		return
	}
	c.status = newStatus
	c.mu.Unlock()

	c.emit(Event{Type: EventStatusChange, OldStatus: oldStatus, NewStatus: newStatus})
	c.runStatusHooks(oldStatus, newStatus)
}

func commonTime(common *protocol.Common) int64 {
	if common == nil {
		return 0
	}
	return int64(common.CreateTime)
}

func castUser(u *protocol.User) *CastUser {
	if u == nil {
		return nil
	}
	id := u.SecUID
	if id == "" && u.ID != 0 {
		id = strconv.FormatUint(u.ID, 10)
	}
	return &CastUser{
		ID:     id,
		Name:   u.Nickname,
		Gender: u.Gender,
		Avatar: u.AvatarThumb.FirstURL(),
	}
}

func castGift(g *protocol.GiftStruct, count uint64, repeatEnd uint32) *CastGift {
	if g == nil {
		return nil
	}
	return &CastGift{
		ID:        g.ID,
		Name:      g.Name,
		Price:     g.DiamondCount,
		Type:      g.Type,
		Desc:      g.Describe,
		Icon:      g.Image.FirstURL(),
		Count:     count,
		RepeatEnd: repeatEnd,
	}
}

// castEmoji 提取会员表情的图片地址
func castEmoji(t *protocol.Text) string {
	if t == nil || len(t.Pieces) == 0 {
		return ""
	}
	p := t.Pieces[0]
	if p.ImageValue == nil {
		return ""
	}
	return p.ImageValue.Image.FirstURL()
}

// castRtfContent 提取富文本片段：普通文本与合并表情
func castRtfContent(t *protocol.Text) []RtfContent {
	if t == nil || len(t.Pieces) == 0 {
		return nil
	}
	list := make([]RtfContent, 0, len(t.Pieces))
	for _, p := range t.Pieces {
		if p.ImageValue == nil {
			list = append(list, RtfContent{
				Type: RtfText,
				Text: p.StringValue,
			})
			continue
		}
		var name string
		im := p.ImageValue.Image
		if im != nil && im.Content != nil {
			name = im.Content.Name
		}
		list = append(list, RtfContent{
			Type: RtfEmoji,
			Text: name,
			URL:  im.FirstURL(),
		})
	}
	return list
}

func castSeqRanks(ranks []*protocol.Contributor) []RankItem {
	if len(ranks) == 0 {
		return nil
	}
	list := make([]RankItem, 0, len(ranks))
	for i, item := range ranks {
		rank := item.Rank
		if rank == 0 {
			rank = uint64(i + 1)
		}
		it := RankItem{Rank: strconv.FormatUint(rank, 10)}
		if item.User != nil {
			it.Nickname = item.User.Nickname
			it.Avatar = item.User.AvatarThumb.FirstURL()
		}
		list = append(list, it)
	}
	return list
}

func castRoomRanks(ranks []*protocol.RoomRank) []RankItem {
	if len(ranks) == 0 {
		return nil
	}
	list := make([]RankItem, 0, len(ranks))
	for i, item := range ranks {
		rank := item.ScoreStr
		if rank == "" {
			rank = strconv.Itoa(i + 1)
		}
		it := RankItem{Rank: rank}
		if item.User != nil {
			it.Nickname = item.User.Nickname
			it.Avatar = item.User.AvatarThumb.FirstURL()
		}
		list = append(list, it)
	}
	return list
}
