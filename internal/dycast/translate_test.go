package dycast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanxiao1024/dycast/internal/protocol"
)

func newTestCast(t *testing.T) (*DyCast, *eventRecorder) {
	t.Helper()
	c := New("123456", Config{})
	rec := &eventRecorder{}
	c.OnEvent(rec.handler)
	return c, rec
}

func TestTranslate_Chat(t *testing.T) {
	c, _ := newTestCast(t)

	payload := protocol.EncodeChatMessage(&protocol.ChatMessage{
		Common: &protocol.Common{CreateTime: 1700000000000},
		User: &protocol.User{
			ID:          42,
			SecUID:      "MS4wLjABAAAAxx",
			Nickname:    "观众甲",
			Gender:      2,
			AvatarThumb: &protocol.Image{URLList: []string{"https://p3.example/a.webp"}},
		},
		Content: "主播好[比心]",
		RtfContent: &protocol.Text{Pieces: []*protocol.TextPiece{
			{Type: 1, StringValue: "主播好"},
			{Type: 2, ImageValue: &protocol.TextPieceImage{Image: &protocol.Image{
				URLList: []string{"https://p3.example/e.webp"},
				Content: &protocol.ImageContent{Name: "[比心]"},
			}}},
		}},
	})

	got, err := c.translate(&protocol.Message{Method: protocol.MethodChat, Payload: payload, MsgID: 7})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "7", got.ID)
	assert.Equal(t, protocol.MethodChat, got.Method)
	assert.Equal(t, "123456", got.RoomNum)
	assert.Equal(t, "主播好[比心]", got.Content)
	assert.Equal(t, int64(1700000000000), got.Timestamp)

	require.NotNil(t, got.User)
	// SecUID 优先于数字 ID
	assert.Equal(t, "MS4wLjABAAAAxx", got.User.ID)
	assert.Equal(t, "观众甲", got.User.Name)
	assert.Equal(t, "https://p3.example/a.webp", got.User.Avatar)

	require.Len(t, got.Rtf, 2)
	assert.Equal(t, RtfText, got.Rtf[0].Type)
	assert.Equal(t, "主播好", got.Rtf[0].Text)
	assert.Equal(t, RtfEmoji, got.Rtf[1].Type)
	assert.Equal(t, "[比心]", got.Rtf[1].Text)
	assert.Equal(t, "https://p3.example/e.webp", got.Rtf[1].URL)
}

func TestTranslate_UserIDFallsBackToNumeric(t *testing.T) {
	c, _ := newTestCast(t)

	payload := protocol.EncodeChatMessage(&protocol.ChatMessage{
		User:    &protocol.User{ID: 42, Nickname: "无秘钥"},
		Content: "hi",
	})
	got, err := c.translate(&protocol.Message{Method: protocol.MethodChat, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "42", got.User.ID)
}

func TestTranslate_GiftRepeatFallsBackToCombo(t *testing.T) {
	c, _ := newTestCast(t)

	gift := &protocol.GiftStruct{
		ID:           685,
		Name:         "小心心",
		DiamondCount: 1,
		Describe:     "送出了小心心",
		Image:        &protocol.Image{URLList: []string{"https://p3.example/g.webp"}},
	}

	// repeatCount 缺失时取 comboCount
	payload := protocol.EncodeGiftMessage(&protocol.GiftMessage{
		User:       &protocol.User{Nickname: "送礼人"},
		ComboCount: 9,
		Gift:       gift,
	})
	got, err := c.translate(&protocol.Message{Method: protocol.MethodGift, Payload: payload})
	require.NoError(t, err)
	require.NotNil(t, got.Gift)
	assert.Equal(t, uint64(9), got.Gift.Count)
	assert.Equal(t, "小心心", got.Gift.Name)
	assert.Equal(t, uint32(1), got.Gift.Price)
	assert.Equal(t, "https://p3.example/g.webp", got.Gift.Icon)
	assert.Equal(t, uint32(0), got.Gift.RepeatEnd)

	// repeatCount 存在时优先
	payload = protocol.EncodeGiftMessage(&protocol.GiftMessage{
		RepeatCount: 3,
		ComboCount:  9,
		RepeatEnd:   1,
		Gift:        gift,
	})
	got, err = c.translate(&protocol.Message{Method: protocol.MethodGift, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Gift.Count)
	assert.Equal(t, uint32(1), got.Gift.RepeatEnd)
}

func TestTranslate_LikeMemberSocial(t *testing.T) {
	c, _ := newTestCast(t)

	like, err := c.translate(&protocol.Message{
		Method: protocol.MethodLike,
		Payload: protocol.EncodeLikeMessage(&protocol.LikeMessage{
			User:  &protocol.User{Nickname: "点赞人"},
			Count: 15,
			Total: 88888,
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "为主播点赞了(15)", like.Content)
	require.NotNil(t, like.Room)
	assert.Equal(t, "88888", like.Room.LikeCount)

	member, err := c.translate(&protocol.Message{
		Method: protocol.MethodMember,
		Payload: protocol.EncodeMemberMessage(&protocol.MemberMessage{
			User:        &protocol.User{Nickname: "路人"},
			MemberCount: 321,
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "进入直播间", member.Content)
	assert.Equal(t, "321", member.Room.AudienceCount)

	social, err := c.translate(&protocol.Message{
		Method: protocol.MethodSocial,
		Payload: protocol.EncodeSocialMessage(&protocol.SocialMessage{
			User:        &protocol.User{Nickname: "新粉"},
			FollowCount: 888,
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "关注了主播", social.Content)
	assert.Equal(t, "888", social.Room.FollowCount)
}

func TestTranslate_EmojiChat(t *testing.T) {
	c, _ := newTestCast(t)

	payload := protocol.EncodeEmojiChatMessage(&protocol.EmojiChatMessage{
		User: &protocol.User{Nickname: "会员"},
		EmojiContent: &protocol.Text{Pieces: []*protocol.TextPiece{
			{Type: 2, ImageValue: &protocol.TextPieceImage{Image: &protocol.Image{
				URLList: []string{"https://p3.example/vip.webp"},
			}}},
		}},
	})
	got, err := c.translate(&protocol.Message{Method: protocol.MethodEmojiChat, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "https://p3.example/vip.webp", got.Content)
}

func TestTranslate_RoomUserSeqRankFallback(t *testing.T) {
	c, _ := newTestCast(t)

	payload := protocol.EncodeRoomUserSeqMessage(&protocol.RoomUserSeqMessage{
		Ranks: []*protocol.Contributor{
			{User: &protocol.User{Nickname: "榜一"}, Rank: 1},
			{User: &protocol.User{Nickname: "榜二"}}, // rank 缺失按序号补
		},
		Total:     1024,
		TotalUser: 99999,
	})
	got, err := c.translate(&protocol.Message{Method: protocol.MethodRoomUserSeq, Payload: payload})
	require.NoError(t, err)

	require.Len(t, got.Rank, 2)
	assert.Equal(t, "1", got.Rank[0].Rank)
	assert.Equal(t, "榜一", got.Rank[0].Nickname)
	assert.Equal(t, "2", got.Rank[1].Rank)
	assert.Equal(t, "1024", got.Room.AudienceCount)
	assert.Equal(t, "99999", got.Room.TotalUserCount)
}

func TestTranslate_RoomRankAndStats(t *testing.T) {
	c, _ := newTestCast(t)

	rank, err := c.translate(&protocol.Message{
		Method: protocol.MethodRoomRank,
		Payload: protocol.EncodeRoomRankMessage(&protocol.RoomRankMessage{
			Ranks: []*protocol.RoomRank{
				{User: &protocol.User{Nickname: "甲"}, ScoreStr: "1"},
				{User: &protocol.User{Nickname: "乙"}},
			},
		}),
	})
	require.NoError(t, err)
	require.Len(t, rank.Rank, 2)
	assert.Equal(t, "1", rank.Rank[0].Rank)
	assert.Equal(t, "2", rank.Rank[1].Rank)

	stats, err := c.translate(&protocol.Message{
		Method: protocol.MethodRoomStats,
		Payload: protocol.EncodeRoomStatsMessage(&protocol.RoomStatsMessage{
			DisplayMiddle: "1.2万",
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.2万", stats.Room.AudienceCount)
}

func TestTranslate_ControlEmitsStatusChange(t *testing.T) {
	c, rec := newTestCast(t)
	c.status = StatusLiving

	payload := protocol.EncodeControlMessage(&protocol.ControlMessage{
		Common: &protocol.Common{Describe: "直播已结束"},
		Action: int32(StatusEnd),
	})
	got, err := c.translate(&protocol.Message{Method: protocol.MethodControl, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, "直播已结束", got.Content)
	require.NotNil(t, got.Room)
	assert.Equal(t, StatusEnd, got.Room.Status)
	assert.Equal(t, StatusEnd, c.Status())

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, EventStatusChange, events[0].Type)
	assert.Equal(t, StatusLiving, events[0].OldStatus)
	assert.Equal(t, StatusEnd, events[0].NewStatus)

	// 重复同一状态不再发事件
	_, err = c.translate(&protocol.Message{Method: protocol.MethodControl, Payload: payload})
	require.NoError(t, err)
	assert.Len(t, rec.snapshot(), 1)
}

func TestTranslate_UnknownMethodSkipped(t *testing.T) {
	c, _ := newTestCast(t)

	got, err := c.translate(&protocol.Message{Method: "WebcastFansclubMessage", Payload: []byte{0x08, 0x01}})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.translate(&protocol.Message{Method: protocol.MethodChat})
	require.NoError(t, err)
	assert.Nil(t, got)
}
