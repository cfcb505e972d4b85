// Package live 封装直播平台的 HTTP 接口：房间信息、IM 初始参数与签名
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hanxiao1024/dycast/internal/protocol"
)

var (
	// ErrRoomNotFound 房间不存在或接口未返回房间数据
	ErrRoomNotFound = errors.New("room not found")
)

// RoomInfo 房间信息，连接成功后保持不变，重连时重新解析
type RoomInfo struct {
	RoomNum  string `json:"roomNum"`
	RoomID   string `json:"roomId"`
	UniqueID string `json:"uniqueId"`
	Avatar   string `json:"avatar"`
	Cover    string `json:"cover"`
	Nickname string `json:"nickname"`
	Title    string `json:"title"`
	// Status 直播状态原始值，1~4 => 准备中|直播中|暂离|已下播
	Status int `json:"status"`
}

// ImInfo IM 初次连接参数
type ImInfo struct {
	Cursor        string
	InternalExt   string
	FetchInterval uint64
	Now           uint64
	PushServer    string
	LiveCursor    string
}

// Fetcher 房间信息获取接口
type Fetcher interface {
	// LiveInfo 按房间号获取房间信息
	LiveInfo(ctx context.Context, roomNum string) (*RoomInfo, error)
	// ImInfo 获取 IM 初始游标
	ImInfo(ctx context.Context, roomID, uniqueID string) (*ImInfo, error)
}

// HTTPFetcher 基于直播平台 Web 接口的 Fetcher 实现
type HTTPFetcher struct {
	base   string
	client *http.Client
	// ttwid 平台要求的设备 cookie，首次请求时自举
	ttwid string
}

// NewHTTPFetcher 创建 HTTP Fetcher
//
// base 为空时使用平台默认地址
func NewHTTPFetcher(base string) *HTTPFetcher {
	if base == "" {
		base = "https://live.douyin.com"
	}
	return &HTTPFetcher{
		base: base,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// bootstrap 自举 ttwid cookie
func (f *HTTPFetcher) bootstrap(ctx context.Context) error {
	if f.ttwid != "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.base+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, c := range resp.Cookies() {
		if c.Name == "ttwid" {
			f.ttwid = c.Value
			return nil
		}
	}
	return fmt.Errorf("bootstrap: ttwid cookie missing")
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// enterResponse 房间进入接口的响应，仅保留用到的字段
type enterResponse struct {
	Data struct {
		Data []struct {
			IDStr  string `json:"id_str"`
			Status int    `json:"status"`
			Title  string `json:"title"`
			Cover  struct {
				URLList []string `json:"url_list"`
			} `json:"cover"`
			Owner struct {
				Nickname    string `json:"nickname"`
				AvatarThumb struct {
					URLList []string `json:"url_list"`
				} `json:"avatar_thumb"`
			} `json:"owner"`
		} `json:"data"`
		User struct {
			IDStr string `json:"id_str"`
		} `json:"user"`
	} `json:"data"`
}

// LiveInfo 获取房间信息
func (f *HTTPFetcher) LiveInfo(ctx context.Context, roomNum string) (*RoomInfo, error) {
	if err := f.bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("fetch live info: %w", err)
	}

	q := url.Values{}
	q.Set("aid", "6383")
	q.Set("app_name", "douyin_web")
	q.Set("live_id", "1")
	q.Set("device_platform", "web")
	q.Set("language", "zh-CN")
	q.Set("enter_from", "web_live")
	q.Set("web_rid", roomNum)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.base+"/webcast/room/web/enter/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.AddCookie(&http.Cookie{Name: "ttwid", Value: f.ttwid})

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch live info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch live info: status %d", resp.StatusCode)
	}

	var er enterResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("fetch live info: %w", err)
	}
	if len(er.Data.Data) == 0 {
		return nil, ErrRoomNotFound
	}

	room := er.Data.Data[0]
	info := &RoomInfo{
		RoomNum:  roomNum,
		RoomID:   room.IDStr,
		UniqueID: er.Data.User.IDStr,
		Nickname: room.Owner.Nickname,
		Title:    room.Title,
		Status:   room.Status,
	}
	if len(room.Cover.URLList) > 0 {
		info.Cover = room.Cover.URLList[0]
	}
	if len(room.Owner.AvatarThumb.URLList) > 0 {
		info.Avatar = room.Owner.AvatarThumb.URLList[0]
	}
	return info, nil
}

// ImInfo 获取 IM 初始游标
//
// 接口返回 wire 格式的 Response，游标与扩展串从中提取
func (f *HTTPFetcher) ImInfo(ctx context.Context, roomID, uniqueID string) (*ImInfo, error) {
	q := url.Values{}
	q.Set("aid", "6383")
	q.Set("app_name", "douyin_web")
	q.Set("live_id", "1")
	q.Set("device_platform", "web")
	q.Set("room_id", roomID)
	q.Set("user_unique_id", uniqueID)
	q.Set("fetch_rule", "1")
	q.Set("last_rtt", "0")
	q.Set("resp_content_type", "protobuf")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.base+"/webcast/im/fetch/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if f.ttwid != "" {
		req.AddCookie(&http.Cookie{Name: "ttwid", Value: f.ttwid})
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch im info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch im info: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch im info: %w", err)
	}
	res, err := protocol.DecodeResponse(body)
	if err != nil {
		return nil, fmt.Errorf("fetch im info: %w", err)
	}

	return &ImInfo{
		Cursor:        res.Cursor,
		InternalExt:   res.InternalExt,
		FetchInterval: res.FetchInterval,
		Now:           res.Now,
		PushServer:    res.PushServer,
		LiveCursor:    res.LiveCursor,
	}, nil
}
