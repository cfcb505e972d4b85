package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanxiao1024/dycast/internal/protocol"
)

// newPlatformStub 模拟平台侧的进入房间与 IM 拉取接口
func newPlatformStub(t *testing.T, enterBody string, imResp *protocol.Response) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "ttwid", Value: "test-ttwid"})
	})
	mux.HandleFunc("/webcast/room/web/enter/", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("ttwid"); err != nil || c.Value != "test-ttwid" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(enterBody))
	})
	mux.HandleFunc("/webcast/im/fetch/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(protocol.EncodeResponse(imResp))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const enterBody = `{
	"data": {
		"data": [{
			"id_str": "7300000000000001",
			"status": 2,
			"title": "直播标题",
			"cover": {"url_list": ["https://p3.example/cover.webp"]},
			"owner": {
				"nickname": "主播",
				"avatar_thumb": {"url_list": ["https://p3.example/avatar.webp"]}
			}
		}],
		"user": {"id_str": "7100000000000002"}
	}
}`

func TestHTTPFetcher_LiveInfo(t *testing.T) {
	srv := newPlatformStub(t, enterBody, &protocol.Response{})
	f := NewHTTPFetcher(srv.URL)

	info, err := f.LiveInfo(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, "123456", info.RoomNum)
	assert.Equal(t, "7300000000000001", info.RoomID)
	assert.Equal(t, "7100000000000002", info.UniqueID)
	assert.Equal(t, "主播", info.Nickname)
	assert.Equal(t, "直播标题", info.Title)
	assert.Equal(t, "https://p3.example/cover.webp", info.Cover)
	assert.Equal(t, "https://p3.example/avatar.webp", info.Avatar)
	assert.Equal(t, 2, info.Status)
}

func TestHTTPFetcher_LiveInfoRoomNotFound(t *testing.T) {
	srv := newPlatformStub(t, `{"data":{"data":[],"user":{"id_str":""}}}`, &protocol.Response{})
	f := NewHTTPFetcher(srv.URL)

	_, err := f.LiveInfo(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHTTPFetcher_ImInfo(t *testing.T) {
	srv := newPlatformStub(t, enterBody, &protocol.Response{
		Cursor:        "fh-1_t-2",
		InternalExt:   "internal_src:dim",
		FetchInterval: 1000,
		Now:           1700000000000,
		PushServer:    "wss-push",
		LiveCursor:    "live-1",
	})
	f := NewHTTPFetcher(srv.URL)

	im, err := f.ImInfo(context.Background(), "7300000000000001", "7100000000000002")
	require.NoError(t, err)
	assert.Equal(t, "fh-1_t-2", im.Cursor)
	assert.Equal(t, "internal_src:dim", im.InternalExt)
	assert.Equal(t, uint64(1000), im.FetchInterval)
	assert.Equal(t, "wss-push", im.PushServer)
	assert.Equal(t, "live-1", im.LiveCursor)
}

func TestHTTPFetcher_BootstrapRequiresTtwid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 不下发 ttwid cookie
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(srv.URL)
	_, err := f.LiveInfo(context.Background(), "123456")
	assert.ErrorContains(t, err, "ttwid")
}

func TestHTTPSigner_Sign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RoomID   string `json:"room_id"`
			UniqueID string `json:"unique_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "7300000000000001", req.RoomID)
		assert.Equal(t, "7100000000000002", req.UniqueID)
		json.NewEncoder(w).Encode(map[string]string{"signature": "00ff00ff"})
	}))
	t.Cleanup(srv.Close)

	s := NewHTTPSigner(srv.URL)
	sig, err := s.Sign(context.Background(), "7300000000000001", "7100000000000002")
	require.NoError(t, err)
	assert.Equal(t, "00ff00ff", sig)
}

func TestHTTPSigner_EmptySignatureRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signature": ""})
	}))
	t.Cleanup(srv.Close)

	s := NewHTTPSigner(srv.URL)
	_, err := s.Sign(context.Background(), "1", "2")
	assert.ErrorContains(t, err, "empty signature")
}

func TestNoopSigner(t *testing.T) {
	sig, err := NoopSigner{}.Sign(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "", sig)
}
