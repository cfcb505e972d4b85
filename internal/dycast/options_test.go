package dycast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSParams_QueryKeyOrder(t *testing.T) {
	p := &wsParams{
		RoomID:      "7300000000000001",
		UniqueID:    "7100000000000002",
		Cursor:      "fh-1_t-2",
		InternalExt: "internal_src:dim",
		Signature:   "00000000",
	}

	q := p.query()
	var keys []string
	for _, kv := range strings.Split(q, "&") {
		k, _, found := strings.Cut(kv, "=")
		require.True(t, found, "pair %q missing '='", kv)
		keys = append(keys, k)
	}

	want := []string{
		"app_name", "version_code", "webcast_sdk_version", "update_version_code",
		"compress", "device_platform", "cookie_enabled", "screen_width",
		"screen_height", "browser_language", "browser_platform", "browser_name",
		"browser_version", "browser_online", "tz_name", "cursor", "internal_ext",
		"host", "aid", "live_id", "did_rule", "endpoint", "support_wrds",
		"user_unique_id", "im_path", "identity", "need_persist_msg_count",
		"insert_task_id", "live_reason", "room_id", "heartbeatDuration", "signature",
	}
	assert.Equal(t, want, keys)

	assert.Contains(t, q, "cursor=fh-1_t-2&")
	assert.Contains(t, q, "room_id=7300000000000001&")
	assert.True(t, strings.HasSuffix(q, "signature=00000000"))
}

func TestWSParams_EmptyValuesKeepKeys(t *testing.T) {
	q := (&wsParams{}).query()

	// 缺失的值序列化为空串，键不省略
	assert.Contains(t, q, "cursor=&internal_ext=&")
	assert.Contains(t, q, "insert_task_id=&live_reason=&room_id=&")
	assert.True(t, strings.HasSuffix(q, "signature="))
}
