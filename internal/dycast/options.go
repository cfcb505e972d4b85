package dycast

import "strings"

// DefaultBaseURL 弹幕推送服务默认地址
const DefaultBaseURL = "wss://webcast5-ws-web-lf.douyin.com/webcast/im/push/v2/"

// sdkVersion 平台 Web SDK 版本号
const sdkVersion = "1.0.14-beta.0"

const browserVersion = "5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// wsParams 每次连接解析出的动态参数
type wsParams struct {
	RoomID      string
	UniqueID    string
	Cursor      string
	InternalExt string
	Signature   string
}

// query 将连接参数与默认配置合并为查询串
//
// 键序固定，缺失的值序列化为空串；服务端按原样校验，不做 URL 转义
func (p *wsParams) query() string {
	pairs := [][2]string{
		{"app_name", "douyin_web"},
		{"version_code", "180800"},
		{"webcast_sdk_version", sdkVersion},
		{"update_version_code", sdkVersion},
		{"compress", "gzip"},
		{"device_platform", "web"},
		{"cookie_enabled", "true"},
		{"screen_width", "1920"},
		{"screen_height", "1080"},
		{"browser_language", "zh-CN"},
		{"browser_platform", "Win32"},
		{"browser_name", "Mozilla"},
		{"browser_version", browserVersion},
		{"browser_online", "true"},
		{"tz_name", "Asia/Shanghai"},
		{"cursor", p.Cursor},
		{"internal_ext", p.InternalExt},
		{"host", "https://live.douyin.com"},
		{"aid", "6383"},
		{"live_id", "1"},
		{"did_rule", "3"},
		{"endpoint", "live_pc"},
		{"support_wrds", "1"},
		{"user_unique_id", p.UniqueID},
		{"im_path", "/webcast/im/fetch/"},
		{"identity", "audience"},
		{"need_persist_msg_count", "15"},
		{"insert_task_id", ""},
		{"live_reason", ""},
		{"room_id", p.RoomID},
		{"heartbeatDuration", "0"},
		{"signature", p.Signature},
	}

	var sb strings.Builder
	for i, kv := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(kv[0])
		sb.WriteByte('=')
		sb.WriteString(kv[1])
	}
	return sb.String()
}
