package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dycast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
rooms:
  - "123456"
  - "654321"
cast:
  base_url: "wss://example.com/push/"
  api_base: "https://example.com"
  heartbeat_interval: 15s
watcher:
  queue_interval: 1s
  retry_interval: 10s
  retry_max_interval: 10m
signer:
  endpoint: "http://localhost:8787/sign"
hooks:
  on_live_start: "notify.sh start"
  on_live_end: "notify.sh end"
relay:
  enabled: true
  addr: ":9876"
  send_queue_size: 128
kafka:
  enabled: true
  brokers:
    - "localhost:9092"
  topic: "danmu"
store:
  path: "/var/lib/dycast/cursors.bin"
log:
  level: debug
  format: console
metrics:
  enabled: true
  addr: ":9200"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"123456", "654321"}, cfg.Rooms)
	assert.Equal(t, "wss://example.com/push/", cfg.Cast.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Cast.HeartbeatInterval)
	assert.Equal(t, time.Second, cfg.Watcher.QueueInterval)
	assert.Equal(t, 10*time.Second, cfg.Watcher.RetryInterval)
	assert.Equal(t, 10*time.Minute, cfg.Watcher.RetryMaxInterval)
	assert.Equal(t, "http://localhost:8787/sign", cfg.Signer.Endpoint)
	assert.Equal(t, "notify.sh start", cfg.Hooks.OnLiveStart)
	assert.True(t, cfg.Relay.Enabled)
	assert.Equal(t, ":9876", cfg.Relay.Addr)
	assert.Equal(t, 128, cfg.Relay.SendQueueSize)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "danmu", cfg.Kafka.Topic)
	assert.Equal(t, "/var/lib/dycast/cursors.bin", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9200", cfg.Metrics.Addr)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
rooms:
  - "123456"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Cast.HeartbeatInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Watcher.QueueInterval)
	assert.Equal(t, 5*time.Second, cfg.Watcher.RetryInterval)
	assert.Equal(t, 5*time.Minute, cfg.Watcher.RetryMaxInterval)
	assert.Equal(t, ":8765", cfg.Relay.Addr)
	assert.Equal(t, 64, cfg.Relay.SendQueueSize)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoad_KafkaValidation(t *testing.T) {
	path := writeConfig(t, `
kafka:
  enabled: true
  topic: "danmu"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "no brokers")

	path = writeConfig(t, `
kafka:
  enabled: true
  brokers:
    - "localhost:9092"
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "no topic")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "rooms: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}
