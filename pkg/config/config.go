// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config dycast 配置
type Config struct {
	// Rooms 启动时监控的房间号
	Rooms   []string      `yaml:"rooms"`
	Cast    CastConfig    `yaml:"cast"`
	Watcher WatcherConfig `yaml:"watcher"`
	Signer  SignerConfig  `yaml:"signer"`
	Hooks   HooksConfig   `yaml:"hooks"`
	Relay   RelayConfig   `yaml:"relay"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CastConfig 弹幕客户端配置
type CastConfig struct {
	// BaseURL 推送服务地址，空则使用平台默认
	BaseURL string `yaml:"base_url"`
	// APIBase 房间信息接口地址，空则使用平台默认
	APIBase string `yaml:"api_base"`
	// HeartbeatInterval 心跳间隔，低于 10s 时按 10s 处理
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// WatcherConfig 房间监控器配置
type WatcherConfig struct {
	// QueueInterval 连接队列中相邻两次尝试的间隔
	QueueInterval time.Duration `yaml:"queue_interval"`
	// RetryInterval 首次失败后的重试间隔
	RetryInterval time.Duration `yaml:"retry_interval"`
	// RetryMaxInterval 连续失败后的重试间隔
	RetryMaxInterval time.Duration `yaml:"retry_max_interval"`
}

// SignerConfig 签名服务配置
type SignerConfig struct {
	// Endpoint 签名服务地址，空则不签名
	Endpoint string `yaml:"endpoint"`
}

// HooksConfig 开播/下播钩子命令
type HooksConfig struct {
	OnLiveStart string `yaml:"on_live_start"`
	OnLiveEnd   string `yaml:"on_live_end"`
}

// RelayConfig 弹幕转发服务配置
type RelayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// SendQueueSize 每个订阅者的发送队列长度
	SendQueueSize int `yaml:"send_queue_size"`
}

// KafkaConfig Kafka 输出配置
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// StoreConfig 游标快照配置
type StoreConfig struct {
	// Path 快照文件路径，空则不保存
	Path string `yaml:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load 加载配置并填充默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cast.HeartbeatInterval <= 0 {
		c.Cast.HeartbeatInterval = 10 * time.Second
	}
	if c.Watcher.QueueInterval <= 0 {
		c.Watcher.QueueInterval = 500 * time.Millisecond
	}
	if c.Watcher.RetryInterval <= 0 {
		c.Watcher.RetryInterval = 5 * time.Second
	}
	if c.Watcher.RetryMaxInterval <= 0 {
		c.Watcher.RetryMaxInterval = 5 * time.Minute
	}
	if c.Relay.Addr == "" {
		c.Relay.Addr = ":8765"
	}
	if c.Relay.SendQueueSize <= 0 {
		c.Relay.SendQueueSize = 64
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) validate() error {
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka enabled but no brokers configured")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka enabled but no topic configured")
		}
	}
	return nil
}
