// Package metrics 提供 Prometheus 监控指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 弹幕客户端指标
var (
	// 连接指标
	CastConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dycast_connections",
		Help: "Number of open danmu connections",
	})

	CastReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_reconnects_total",
		Help: "Total in-session reconnect attempts",
	})

	// 消息指标
	CastFramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_frames_received_total",
		Help: "Total push frames received",
	})

	CastMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dycast_messages_total",
		Help: "Total decoded danmu messages",
	}, []string{"method"})

	CastDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_decode_errors_total",
		Help: "Total frame/message decode failures",
	})

	CastAcksSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_acks_sent_total",
		Help: "Total ack frames sent",
	})

	CastBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dycast_message_batch_size",
		Help:    "Decoded messages per push frame",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	// 钩子指标
	CastHookRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dycast_hook_runs_total",
		Help: "Total hook command executions",
	}, []string{"hook"})
)

// 房间监控器指标
var (
	WatcherRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dycast_watcher_rooms",
		Help: "Number of watched rooms",
	})

	WatcherConnectedRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dycast_watcher_connected_rooms",
		Help: "Number of rooms currently marked connected",
	})

	WatcherQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dycast_watcher_queue_length",
		Help: "Rooms waiting in the connection queue",
	})

	WatcherConnectAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_watcher_connect_attempts_total",
		Help: "Total connection attempts drained from the queue",
	})

	WatcherRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_watcher_retries_total",
		Help: "Total scheduled retry attempts",
	})
)

// 输出端指标
var (
	RelaySubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dycast_relay_subscribers",
		Help: "Number of connected relay subscribers",
	})

	RelayMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_relay_messages_sent_total",
		Help: "Total batches broadcast to relay subscribers",
	})

	RelayMessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_relay_messages_dropped_total",
		Help: "Total batches dropped due to slow subscribers",
	})

	SinkMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_sink_messages_total",
		Help: "Total messages published to kafka",
	})

	SinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dycast_sink_errors_total",
		Help: "Total kafka publish failures",
	})
)

// Serve 启动 /metrics 服务
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
