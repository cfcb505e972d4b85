// Package sink 提供弹幕的 Kafka 落地
package sink

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/internal/dycast"
	"github.com/hanxiao1024/dycast/pkg/logger"
	"github.com/hanxiao1024/dycast/pkg/metrics"
)

// KafkaConfig Kafka 落地配置
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaSink 把解码后的弹幕写入 Kafka
//
// 每条弹幕一条消息，key 为房间号，同一房间落在同一分区以保序
type KafkaSink struct {
	cfg    *KafkaConfig
	writer *kafka.Writer
}

// NewKafkaSink 创建 Kafka 落地
func NewKafkaSink(cfg *KafkaConfig) *KafkaSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{}, // 按 key 哈希分区
	}

	return &KafkaSink{
		cfg:    cfg,
		writer: writer,
	}
}

// Publish 写入一批弹幕
//
// 序列化失败的单条跳过，写入失败记录错误但不向上游传播，
// 落地故障不能影响弹幕接收
func (s *KafkaSink) Publish(ctx context.Context, roomNum string, messages []*dycast.DyMessage) {
	if len(messages) == 0 {
		return
	}

	batch := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		value, err := json.Marshal(m)
		if err != nil {
			logger.Warn("弹幕序列化失败",
				zap.String("room", roomNum),
				zap.String("method", m.Method),
				zap.Error(err),
			)
			continue
		}
		batch = append(batch, kafka.Message{
			Key:   []byte(roomNum),
			Value: value,
		})
	}
	if len(batch) == 0 {
		return
	}

	if err := s.writer.WriteMessages(ctx, batch...); err != nil {
		metrics.SinkErrors.Inc()
		logger.Error("kafka 写入失败",
			zap.Error(err),
			zap.String("topic", s.cfg.Topic),
			zap.Int("count", len(batch)),
		)
		return
	}

	metrics.SinkMessages.Add(float64(len(batch)))
}

// Close 关闭生产者
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
