// Package kafka 封装 segmentio/kafka-go 的生产者。
package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

// Producer 单个 topic 的生产者
type Producer struct {
	topic  string
	writer Writer
	logger logger.Logger

	produced  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	mu       sync.Mutex
	lastSent time.Time

	closed atomic.Bool
}

// NewProducer 按配置创建生产者，cfg 中未设置的字段使用默认值
func NewProducer(cfg *Config, l logger.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	// Async 为 false 时无法通过合并覆盖默认值，这里以调用方为准
	merged.Async = cfg.Async

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(merged.Brokers...),
		Topic:                  merged.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              merged.BatchSize,
		BatchTimeout:           merged.BatchTimeout,
		MaxAttempts:            merged.MaxRetries + 1,
		WriteTimeout:           merged.WriteTimeout,
		ReadTimeout:            merged.ReadTimeout,
		RequiredAcks:           kafka.RequiredAcks(merged.RequiredAcks),
		Async:                  merged.Async,
		Compression:            parseCompression(merged.Compression),
		AllowAutoTopicCreation: true,
	}
	return NewProducerWithWriter(writer, merged.Topic, l), nil
}

// NewProducerWithWriter 使用现成的 Writer 创建生产者
func NewProducerWithWriter(w Writer, topic string, l logger.Logger) *Producer {
	if l == nil {
		l = logger.NewNoop()
	}
	return &Producer{
		topic:  topic,
		writer: w,
		logger: l.Named("kafka.producer"),
	}
}

// Publish 发布单条消息
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	p.produced.Add(1)
	if err := p.writer.WriteMessages(ctx, msg.toKafka()); err != nil {
		p.failed.Add(1)
		return err
	}

	p.succeeded.Add(1)
	p.mu.Lock()
	p.lastSent = time.Now()
	p.mu.Unlock()
	return nil
}

// PublishJSON 发布 JSON 消息
func (p *Producer) PublishJSON(ctx context.Context, key string, value []byte, headers map[string]string) error {
	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	h["content-type"] = "application/json"

	return p.Publish(ctx, &Message{
		Key:     []byte(key),
		Value:   value,
		Headers: h,
	})
}

// Topic 返回 topic 名称
func (p *Producer) Topic() string {
	return p.topic
}

// Stats 返回统计信息
func (p *Producer) Stats() ProducerStats {
	p.mu.Lock()
	last := p.lastSent
	p.mu.Unlock()
	return ProducerStats{
		MessagesProduced:  p.produced.Load(),
		MessagesSucceeded: p.succeeded.Load(),
		MessagesFailed:    p.failed.Load(),
		LastMessageTime:   last,
	}
}

// Close 关闭生产者，重复关闭返回 nil
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.logger.Debug("producer closing", "topic", p.topic)
	return p.writer.Close()
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0 // none
	}
}
