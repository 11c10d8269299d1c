package kafka

import (
	"context"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message 待发送的消息
type Message struct {
	// Key 同一 Key 的消息路由到同一分区
	Key   []byte
	Value []byte

	// Headers 元数据，如 event_type、content-type
	Headers map[string]string
}

func (m *Message) toKafka() kafka.Message {
	km := kafka.Message{Key: m.Key, Value: m.Value}
	if len(m.Headers) == 0 {
		return km
	}

	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	km.Headers = make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(m.Headers[k])})
	}
	return km
}

// Writer 消息写入端，*kafka.Writer 满足该接口
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerStats 生产者统计
type ProducerStats struct {
	MessagesProduced  int64
	MessagesSucceeded int64
	MessagesFailed    int64
	LastMessageTime   time.Time
}
