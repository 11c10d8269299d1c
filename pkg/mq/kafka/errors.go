package kafka

import "errors"

var (
	ErrInvalidConfig = errors.New("kafka: invalid config")
	ErrNoBrokers     = errors.New("kafka: no brokers configured")
	ErrEmptyTopic    = errors.New("kafka: empty topic")

	// ErrProducerClosed 生产者已关闭
	ErrProducerClosed = errors.New("kafka: producer is closed")
)
