package kafka

import "time"

// Config Kafka 生产者配置，Brokers 为空表示不投递事件
type Config struct {
	Brokers []string `mapstructure:"brokers"`

	// Topic 事件主题
	Topic string `mapstructure:"topic"`

	// BatchSize 批量大小（异步模式下，累积多少条消息后发送）
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`

	MaxRetries int `mapstructure:"max_retries"`

	// RequiredAcks 确认模式
	// 0: 不等待确认
	// 1: 等待 Leader 确认
	// -1: 等待所有副本确认
	RequiredAcks int `mapstructure:"required_acks"`

	// Compression 压缩算法: none, gzip, snappy, lz4, zstd
	Compression string `mapstructure:"compression"`

	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`

	// Async 异步发送时 Publish 不等待 broker 响应
	Async bool `mapstructure:"async"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		BatchSize:    100,
		BatchTimeout: time.Second,
		MaxRetries:   3,
		RequiredAcks: -1,
		Compression:  "snappy",
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
}

// Enabled 是否配置了 broker
func (c *Config) Enabled() bool {
	return c != nil && len(c.Brokers) > 0
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	if c.Topic == "" {
		return ErrEmptyTopic
	}
	if c.RequiredAcks < -1 || c.RequiredAcks > 1 {
		return ErrInvalidConfig
	}
	return nil
}
