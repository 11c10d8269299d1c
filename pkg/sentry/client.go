// Package sentry 将服务端故障上报到 Sentry。
//
// nil *Client 是合法的空实现，未配置 DSN 时调用方无需判空。
package sentry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

// Option 客户端选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 在事件发出前调用 fn，返回 nil 则丢弃事件
func WithBeforeSend(fn func(*sentry.Event) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) {
		o.BeforeSend = func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return fn(e)
		}
	}
}

// Client Sentry 客户端
type Client struct {
	hub    *sentry.Hub // 独立 Hub，不污染全局 scope
	config *Config
	closed atomic.Bool

	captured atomic.Uint64
}

// New 创建 Sentry 客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := cfg.toClientOptions()
	for _, opt := range opts {
		opt(&options)
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(cfg.Tags)
	})

	return &Client{hub: hub, config: cfg}, nil
}

// CaptureException 上报错误，tags 只作用于本次事件
func (c *Client) CaptureException(err error, tags map[string]string) *sentry.EventID {
	if c == nil || err == nil || c.closed.Load() {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		id = c.hub.CaptureException(err)
	})
	if id != nil {
		c.captured.Add(1)
	}
	return id
}

// CapturePanic 上报 recover 得到的值，不会重新 panic
func (c *Client) CapturePanic(recovered any, tags map[string]string) *sentry.EventID {
	if c == nil || recovered == nil || c.closed.Load() {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelFatal)
		id = c.hub.Recover(recovered)
	})
	if id != nil {
		c.captured.Add(1)
	}
	return id
}

// Captured 已提交的事件数
func (c *Client) Captured() uint64 {
	if c == nil {
		return 0
	}
	return c.captured.Load()
}

// Flush 等待所有事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	if c == nil {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close 刷出剩余事件并关闭客户端
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}
