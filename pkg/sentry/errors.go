package sentry

import "errors"

var (
	ErrNilConfig     = errors.New("sentry: nil config")
	ErrInvalidDSN    = errors.New("sentry: DSN is required")
	ErrInvalidConfig = errors.New("sentry: sample rate or breadcrumbs out of range")

	// ErrClientClosed 重复关闭
	ErrClientClosed = errors.New("sentry: client closed")
)
