package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lk2023060901/kickoff/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var ErrAppAlreadyRunning = errors.New("application is already running")

// Application 应用生命周期
type Application interface {
	Run() error
	Shutdown()
}

// Server 长期运行的组件（HTTP 服务、定时任务），ctx 取消时应返回
type Server interface {
	Run(ctx context.Context) error
}

// Closer 资源清理接口（DB、Redis 等）
type Closer interface {
	Close() error
}

// BaseApp Application 的基础实现
type BaseApp struct {
	opts    Options
	logger  logger.Logger
	servers []Server
	closers []Closer

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex

	started atomic.Bool
}

// NewBaseApp 创建应用，SIGINT/SIGTERM 会取消根 context
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return &BaseApp{
		opts:   o,
		logger: o.Logger.Named(o.Name),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run 启动所有 Server 并阻塞，任一 Server 出错或收到信号后关闭
func (a *BaseApp) Run() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	a.logger.Info("application starting",
		"name", info.AppName,
		"version", info.Version,
		"commit", info.GitCommit,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
	)

	a.mu.Lock()
	servers := append([]Server(nil), a.servers...)
	a.mu.Unlock()

	g, gctx := errgroup.WithContext(a.ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var runErr error
	select {
	case runErr = <-done:
	case <-a.ctx.Done():
		a.logger.Info("shutdown requested")
		select {
		case runErr = <-done:
		case <-time.After(a.opts.StopTimeout):
			a.logger.Warn("shutdown timeout, forcing exit", "timeout", a.opts.StopTimeout)
			runErr = fmt.Errorf("servers did not stop within %s", a.opts.StopTimeout)
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		a.logger.Error("server exited with error", "error", runErr)
	} else {
		runErr = nil
	}

	a.Shutdown()
	return runErr
}

// Shutdown 取消根 context，并按注册逆序关闭 Closer
func (a *BaseApp) Shutdown() {
	a.cancel()

	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
		}
	}

	a.logger.Info("application exited")
	_ = a.logger.Sync()
}

// AppendServer 添加 Server
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加 Closer
func (a *BaseApp) AppendCloser(closer ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, closer...)
}
