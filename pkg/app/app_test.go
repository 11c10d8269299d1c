package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcServer func(ctx context.Context) error

func (f funcServer) Run(ctx context.Context) error { return f(ctx) }

type recordingCloser struct {
	name  string
	mu    *sync.Mutex
	order *[]string
}

func (c recordingCloser) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.order = append(*c.order, c.name)
	return nil
}

// TestBaseApp_ServerErrorStopsAll 一个 Server 失败会取消其余 Server 并逆序关闭资源
func TestBaseApp_ServerErrorStopsAll(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithName("test"), WithStopTimeout(time.Second))

	var mu sync.Mutex
	var order []string
	a.AppendCloser(
		recordingCloser{"db", &mu, &order},
		recordingCloser{"redis", &mu, &order},
	)

	boom := errors.New("listen failed")
	stopped := make(chan struct{})
	a.AppendServer(
		funcServer(func(ctx context.Context) error { return boom }),
		funcServer(func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}),
	)

	err := a.Run()
	require.ErrorIs(t, err, boom)
	<-stopped
	assert.Equal(t, []string{"redis", "db"}, order)

	assert.ErrorIs(t, a.Run(), ErrAppAlreadyRunning)
}

// TestBaseApp_Shutdown 外部 Shutdown 使 Run 正常返回
func TestBaseApp_Shutdown(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithStopTimeout(time.Second))
	a.AppendServer(funcServer(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	go func() {
		time.Sleep(20 * time.Millisecond)
		a.Shutdown()
	}()
	assert.NoError(t, a.Run())
}

func TestInitApp(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	closed := false
	app := InitApp(a, AppComponents{Closers: []Closer{CloserFunc(func() error { closed = true; return nil })}})
	app.Shutdown()
	assert.True(t, closed)
}

func TestWatchConfig_NotLoaded(t *testing.T) {
	loaded = nil
	assert.ErrorIs(t, WatchConfig(func(config.Manager) {}), ErrConfigNotLoaded)
}
