package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/lk2023060901/kickoff/pkg/logger"
)

func TestReloadLogLevel(t *testing.T) {
	l, err := logger.New(&logger.Config{Level: logger.InfoLevel, Format: logger.JSONFormat}, logger.WithWriter(io.Discard))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	m := config.NewManager()
	require.NoError(t, m.LoadFile(path))

	reload := reloadLogLevel(l)
	reload(m)
	assert.Equal(t, logger.DebugLevel, l.GetLevel())

	// 未配置等级时保持不变
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: json\n"), 0o644))
	require.NoError(t, m.LoadFile(path))
	reload(m)
	assert.Equal(t, logger.DebugLevel, l.GetLevel())
}
