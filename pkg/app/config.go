package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/kickoff/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，KICKOFF_DATABASE_HOST 对应 database.host
const EnvPrefix = "KICKOFF"

var (
	configPath string
	logPath    string
	loaded     config.Manager
)

// ErrConfigNotLoaded 未调用 LoadConfig 就开始监听
var ErrConfigNotLoaded = errors.New("config has not been loaded")

// LoadConfig 加载配置到 target
//
// 优先级：命令行 --log.path > 环境变量 > 配置文件 > 默认值。
// 配置文件路径依次取 --config、KICKOFF_CONFIG、可执行文件同目录下的 config.yaml
func LoadConfig(target any, opts ...config.Option) error {
	execDir, err := GetExecDir()
	if err != nil {
		return fmt.Errorf("failed to get executable directory: %w", err)
	}
	defaultLog := filepath.Join(execDir, "logs", "league.log")

	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", filepath.Join(execDir, "config.yaml"), "path to config file")
	}
	if pflag.Lookup("log.path") == nil {
		pflag.StringVar(&logPath, "log.path", defaultLog, "output path for logs")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	if !pflag.CommandLine.Changed("config") {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			configPath = env
		}
	}
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("config file not found at %s: %w", configPath, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if pflag.CommandLine.Changed("log.path") {
		v.Set("log.output_path", logPath)
	}

	base := []config.Option{
		config.WithViper(v),
		config.WithDefaults(map[string]any{"log.output_path": defaultLog}),
	}
	mgr := config.NewManager(append(base, opts...)...)
	if err := mgr.LoadFile(configPath); err != nil {
		return err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return err
	}

	loaded = mgr
	logPath = v.GetString("log.output_path")
	if v.GetBool("log.enable_file") {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return nil
}

// WatchConfig 配置文件变化时回调 fn，fn 在 viper 的监听 goroutine 中执行
func WatchConfig(fn func(m config.Manager)) error {
	mgr := loaded
	if mgr == nil {
		return ErrConfigNotLoaded
	}
	return mgr.Watch(func() { fn(mgr) })
}

// GetExecDir 可执行文件所在目录（解析符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 最终使用的配置文件路径
func GetConfigPath() string {
	return configPath
}
