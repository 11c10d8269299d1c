// Package system 采集进程级资源指标并以 Prometheus Collector 形式暴露。
package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 一次采样结果
type Stats struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryBytes   uint64    `json:"memory_bytes"`
	Goroutines    int       `json:"goroutines"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Collector 进程指标采集器，每次被抓取时采样，minInterval 内复用上次结果
type Collector struct {
	proc        *process.Process
	minInterval time.Duration

	mu    sync.Mutex
	stats Stats

	cpuDesc        *prometheus.Desc
	memPercentDesc *prometheus.Desc
	memBytesDesc   *prometheus.Desc
	goroutinesDesc *prometheus.Desc
}

// New 创建当前进程的采集器
func New(namespace string, minInterval time.Duration) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}

	return &Collector{
		proc:        proc,
		minInterval: minInterval,
		cpuDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "cpu_percent"),
			"进程 CPU 使用率 (0-100)", nil, nil),
		memPercentDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "memory_percent"),
			"进程 RSS 占物理内存的百分比", nil, nil),
		memBytesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "memory_rss_bytes"),
			"进程 RSS 字节数", nil, nil),
		goroutinesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "goroutines"),
			"当前 goroutine 数量", nil, nil),
	}, nil
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuDesc
	ch <- c.memPercentDesc
	ch <- c.memBytesDesc
	ch <- c.goroutinesDesc
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Sample()
	ch <- prometheus.MustNewConstMetric(c.cpuDesc, prometheus.GaugeValue, s.CPUPercent)
	ch <- prometheus.MustNewConstMetric(c.memPercentDesc, prometheus.GaugeValue, s.MemoryPercent)
	ch <- prometheus.MustNewConstMetric(c.memBytesDesc, prometheus.GaugeValue, float64(s.MemoryBytes))
	ch <- prometheus.MustNewConstMetric(c.goroutinesDesc, prometheus.GaugeValue, float64(s.Goroutines))
}

// Sample 返回最近一次采样，超过 minInterval 时重新采集
func (c *Collector) Sample() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stats.UpdatedAt.IsZero() && time.Since(c.stats.UpdatedAt) < c.minInterval {
		return c.stats
	}

	var stats Stats
	if cpuPercent, err := c.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpuPercent
	}
	if memInfo, err := c.proc.MemoryInfo(); err == nil {
		stats.MemoryBytes = memInfo.RSS
		if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(memInfo.RSS) / float64(vm.Total) * 100
		}
	}
	stats.Goroutines = runtime.NumGoroutine()
	stats.UpdatedAt = time.Now()

	c.stats = stats
	return stats
}
