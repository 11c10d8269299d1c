// Package rng 提供可注入、可复现的随机源。
package rng

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source 业务使用的随机源
type Source interface {
	// Float64 返回 [0, 1) 内的均匀随机数
	Float64() float64
	// IntN 返回 [0, n) 内的均匀随机整数，n <= 0 时 panic
	IntN(n int) int
}

// Locked 并发安全的随机源
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded 以固定种子创建随机源，相同种子产生相同序列
func NewSeeded(seed uint64) *Locked {
	return &Locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewDefault 以当前时间为种子创建随机源
func NewDefault() *Locked {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// IntRange 返回 [lo, hi] 内的均匀随机整数
func IntRange(s Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.IntN(hi-lo+1)
}
