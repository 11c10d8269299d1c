package rng

import "sync"

// Scripted 按预设序列返回结果，序列耗尽后重复最后一个值
//
// 用于在测试中精确控制抽卡和强化结果
type Scripted struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	fi, ii int
}

// NewScripted 创建脚本随机源
func NewScripted(floats []float64, ints []int) *Scripted {
	return &Scripted{floats: floats, ints: ints}
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[min(s.fi, len(s.floats)-1)]
	s.fi++
	return v
}

// IntN 返回的预设值会对 n 取模以保证落在范围内
func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[min(s.ii, len(s.ints)-1)]
	s.ii++
	return v % n
}

// FloatCalls Float64 被调用的次数
func (s *Scripted) FloatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fi
}
