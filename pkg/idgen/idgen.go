package idgen

import "sync/atomic"

// Generator ID 生成器
type Generator interface {
	NextID() (int64, error)
}

// Sequence 进程内自增生成器，用于测试与离线模拟
type Sequence struct {
	n atomic.Int64
}

// NewSequence 从 start+1 开始发号
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

func (s *Sequence) NextID() (int64, error) {
	return s.n.Add(1), nil
}
