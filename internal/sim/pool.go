package sim

import "sync"

// FramePool recycles frame buffers for a fixed body count.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(bodies int) *FramePool {
	return &FramePool{
		size: bodies,
		pool: sync.Pool{
			New: func() any {
				return make(Frame, bodies)
			},
		},
	}
}

func (p *FramePool) Get() Frame {
	return p.pool.Get().(Frame)
}

func (p *FramePool) Put(f Frame) {
	if len(f) == p.size {
		clear(f)
		p.pool.Put(f)
	}
}
