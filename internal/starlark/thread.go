package starlark

import (
	"sync"

	"go.starlark.net/starlark"
)

// Pool defaults.
const (
	DefaultPoolSize = 10
	// DefaultMaxSteps bounds one cell evaluation. A list page renders a few
	// hundred cells, so a runaway expression must not stall the refresh.
	DefaultMaxSteps = 100_000
)

// ThreadPool hands out Starlark threads to cell evaluations. Every thread
// taken from the pool starts with a fresh step budget.
type ThreadPool struct {
	mu       sync.Mutex
	idle     []*starlark.Thread
	size     int
	maxSteps uint64
}

// NewThreadPool returns a pool keeping up to size idle threads, with
// DefaultMaxSteps per evaluation.
func NewThreadPool(size int) *ThreadPool {
	return NewThreadPoolWithLimit(size, DefaultMaxSteps)
}

// NewThreadPoolWithLimit is NewThreadPool with an explicit step budget.
// A zero budget means DefaultMaxSteps.
func NewThreadPoolWithLimit(size int, maxSteps uint64) *ThreadPool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	return &ThreadPool{
		idle:     make([]*starlark.Thread, 0, size),
		size:     size,
		maxSteps: maxSteps,
	}
}

// MaxSteps returns the step budget of one evaluation.
func (p *ThreadPool) MaxSteps() uint64 {
	return p.maxSteps
}

// Get returns a thread named after the renderer. The name shows up in
// evaluation errors.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	var thread *starlark.Thread
	if n := len(p.idle); n > 0 {
		thread = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.mu.Unlock()

	if thread == nil {
		thread = &starlark.Thread{
			// render expressions do not print
			Print: func(*starlark.Thread, string) {},
		}
	}
	thread.Name = name
	thread.Steps = 0
	thread.Uncancel()
	thread.SetMaxExecutionSteps(p.maxSteps)
	return thread
}

// Put hands a thread back. Threads beyond the pool size are dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) < p.size {
		thread.Name = ""
		p.idle = append(p.idle, thread)
	}
}

// Idle returns the number of threads waiting in the pool.
func (p *ThreadPool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
