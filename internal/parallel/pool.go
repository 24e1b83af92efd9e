// Package parallel runs rendering work on a fixed set of goroutines.
package parallel

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a pool of goroutines with per-worker queues. Idle workers steal
// from the other queues.
//
// A pool created with zero threads runs every task on the calling
// goroutine.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
	log     *slog.Logger
}

// New creates a pool with threads workers. threads < 0 selects GOMAXPROCS,
// 0 makes an inline pool.
func New(threads int, log *slog.Logger) *Pool {
	if threads < 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Pool{workers: threads, done: make(chan struct{}), log: log}
	p.running.Store(true)
	if threads == 0 {
		return p
	}

	size := max(threads*4, 8)
	p.queues = make([]chan func(), threads)
	for i := range p.queues {
		p.queues[i] = make(chan func(), size)
	}
	p.wg.Add(threads)
	for i := range threads {
		go p.worker(i)
	}
	log.Debug("parallel: pool started", "workers", threads)
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
			continue
		default:
		}
		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case fn := <-p.queues[(id+i)%p.workers]:
			return fn
		default:
		}
	}
	return nil
}

// Workers returns the number of worker goroutines. Zero means inline.
func (p *Pool) Workers() int { return p.workers }

// Running reports whether the pool accepts work.
func (p *Pool) Running() bool { return p.running.Load() }

// submit queues fn on the shortest queue. It reports false when the pool
// cannot take it.
func (p *Pool) submit(fn func()) bool {
	if p.workers == 0 || !p.running.Load() {
		return false
	}
	best := 0
	for i := 1; i < p.workers; i++ {
		if len(p.queues[i]) < len(p.queues[best]) {
			best = i
		}
	}
	select {
	case p.queues[best] <- fn:
		return true
	case <-p.done:
		return false
	default:
		return false
	}
}

// Run executes tasks and returns when all of them have finished. The
// calling goroutine takes part in the work, so Run may be called from a
// task running on the same pool.
func (p *Pool) Run(tasks []func()) {
	n := len(tasks)
	if n == 0 {
		return
	}
	if n == 1 || p.workers == 0 || !p.running.Load() {
		for _, fn := range tasks {
			fn()
		}
		return
	}

	var next atomic.Int64
	var finished sync.WaitGroup
	finished.Add(n)
	loop := func() {
		for {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			tasks[i]()
			finished.Done()
		}
	}
	for range min(n-1, p.workers) {
		if !p.submit(loop) {
			break
		}
	}
	loop()
	finished.Wait()
}

// Task is the handle of work started with Go.
type Task struct {
	done chan struct{}
}

// Wait blocks until the task has finished. A nil task is already done.
func (t *Task) Wait() {
	if t != nil {
		<-t.done
	}
}

// Done reports whether the task has finished without blocking.
func (t *Task) Done() bool {
	if t == nil {
		return true
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Go starts fn asynchronously. On an inline or closed pool fn runs before
// Go returns.
func (p *Pool) Go(fn func()) *Task {
	t := &Task{done: make(chan struct{})}
	run := func() {
		defer close(t.done)
		fn()
	}
	if !p.submit(run) {
		run()
	}
	return t
}

// Close stops the workers after the queued work has run. It is safe to
// call more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
	if p.workers > 0 {
		p.log.Debug("parallel: pool stopped", "workers", p.workers)
	}
}
