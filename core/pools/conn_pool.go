// Package pools provides the bounded worker pool that executes
// connection handlers.
package pools

import (
	"net"
	"runtime"
	"sync"
	"sync/atomic"
)

// ConnPool runs a fixed set of workers that each handle one connection
// at a time. Serve blocks while every worker is busy, so the pool size
// bounds in-flight connections and the accept loop cannot outrun it.
type ConnPool struct {
	workers int
	conns   chan net.Conn
	handler func(net.Conn)
	wg      sync.WaitGroup

	stats struct {
		accepted  atomic.Uint64
		completed atomic.Uint64
		active    atomic.Int64
	}
}

// NewConnPool starts `workers` goroutines running handler.
func NewConnPool(workers int, handler func(net.Conn)) *ConnPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &ConnPool{
		workers: workers,
		conns:   make(chan net.Conn),
		handler: handler,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Serve hands conn to a worker, blocking until one is free. Must not
// be called after Close.
func (p *ConnPool) Serve(conn net.Conn) {
	p.stats.accepted.Add(1)
	p.conns <- conn
}

func (p *ConnPool) run() {
	defer p.wg.Done()
	for conn := range p.conns {
		p.stats.active.Add(1)
		p.handler(conn)
		p.stats.active.Add(-1)
		p.stats.completed.Add(1)
	}
}

// Close stops the pool accepting new connections. Workers finish the
// connections they already hold.
func (p *ConnPool) Close() {
	close(p.conns)
}

// Wait blocks until every worker has exited.
func (p *ConnPool) Wait() {
	p.wg.Wait()
}

// Stats returns a snapshot of pool counters.
func (p *ConnPool) Stats() ConnPoolStats {
	return ConnPoolStats{
		Workers:   p.workers,
		Accepted:  p.stats.accepted.Load(),
		Completed: p.stats.completed.Load(),
		Active:    p.stats.active.Load(),
	}
}

// ConnPoolStats contains pool counters.
type ConnPoolStats struct {
	Workers   int
	Accepted  uint64
	Completed uint64
	Active    int64
}
