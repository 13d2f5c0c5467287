package reader

import (
	"sync"
	"sync/atomic"
	"time"
)

// outcome is the final result of one read
type outcome struct {
	content string
	err     error
}

// settleGate resolves a read exactly once. End of data, read errors,
// premature close, the timeout and context cancellation all race to call
// settle; the first caller wins and every later call is a no-op.
// Progress callbacks run through emit and never overlap or follow the
// winning settle.
type settleGate struct {
	mu      sync.Mutex
	settled atomic.Bool
	timer   atomic.Pointer[time.Timer]
	done    chan struct{}
	result  outcome
}

func newSettleGate() *settleGate {
	return &settleGate{done: make(chan struct{})}
}

// arm starts the timeout timer. fn runs on the timer goroutine.
func (g *settleGate) arm(d time.Duration, fn func()) {
	t := time.AfterFunc(d, fn)
	g.timer.Store(t)
	// Settled before the timer was stored, so settle could not stop it.
	if g.settled.Load() {
		t.Stop()
	}
}

// settle records o as the result if no other signal got there first and
// reports whether it won.
func (g *settleGate) settle(o outcome) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.settled.CompareAndSwap(false, true) {
		return false
	}
	g.result = o
	if t := g.timer.Load(); t != nil {
		t.Stop()
	}
	close(g.done)
	return true
}

// emit runs fn unless the gate has settled. A concurrent settle waits for
// fn to return.
func (g *settleGate) emit(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.settled.Load() {
		return
	}
	fn()
}

func (g *settleGate) isSettled() bool {
	return g.settled.Load()
}

// wait blocks until the gate settles and returns the winning outcome
func (g *settleGate) wait() outcome {
	<-g.done
	return g.result
}
