package reader

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettleGate_FirstSignalWins(t *testing.T) {
	g := newSettleGate()
	first := errors.New("first")

	assert.True(t, g.settle(outcome{err: first}))
	assert.False(t, g.settle(outcome{content: "late"}))
	assert.False(t, g.settle(outcome{err: errors.New("later")}))

	res := g.wait()
	assert.Equal(t, first, res.err)
	assert.Empty(t, res.content)
}

func TestSettleGate_ConcurrentSignals(t *testing.T) {
	for i := 0; i < 50; i++ {
		g := newSettleGate()
		var wins atomic.Int32

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.settle(outcome{content: "x"}) {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	}
}

func TestSettleGate_SettleStopsTimer(t *testing.T) {
	g := newSettleGate()
	var fired atomic.Bool
	g.arm(20*time.Millisecond, func() { fired.Store(true) })

	assert.True(t, g.settle(outcome{content: "done"}))
	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load(), "timer must be stopped on settlement")
}

func TestSettleGate_ArmAfterSettle(t *testing.T) {
	g := newSettleGate()
	g.settle(outcome{content: "done"})

	var fired atomic.Bool
	g.arm(time.Millisecond, func() { fired.Store(true) })
	time.Sleep(30 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestSettleGate_TimerSettles(t *testing.T) {
	g := newSettleGate()
	timeout := errors.New("timeout")
	g.arm(time.Millisecond, func() { g.settle(outcome{err: timeout}) })

	res := g.wait()
	assert.Equal(t, timeout, res.err)
}

func TestSettleGate_EmitStopsAfterSettle(t *testing.T) {
	g := newSettleGate()
	var runs int

	g.emit(func() { runs++ })
	g.settle(outcome{content: "done"})
	g.emit(func() { runs++ })

	assert.Equal(t, 1, runs)
}
