package reader

import (
	"sync"
	"time"
)

// Stats is a snapshot of reader telemetry
type Stats struct {
	StreamedReads        int64
	BufferedReads        int64
	CacheHits            int64
	AvgStreamingDuration time.Duration
	AvgBufferedDuration  time.Duration
	TotalBytesRead       int64
	LargestStreamedFile  int64
	BackpressurePauses   int64
	Failures             int64
	Timeouts             int64
	DroppedSettlements   int64
	LastReset            time.Time
}

type stats struct {
	mu sync.Mutex
	s  Stats
}

func (st *stats) recordStreamed(d time.Duration, bytes, fileSize int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.StreamedReads++
	st.s.AvgStreamingDuration = runningAvg(st.s.AvgStreamingDuration, d, st.s.StreamedReads)
	st.s.TotalBytesRead += bytes
	if fileSize > st.s.LargestStreamedFile {
		st.s.LargestStreamedFile = fileSize
	}
}

func (st *stats) recordBuffered(d time.Duration, bytes int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.BufferedReads++
	st.s.AvgBufferedDuration = runningAvg(st.s.AvgBufferedDuration, d, st.s.BufferedReads)
	st.s.TotalBytesRead += bytes
}

func (st *stats) recordCacheHit() {
	st.mu.Lock()
	st.s.CacheHits++
	st.mu.Unlock()
}

func (st *stats) recordPause() {
	st.mu.Lock()
	st.s.BackpressurePauses++
	st.mu.Unlock()
}

func (st *stats) recordFailure(timeout bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.Failures++
	if timeout {
		st.s.Timeouts++
	}
}

func (st *stats) recordDropped() {
	st.mu.Lock()
	st.s.DroppedSettlements++
	st.mu.Unlock()
}

func (st *stats) snapshot() Stats {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

func (st *stats) reset(now time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Stats{LastReset: now}
}

func runningAvg(avg, sample time.Duration, n int64) time.Duration {
	return avg + (sample-avg)/time.Duration(n)
}
