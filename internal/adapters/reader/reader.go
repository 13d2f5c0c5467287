// Package reader reads memory bank files, picking a buffered or a chunked
// streaming strategy per file and consulting the content cache first.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memorybank/internal/domain"
	"memorybank/internal/ports"
)

const (
	DefaultStreamThreshold = 1 << 20
	DefaultChunkSize       = 64 << 10
	DefaultPauseEvery      = 10
	DefaultTimeout         = 30 * time.Second

	maxPrealloc = 16 << 20
)

// Strategy is how a file is read
type Strategy string

const (
	StrategyBuffered  Strategy = "buffered"
	StrategyStreaming Strategy = "streaming"
)

// Pauser is implemented by sources that can suspend delivery. The reader
// pauses them periodically while streaming.
type Pauser interface {
	Pause()
	Resume()
}

// StreamingOperation describes a read in flight
type StreamingOperation struct {
	ID              string
	FilePath        string
	FileSize        int64
	Strategy        Strategy
	StartTime       time.Time
	BytesRead       int64
	ChunksProcessed int
}

// Options configures a Reader
type Options struct {
	Root            string // Every path is validated against Root
	StreamThreshold int64
	ChunkSize       int
	PauseEvery      int
	Timeout         time.Duration
	Cache           ports.ContentCache // Optional
	Logger          *zap.Logger
	Now             func() time.Time
}

// Reader implements ports.DocumentReader
type Reader struct {
	fs         ports.FileSystem
	root       string
	threshold  int64
	chunkSize  int
	pauseEvery int
	timeout    time.Duration
	cache      ports.ContentCache
	logger     *zap.Logger
	now        func() time.Time

	mu     sync.Mutex
	active map[string]*StreamingOperation
	stats  stats
}

// Ensure Reader implements DocumentReader
var _ ports.DocumentReader = (*Reader)(nil)

// New creates a reader over fsys
func New(fsys ports.FileSystem, opts Options) *Reader {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.StreamThreshold <= 0 {
		opts.StreamThreshold = DefaultStreamThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.PauseEvery <= 0 {
		opts.PauseEvery = DefaultPauseEvery
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Reader{
		fs:         fsys,
		root:       opts.Root,
		threshold:  opts.StreamThreshold,
		chunkSize:  opts.ChunkSize,
		pauseEvery: opts.PauseEvery,
		timeout:    opts.Timeout,
		cache:      opts.Cache,
		logger:     opts.Logger,
		now:        opts.Now,
		active:     make(map[string]*StreamingOperation),
	}
	r.stats.reset(opts.Now())
	return r
}

// Read returns the content of path. Failures are *domain.ReadError.
func (r *Reader) Read(ctx context.Context, path string, opts ports.ReadOptions) (*ports.ReadResult, error) {
	abs, info, err := r.resolve(ctx, path)
	if err != nil {
		r.stats.recordFailure(false)
		return nil, err
	}

	if r.cache != nil && !opts.SkipCache {
		if content, ok := r.cache.Get(abs, info.Version()); ok {
			r.stats.recordCacheHit()
			r.logger.Debug("read served from cache", zap.String("path", abs))
			return &ports.ReadResult{
				Content:   content,
				Version:   info.Version(),
				FromCache: true,
				BytesRead: int64(len(content)),
			}, nil
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}

	strategy := r.strategyFor(info.Size)
	op := r.begin(abs, info.Size, strategy)
	defer r.end(op.ID)

	r.logger.Debug("reading file",
		zap.String("path", abs),
		zap.Int64("size", info.Size),
		zap.String("strategy", string(strategy)))

	var content string
	if strategy == StrategyStreaming {
		content, err = r.stream(ctx, op, info.Size, timeout, opts.OnProgress)
	} else {
		content, err = r.buffered(ctx, op, info.Size, timeout, opts.OnProgress)
	}

	elapsed := r.now().Sub(op.StartTime)
	if err != nil {
		var re *domain.ReadError
		r.stats.recordFailure(errors.As(err, &re) && re.Code == domain.ReadTimeout)
		r.logger.Debug("read failed", zap.String("path", abs), zap.Error(err))
		return nil, err
	}

	snapshot := r.operation(op.ID)
	if strategy == StrategyStreaming {
		r.stats.recordStreamed(elapsed, snapshot.BytesRead, info.Size)
	} else {
		r.stats.recordBuffered(elapsed, snapshot.BytesRead)
	}

	if r.cache != nil {
		r.cache.Set(abs, content, info.Version())
	}

	return &ports.ReadResult{
		Content:         content,
		Version:         info.Version(),
		WasStreamed:     strategy == StrategyStreaming,
		Duration:        elapsed,
		BytesRead:       snapshot.BytesRead,
		ChunksProcessed: snapshot.ChunksProcessed,
	}, nil
}

// WouldStream reports whether Read would stream path
func (r *Reader) WouldStream(ctx context.Context, path string) (bool, error) {
	_, info, err := r.resolve(ctx, path)
	if err != nil {
		return false, err
	}
	return r.strategyFor(info.Size) == StrategyStreaming, nil
}

// ActiveOperations returns the reads currently in flight
func (r *Reader) ActiveOperations() []StreamingOperation {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make([]StreamingOperation, 0, len(r.active))
	for _, op := range r.active {
		ops = append(ops, *op)
	}
	slices.SortFunc(ops, func(a, b StreamingOperation) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return ops
}

// Stats returns a snapshot of the reader telemetry
func (r *Reader) Stats() Stats {
	return r.stats.snapshot()
}

// ResetStats zeroes the telemetry
func (r *Reader) ResetStats() {
	r.stats.reset(r.now())
}

func (r *Reader) strategyFor(size int64) Strategy {
	if size >= r.threshold {
		return StrategyStreaming
	}
	return StrategyBuffered
}

// resolve validates path against the root and stats it
func (r *Reader) resolve(ctx context.Context, path string) (string, ports.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return "", ports.FileInfo{}, &domain.ReadError{Code: domain.ReadCanceled, Path: path, Err: err}
	}

	rel, err := domain.Sanitize(path, r.root)
	if err != nil {
		return "", ports.FileInfo{}, &domain.ReadError{Code: domain.ReadPathRejected, Path: path, Err: err}
	}
	abs, err := domain.ResolveUnder(r.root, rel)
	if err != nil {
		return "", ports.FileInfo{}, &domain.ReadError{Code: domain.ReadPathRejected, Path: path, Err: err}
	}

	info, err := r.fs.Stat(ctx, abs)
	if err != nil {
		code := domain.ReadStatFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = domain.ReadNotFound
		}
		return "", ports.FileInfo{}, &domain.ReadError{Code: code, Path: abs, Err: err}
	}
	if info.IsDir {
		return "", ports.FileInfo{}, &domain.ReadError{
			Code: domain.ReadIOFailed,
			Path: abs,
			Err:  errors.New("is a directory"),
		}
	}
	return abs, info, nil
}

func (r *Reader) buffered(ctx context.Context, op *StreamingOperation, size int64, timeout time.Duration, progress ports.ProgressFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := r.fs.ReadFile(ctx, op.FilePath)
	if err != nil {
		code := domain.ReadIOFailed
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			code = domain.ReadTimeout
		case errors.Is(err, context.Canceled):
			code = domain.ReadCanceled
		case errors.Is(err, fs.ErrNotExist):
			code = domain.ReadNotFound
		}
		return "", &domain.ReadError{Code: code, Path: op.FilePath, Err: err}
	}

	n := r.advance(op.ID, len(data))
	if progress != nil {
		progress(n, size)
	}
	if !utf8.Valid(data) {
		return "", &domain.ReadError{Code: domain.ReadDecodeFailed, Path: op.FilePath, Err: errInvalidUTF8}
	}
	return string(data), nil
}

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// stream reads the file in chunks on a pump goroutine. The caller waits on
// the settle gate, which the pump, the timeout and ctx all race to close.
func (r *Reader) stream(ctx context.Context, op *StreamingOperation, size int64, timeout time.Duration, progress ports.ProgressFunc) (string, error) {
	src, err := r.fs.Open(ctx, op.FilePath)
	if err != nil {
		code := domain.ReadIOFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = domain.ReadNotFound
		}
		return "", &domain.ReadError{Code: code, Path: op.FilePath, Err: err}
	}

	gate := newSettleGate()
	gate.arm(timeout, func() {
		won := r.offer(gate, outcome{err: &domain.ReadError{
			Code: domain.ReadTimeout,
			Path: op.FilePath,
			Err:  fmt.Errorf("no completion after %s", timeout),
		}})
		if won {
			src.Close()
		}
	})
	stop := context.AfterFunc(ctx, func() {
		if r.offer(gate, outcome{err: &domain.ReadError{Code: domain.ReadCanceled, Path: op.FilePath, Err: ctx.Err()}}) {
			src.Close()
		}
	})
	defer stop()

	go r.pump(gate, src, op, size, progress)

	res := gate.wait()
	return res.content, res.err
}

func (r *Reader) pump(gate *settleGate, src io.ReadCloser, op *StreamingOperation, size int64, progress ports.ProgressFunc) {
	defer src.Close()

	var buf bytes.Buffer
	if size > 0 {
		// Stat sizes can be wrong; past the cap the buffer grows as data arrives
		buf.Grow(int(min(size, maxPrealloc)))
	}
	chunk := make([]byte, r.chunkSize)
	pauser, _ := src.(Pauser)
	chunks := 0

	for {
		n, err := src.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			chunks++
			total := r.advance(op.ID, n)
			if progress != nil {
				gate.emit(func() { progress(total, size) })
			}
			if chunks%r.pauseEvery == 0 {
				r.backpressure(pauser)
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			data := buf.Bytes()
			if !utf8.Valid(data) {
				r.offer(gate, outcome{err: &domain.ReadError{Code: domain.ReadDecodeFailed, Path: op.FilePath, Err: errInvalidUTF8}})
				return
			}
			r.offer(gate, outcome{content: string(data)})
			return
		case errors.Is(err, os.ErrClosed), errors.Is(err, io.ErrClosedPipe):
			r.offer(gate, outcome{err: &domain.ReadError{Code: domain.ReadStreamClosed, Path: op.FilePath, Err: err}})
			return
		case err != nil:
			r.offer(gate, outcome{err: &domain.ReadError{Code: domain.ReadIOFailed, Path: op.FilePath, Err: err}})
			return
		}

		if gate.isSettled() {
			return
		}
	}
}

// offer settles the gate, counting the signal as dropped if it lost
func (r *Reader) offer(gate *settleGate, o outcome) bool {
	if gate.settle(o) {
		return true
	}
	r.stats.recordDropped()
	return false
}

// backpressure pauses the source and yields before resuming it
func (r *Reader) backpressure(p Pauser) {
	if p != nil {
		p.Pause()
	}
	runtime.Gosched()
	if p != nil {
		p.Resume()
	}
	r.stats.recordPause()
}

func (r *Reader) begin(path string, size int64, strategy Strategy) *StreamingOperation {
	op := &StreamingOperation{
		ID:        uuid.NewString(),
		FilePath:  path,
		FileSize:  size,
		Strategy:  strategy,
		StartTime: r.now(),
	}
	r.mu.Lock()
	r.active[op.ID] = op
	r.mu.Unlock()
	return op
}

func (r *Reader) end(id string) {
	r.mu.Lock()
	delete(r.active, id)
	r.mu.Unlock()
}

// advance records n more bytes for the operation and returns the total
func (r *Reader) advance(id string, n int) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.active[id]
	if !ok {
		return 0
	}
	op.BytesRead += int64(n)
	op.ChunksProcessed++
	return op.BytesRead
}

func (r *Reader) operation(id string) StreamingOperation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if op, ok := r.active[id]; ok {
		return *op
	}
	return StreamingOperation{}
}
