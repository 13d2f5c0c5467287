package reader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/adapters/filesystem"
	"memorybank/internal/domain"
	"memorybank/internal/ports"
)

// fakeFS serves a single file of a fixed size from src
type fakeFS struct {
	size int64
	src  io.ReadCloser
}

func (f *fakeFS) MkdirAll(context.Context, string) error              { return nil }
func (f *fakeFS) WriteFile(context.Context, string, []byte) error     { return nil }
func (f *fakeFS) ReadFile(context.Context, string) ([]byte, error)    { return io.ReadAll(f.src) }
func (f *fakeFS) Open(context.Context, string) (io.ReadCloser, error) { return f.src, nil }

func (f *fakeFS) Stat(_ context.Context, path string) (ports.FileInfo, error) {
	return ports.FileInfo{Path: path, Size: f.size, ModTime: time.Unix(100, 0), Regular: true}, nil
}

// errorThenCloseSource yields one chunk, fails, and is then closed
type errorThenCloseSource struct {
	reads  int
	closes atomic.Int32
}

func (s *errorThenCloseSource) Read(p []byte) (int, error) {
	s.reads++
	if s.reads == 1 {
		return copy(p, "partial"), nil
	}
	return 0, syscall.EIO
}

func (s *errorThenCloseSource) Close() error {
	s.closes.Add(1)
	return nil
}

// blockingSource never delivers data; Read returns once Close is called
type blockingSource struct {
	once   sync.Once
	closed chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{closed: make(chan struct{})}
}

func (s *blockingSource) Read([]byte) (int, error) {
	<-s.closed
	return 0, os.ErrClosed
}

func (s *blockingSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *blockingSource) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// prematureSource closes underneath the reader before end of data
type prematureSource struct{ reads int }

func (s *prematureSource) Read(p []byte) (int, error) {
	s.reads++
	if s.reads == 1 {
		return copy(p, "some"), nil
	}
	return 0, os.ErrClosed
}

func (s *prematureSource) Close() error { return nil }

// slowSource delivers size bytes in 1 KiB chunks with a delay per chunk
type slowSource struct {
	remaining int
	delay     time.Duration
	closed    atomic.Bool
}

func (s *slowSource) Read(p []byte) (int, error) {
	time.Sleep(s.delay)
	if s.closed.Load() {
		return 0, os.ErrClosed
	}
	if s.remaining == 0 {
		return 0, io.EOF
	}
	n := min(len(p), 1024, s.remaining)
	for i := range n {
		p[i] = 'x'
	}
	s.remaining -= n
	return n, nil
}

func (s *slowSource) Close() error {
	s.closed.Store(true)
	return nil
}

// pausingSource counts backpressure calls
type pausingSource struct {
	io.Reader
	pauses, resumes int
}

func (s *pausingSource) Pause()       { s.pauses++ }
func (s *pausingSource) Resume()      { s.resumes++ }
func (s *pausingSource) Close() error { return nil }

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	content := strings.Repeat("memory bank line\n", size/17+1)[:size]
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return content
}

func requireReadCode(t *testing.T, err error, code domain.ReadCode) {
	t.Helper()
	var re *domain.ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, code, re.Code)
	assert.ErrorIs(t, err, domain.ErrReadFailed)
}

func TestReader_StreamingThreshold(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	small := writeFile(t, root, "small.md", 500<<10)
	big := writeFile(t, root, "big.md", 2<<20)

	r := New(filesystem.NewPrimitives(), Options{Root: root, StreamThreshold: 1 << 20})

	res, err := r.Read(ctx, "small.md", ports.ReadOptions{})
	require.NoError(t, err)
	assert.False(t, res.WasStreamed)
	assert.Equal(t, small, res.Content)
	assert.Equal(t, int64(500<<10), res.BytesRead)

	res, err = r.Read(ctx, "big.md", ports.ReadOptions{})
	require.NoError(t, err)
	assert.True(t, res.WasStreamed)
	assert.Equal(t, big, res.Content)
	assert.Equal(t, int64(2<<20), res.BytesRead)
	assert.Equal(t, 32, res.ChunksProcessed)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.BufferedReads)
	assert.Equal(t, int64(1), stats.StreamedReads)
	assert.Equal(t, int64(500<<10+2<<20), stats.TotalBytesRead)
	assert.Equal(t, int64(2<<20), stats.LargestStreamedFile)
}

func TestReader_SameContentEitherStrategy(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	want := writeFile(t, root, "doc.md", 2<<20)

	streamed, err := New(filesystem.NewPrimitives(), Options{Root: root, StreamThreshold: 1 << 20}).
		Read(ctx, "doc.md", ports.ReadOptions{})
	require.NoError(t, err)
	buffered, err := New(filesystem.NewPrimitives(), Options{Root: root, StreamThreshold: 4 << 20}).
		Read(ctx, "doc.md", ports.ReadOptions{})
	require.NoError(t, err)

	assert.True(t, streamed.WasStreamed)
	assert.False(t, buffered.WasStreamed)
	assert.Equal(t, want, streamed.Content)
	assert.Equal(t, streamed.Content, buffered.Content)
}

func TestReader_WouldStream(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "small.md", 10)
	writeFile(t, root, "big.md", 2048)

	r := New(filesystem.NewPrimitives(), Options{Root: root, StreamThreshold: 1024})

	got, err := r.WouldStream(ctx, "small.md")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = r.WouldStream(ctx, "big.md")
	require.NoError(t, err)
	assert.True(t, got)

	_, err = r.WouldStream(ctx, "missing.md")
	assert.True(t, domain.IsNotFound(err))
}

func TestReader_ErrorThenCloseSettlesOnce(t *testing.T) {
	src := &errorThenCloseSource{}
	r := New(&fakeFS{size: 4096, src: src}, Options{Root: t.TempDir(), StreamThreshold: 1024, Timeout: time.Second})

	res, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{})
	assert.Nil(t, res)
	requireReadCode(t, err, domain.ReadIOFailed)
	assert.ErrorIs(t, err, syscall.EIO)

	require.Eventually(t, func() bool { return src.closes.Load() >= 1 }, time.Second, 5*time.Millisecond)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Failures)
	assert.Zero(t, stats.Timeouts, "the timer must not fire after settlement")
	assert.Empty(t, r.ActiveOperations())
}

func TestReader_TimeoutClosesSource(t *testing.T) {
	src := newBlockingSource()
	r := New(&fakeFS{size: 4096, src: src}, Options{Root: t.TempDir(), StreamThreshold: 1024})

	_, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{Timeout: 30 * time.Millisecond})
	requireReadCode(t, err, domain.ReadTimeout)
	require.Eventually(t, src.isClosed, time.Second, time.Millisecond)

	// The pump sees the closed source after the timeout already won.
	require.Eventually(t, func() bool {
		return r.Stats().DroppedSettlements == 1
	}, time.Second, 5*time.Millisecond)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Timeouts)
	assert.Equal(t, int64(1), stats.Failures)
	assert.Empty(t, r.ActiveOperations())
}

func TestReader_ContextCancel(t *testing.T) {
	src := newBlockingSource()
	r := New(&fakeFS{size: 4096, src: src}, Options{Root: t.TempDir(), StreamThreshold: 1024, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		assert.Eventually(t, func() bool { return len(r.ActiveOperations()) == 1 }, time.Second, time.Millisecond)
		cancel()
	}()

	_, err := r.Read(ctx, "doc.md", ports.ReadOptions{})
	requireReadCode(t, err, domain.ReadCanceled)
	require.Eventually(t, src.isClosed, time.Second, time.Millisecond)
	assert.Empty(t, r.ActiveOperations())
}

func TestReader_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(filesystem.NewPrimitives(), Options{Root: t.TempDir()})
	_, err := r.Read(ctx, "doc.md", ports.ReadOptions{})
	requireReadCode(t, err, domain.ReadCanceled)
}

func TestReader_PrematureClose(t *testing.T) {
	r := New(&fakeFS{size: 4096, src: &prematureSource{}}, Options{Root: t.TempDir(), StreamThreshold: 1024})

	res, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{})
	assert.Nil(t, res)
	requireReadCode(t, err, domain.ReadStreamClosed)
}

func TestReader_BackpressureAndProgress(t *testing.T) {
	const size = 25 * 1024
	src := &pausingSource{Reader: strings.NewReader(strings.Repeat("x", size))}
	r := New(&fakeFS{size: size, src: src}, Options{
		Root:            t.TempDir(),
		StreamThreshold: 1024,
		ChunkSize:       1024,
		PauseEvery:      10,
	})

	var calls []int64
	res, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{
		OnProgress: func(bytesRead, total int64) {
			assert.Equal(t, int64(size), total)
			calls = append(calls, bytesRead)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 25, res.ChunksProcessed)
	assert.Len(t, calls, 25)
	assert.Equal(t, int64(size), calls[len(calls)-1])
	assert.Equal(t, 2, src.pauses)
	assert.Equal(t, 2, src.resumes)
	assert.Equal(t, int64(2), r.Stats().BackpressurePauses)
}

func TestReader_NoProgressAfterTimeout(t *testing.T) {
	const size = 64 * 1024
	src := &slowSource{remaining: size, delay: 2 * time.Millisecond}
	r := New(&fakeFS{size: size, src: src}, Options{
		Root:            t.TempDir(),
		StreamThreshold: 1024,
		ChunkSize:       1024,
	})

	var calls []int64
	_, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{
		Timeout:    5 * time.Millisecond,
		OnProgress: func(bytesRead, _ int64) { calls = append(calls, bytesRead) },
	})
	requireReadCode(t, err, domain.ReadTimeout)

	seen := len(calls)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, calls, seen, "progress must stop once the read has settled")
}

func TestReader_OversizedStatDoesNotPreallocate(t *testing.T) {
	src := io.NopCloser(strings.NewReader("tiny body"))
	r := New(&fakeFS{size: 1 << 40, src: src}, Options{Root: t.TempDir(), StreamThreshold: 1024})

	res, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{})
	require.NoError(t, err)
	assert.True(t, res.WasStreamed)
	assert.Equal(t, "tiny body", res.Content)
}

func TestReader_CacheHit(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	want := writeFile(t, root, "doc.md", 100)

	c := cache.New(cache.Options{MaxSize: 4})
	r := New(filesystem.NewPrimitives(), Options{Root: root, Cache: c})

	first, err := r.Read(ctx, "doc.md", ports.ReadOptions{})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := r.Read(ctx, "doc.md", ports.ReadOptions{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, want, second.Content)
	assert.Equal(t, first.Version, second.Version)

	third, err := r.Read(ctx, "doc.md", ports.ReadOptions{SkipCache: true})
	require.NoError(t, err)
	assert.False(t, third.FromCache)

	assert.Equal(t, int64(1), r.Stats().CacheHits)
}

func TestReader_CacheMissAfterChange(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	path := filepath.Join(root, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	r := New(filesystem.NewPrimitives(), Options{Root: root, Cache: cache.New(cache.Options{})})
	_, err := r.Read(ctx, "doc.md", ports.ReadOptions{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	res, err := r.Read(ctx, "doc.md", ports.ReadOptions{})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, "v2", res.Content)
}

func TestReader_Failures(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.md"), []byte{0xff, 0xfe, 0xfd}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))

	r := New(filesystem.NewPrimitives(), Options{Root: root})

	tests := []struct {
		name string
		path string
		code domain.ReadCode
	}{
		{name: "traversal", path: "../etc/passwd", code: domain.ReadPathRejected},
		{name: "null byte", path: "a\x00b", code: domain.ReadPathRejected},
		{name: "outside root", path: "/etc/passwd", code: domain.ReadPathRejected},
		{name: "missing", path: "missing.md", code: domain.ReadNotFound},
		{name: "directory", path: "dir", code: domain.ReadIOFailed},
		{name: "invalid utf8", path: "bad.md", code: domain.ReadDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(ctx, tt.path, ports.ReadOptions{})
			requireReadCode(t, err, tt.code)
		})
	}

	_, err := r.Read(ctx, "../x", ports.ReadOptions{})
	assert.True(t, errors.Is(err, domain.ErrPathRejected))
	assert.Equal(t, int64(len(tests)+1), r.Stats().Failures)
	assert.Empty(t, r.ActiveOperations())
}

func TestReader_ResetStats(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.md", 10)

	r := New(filesystem.NewPrimitives(), Options{Root: root})
	_, err := r.Read(context.Background(), "doc.md", ports.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Stats().BufferedReads)

	r.ResetStats()
	stats := r.Stats()
	assert.Zero(t, stats.BufferedReads)
	assert.Zero(t, stats.TotalBytesRead)
	assert.False(t, stats.LastReset.IsZero())
}
