package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"memorybank/internal/ports"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Primitives implements ports.FileSystem on the local disk, retrying
// transient failures with exponential backoff.
type Primitives struct {
	maxTries   uint
	initial    time.Duration
	maxElapsed time.Duration
	logger     *zap.Logger
}

// Ensure Primitives implements FileSystem
var _ ports.FileSystem = (*Primitives)(nil)

// Option configures Primitives
type Option func(*Primitives)

// WithMaxTries sets how many attempts an operation gets
func WithMaxTries(n uint) Option {
	return func(p *Primitives) {
		if n > 0 {
			p.maxTries = n
		}
	}
}

// WithInitialInterval sets the first backoff delay
func WithInitialInterval(d time.Duration) Option {
	return func(p *Primitives) {
		if d > 0 {
			p.initial = d
		}
	}
}

// WithLogger sets the logger used to report retries
func WithLogger(l *zap.Logger) Option {
	return func(p *Primitives) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPrimitives creates the disk backed primitives
func NewPrimitives(opts ...Option) *Primitives {
	p := &Primitives{
		maxTries:   3,
		initial:    20 * time.Millisecond,
		maxElapsed: 2 * time.Second,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MkdirAll creates path and any missing parents
func (p *Primitives) MkdirAll(ctx context.Context, path string) error {
	_, err := retry(ctx, p, "mkdir", path, func() (struct{}, error) {
		return struct{}{}, os.MkdirAll(path, dirPerm)
	})
	return err
}

// ReadFile reads the whole file
func (p *Primitives) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return retry(ctx, p, "read", path, func() ([]byte, error) {
		//nolint:gosec // Paths are sanitized by the caller
		return os.ReadFile(path)
	})
}

// WriteFile replaces the file content through a temp file and rename so
// readers never observe a partially written document.
func (p *Primitives) WriteFile(ctx context.Context, path string, data []byte) error {
	_, err := retry(ctx, p, "write", path, func() (struct{}, error) {
		return struct{}{}, writeAtomic(path, data)
	})
	return err
}

// Stat returns file metadata
func (p *Primitives) Stat(ctx context.Context, path string) (ports.FileInfo, error) {
	return retry(ctx, p, "stat", path, func() (ports.FileInfo, error) {
		info, err := os.Stat(path)
		if err != nil {
			return ports.FileInfo{}, err
		}
		return ports.FileInfo{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
			Regular: info.Mode().IsRegular(),
		}, nil
	})
}

// Open opens the file for streaming reads
func (p *Primitives) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return retry(ctx, p, "open", path, func() (io.ReadCloser, error) {
		//nolint:gosec // Paths are sanitized by the caller
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

func retry[T any](ctx context.Context, p *Primitives, op, path string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial

	attempt := 0
	v, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		// A single attempt runs to completion; deadlines apply between attempts
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		v, err := fn()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.maxTries),
		backoff.WithMaxElapsedTime(p.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.logger.Debug("retrying filesystem operation",
				zap.String("op", op),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("next", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to %s %s: %w", op, path, err)
	}
	return v, nil
}

// isTransient reports whether err is worth another attempt
func isTransient(err error) bool {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrExist) {
		return false
	}
	for _, errno := range []syscall.Errno{syscall.EAGAIN, syscall.EBUSY, syscall.EINTR, syscall.EMFILE, syscall.ENFILE} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
