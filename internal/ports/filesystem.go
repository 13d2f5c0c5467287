package ports

import (
	"context"
	"io"
	"time"
)

// FileInfo is the subset of file metadata the memory bank relies on
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	Regular bool
}

// Version returns the modification time in nanoseconds, used as the
// cache version of the file's content.
func (fi FileInfo) Version() int64 {
	return fi.ModTime.UnixNano()
}

// FileSystem defines the low-level file primitives used by the reader and
// the orchestrator. Missing files are reported with an error matching
// fs.ErrNotExist; transient failures are retried by implementations.
type FileSystem interface {
	MkdirAll(ctx context.Context, path string) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Stat(ctx context.Context, path string) (FileInfo, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
