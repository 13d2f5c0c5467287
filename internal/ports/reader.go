package ports

import (
	"context"
	"time"
)

// ProgressFunc receives the bytes read so far and the file size
type ProgressFunc func(bytesRead, totalBytes int64)

// ReadOptions tune a single read
type ReadOptions struct {
	Timeout    time.Duration // Zero uses the reader default
	OnProgress ProgressFunc
	SkipCache  bool
}

// ReadResult is the outcome of a successful read
type ReadResult struct {
	Content         string
	Version         int64
	WasStreamed     bool
	FromCache       bool
	Duration        time.Duration
	BytesRead       int64
	ChunksProcessed int
}

// DocumentReader reads memory bank files, choosing a strategy per file
type DocumentReader interface {
	Read(ctx context.Context, path string, opts ReadOptions) (*ReadResult, error)
	WouldStream(ctx context.Context, path string) (bool, error)
}
