package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrUnknownDocument = errors.New("unknown document type")
	ErrPathRejected    = errors.New("path rejected")
	ErrReadFailed      = errors.New("read failed")
)

// PathCode identifies why a path was rejected
type PathCode string

const (
	PathEmpty       PathCode = "PATH_EMPTY"
	PathNullByte    PathCode = "PATH_NULL_BYTE"
	PathTraversal   PathCode = "PATH_TRAVERSAL"
	PathAbsolute    PathCode = "PATH_ABSOLUTE"
	PathOutsideRoot PathCode = "PATH_OUTSIDE_ROOT"
)

// PathValidationError represents a rejected path
type PathValidationError struct {
	Code   PathCode
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%q)", e.Code, e.Reason, e.Path)
}

func (e *PathValidationError) Is(target error) bool {
	return target == ErrPathRejected
}

// ReadCode identifies a read failure
type ReadCode string

const (
	ReadNotFound     ReadCode = "NOT_FOUND"
	ReadPathRejected ReadCode = "PATH_REJECTED"
	ReadStatFailed   ReadCode = "STAT_FAILED"
	ReadIOFailed     ReadCode = "READ_FAILED"
	ReadTimeout      ReadCode = "STREAMING_TIMEOUT"
	ReadStreamClosed ReadCode = "STREAM_CLOSED"
	ReadCanceled     ReadCode = "READ_CANCELED"
	ReadDecodeFailed ReadCode = "READ_DECODE_FAILED"
)

// ReadError represents a failed read of a memory bank file
type ReadError struct {
	Code ReadCode
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (e *ReadError) Is(target error) bool {
	return target == ErrReadFailed
}

// IsNotFound reports whether err is a read of a missing file
func IsNotFound(err error) bool {
	var re *ReadError
	return errors.As(err, &re) && re.Code == ReadNotFound
}

// CacheError is reserved for capacity or consistency faults in the content
// cache. The cache currently degrades to a miss instead of returning it.
type CacheError struct {
	Key    string
	Reason string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %s", e.Key, e.Reason)
}
