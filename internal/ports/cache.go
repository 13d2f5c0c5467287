package ports

// ContentCache is a bounded, versioned cache of file contents keyed by
// absolute path. Callers must serialize writes to the same key.
type ContentCache interface {
	Get(key string, version int64) (string, bool)
	Set(key, content string, version int64)
	Invalidate(key string)
	InvalidateAll()
}
