package domain

import (
	"maps"
	"slices"
	"time"
)

// ValidationStatus is the outcome of checking a document's front-matter
type ValidationStatus string

const (
	StatusValid     ValidationStatus = "valid"
	StatusInvalid   ValidationStatus = "invalid"
	StatusUnchecked ValidationStatus = "unchecked"
)

// DocumentRecord is the in-memory view of one memory bank document.
// Records are replaced wholesale, never mutated after publication.
type DocumentRecord struct {
	Type             DocumentType
	Content          string         // Body without the front-matter block
	Raw              string         // Full file content, header included
	Metadata         map[string]any // Decoded front-matter, nil when absent
	Status           ValidationStatus
	ValidationErrors []string
	LastUpdated      time.Time
	FilePath         string // Absolute path on disk
	Checksum         uint64 // xxhash of the raw file content
}

// Clone returns a copy that shares no mutable state with r
func (r *DocumentRecord) Clone() *DocumentRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Metadata = maps.Clone(r.Metadata)
	c.ValidationErrors = slices.Clone(r.ValidationErrors)
	return &c
}

// HealthCheckResult summarizes a health check over the memory bank
type HealthCheckResult struct {
	IsHealthy bool
	Issues    []string
	Summary   string
}

// Revision is one entry of a document's history
type Revision struct {
	Type       DocumentType
	Path       string
	Checksum   uint64
	Status     ValidationStatus
	Mtime      int64
	Created    bool // The revision was produced by self-healing
	RecordedAt time.Time
}
