package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentType identifies one of the fixed memory bank documents
type DocumentType int

const (
	DocProjectBrief DocumentType = iota
	DocProductContext
	DocActiveContext
	DocSystemPatterns
	DocTechContext
	DocProgress
)

// documentSpec describes where a document lives and how its header is checked
type documentSpec struct {
	Key    string
	Title  string
	Path   string // Relative to the memory bank root, slash separated
	Schema SchemaKind
}

var catalog = map[DocumentType]documentSpec{
	DocProjectBrief:   {Key: "projectbrief", Title: "Project Brief", Path: "core/projectbrief.md", Schema: SchemaBrief},
	DocProductContext: {Key: "productContext", Title: "Product Context", Path: "core/productContext.md", Schema: SchemaContext},
	DocActiveContext:  {Key: "activeContext", Title: "Active Context", Path: "core/activeContext.md", Schema: SchemaContext},
	DocSystemPatterns: {Key: "systemPatterns", Title: "System Patterns", Path: "systemPatterns/systemPatterns.md", Schema: SchemaPatterns},
	DocTechContext:    {Key: "techContext", Title: "Tech Context", Path: "techContext/techContext.md", Schema: SchemaTech},
	DocProgress:       {Key: "progress", Title: "Progress", Path: "progress/progress.md", Schema: SchemaProgress},
}

// AllDocumentTypes returns the catalog in its canonical order
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocProjectBrief,
		DocProductContext,
		DocActiveContext,
		DocSystemPatterns,
		DocTechContext,
		DocProgress,
	}
}

// String returns the document key, e.g. "projectbrief"
func (t DocumentType) String() string {
	if spec, ok := catalog[t]; ok {
		return spec.Key
	}
	return "unknown"
}

// Title returns the human readable name
func (t DocumentType) Title() string {
	if spec, ok := catalog[t]; ok {
		return spec.Title
	}
	return "Unknown"
}

// RelativePath returns the OS specific path of the document below the root
func (t DocumentType) RelativePath() string {
	if spec, ok := catalog[t]; ok {
		return filepath.FromSlash(spec.Path)
	}
	return ""
}

// Schema returns the front-matter schema the document defaults to
func (t DocumentType) Schema() SchemaKind {
	if spec, ok := catalog[t]; ok {
		return spec.Schema
	}
	return SchemaDefault
}

// Valid reports whether t is part of the catalog
func (t DocumentType) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// ParseDocumentType resolves a key such as "progress" or "progress.md".
// Matching is case-insensitive.
func ParseDocumentType(s string) (DocumentType, error) {
	name := strings.TrimSuffix(strings.TrimSpace(s), ".md")
	for _, t := range AllDocumentTypes() {
		if strings.EqualFold(catalog[t].Key, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDocument, s)
}
