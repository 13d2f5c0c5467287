package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"memorybank/internal/domain"
	"memorybank/internal/ports"
)

// Deps are the collaborators of an Orchestrator. FS, Reader and Templates
// are required.
type Deps struct {
	FS        ports.FileSystem
	Reader    ports.DocumentReader
	Templates ports.TemplateProvider
	Cache     ports.ContentCache  // Invalidated on writes when set
	Index     ports.RevisionIndex // Receives one revision per load and update when set
	Logger    *zap.Logger
	Now       func() time.Time
}

// Options configures an Orchestrator
type Options struct {
	Root string
}

// Orchestrator owns the fixed catalog of memory bank documents. It creates
// missing documents from templates, validates their front-matter and keeps
// one record per document type.
type Orchestrator struct {
	root      string
	fs        ports.FileSystem
	reader    ports.DocumentReader
	templates ports.TemplateProvider
	cache     ports.ContentCache
	index     ports.RevisionIndex
	logger    *zap.Logger
	now       func() time.Time

	// Loads, updates and writes of one document type are serialized
	locks map[domain.DocumentType]*sync.Mutex

	mu          sync.RWMutex
	records     map[domain.DocumentType]*domain.DocumentRecord
	initialized bool
}

// NewOrchestrator creates an orchestrator rooted at opts.Root
func NewOrchestrator(deps Deps, opts Options) (*Orchestrator, error) {
	if deps.FS == nil || deps.Reader == nil || deps.Templates == nil {
		return nil, errors.New("orchestrator requires a filesystem, a reader and templates")
	}
	if err := ValidateRequired("root", opts.Root); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	locks := make(map[domain.DocumentType]*sync.Mutex)
	for _, dt := range domain.AllDocumentTypes() {
		locks[dt] = &sync.Mutex{}
	}

	return &Orchestrator{
		root:      root,
		fs:        deps.FS,
		reader:    deps.Reader,
		templates: deps.Templates,
		cache:     deps.Cache,
		index:     deps.Index,
		logger:    deps.Logger,
		now:       deps.Now,
		locks:     locks,
		records:   make(map[domain.DocumentType]*domain.DocumentRecord),
	}, nil
}

// Root returns the absolute memory bank root
func (o *Orchestrator) Root() string {
	return o.root
}

// LoadAll loads every document type concurrently, creating missing ones
// from their template. It returns the created types in catalog order.
func (o *Orchestrator) LoadAll(ctx context.Context) ([]domain.DocumentType, error) {
	if err := o.fs.MkdirAll(ctx, o.root); err != nil {
		return nil, &OrchestrationError{Code: CodeMkdirFailed, Op: "load", Target: o.root, Err: err}
	}

	types := domain.AllDocumentTypes()
	created := make([]bool, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, dt := range types {
		g.Go(func() error {
			c, err := o.load(gctx, dt)
			created[i] = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []domain.DocumentType
	for i, dt := range types {
		if created[i] {
			result = append(result, dt)
		}
	}

	o.mu.Lock()
	o.initialized = true
	o.mu.Unlock()

	if len(result) > 0 {
		o.logger.Info("memory bank self-healed", zap.Int("created", len(result)), zap.String("root", o.root))
	}
	return result, nil
}

func (o *Orchestrator) load(ctx context.Context, dt domain.DocumentType) (bool, error) {
	lock := o.locks[dt]
	lock.Lock()
	defer lock.Unlock()

	abs, err := o.pathFor(dt)
	if err != nil {
		return false, &OrchestrationError{Code: CodePathInvalid, Op: "load", Target: dt.String(), Err: err}
	}

	var (
		content string
		version int64
		created bool
	)
	res, err := o.reader.Read(ctx, abs, ports.ReadOptions{})
	switch {
	case err == nil:
		content, version = res.Content, res.Version
	case domain.IsNotFound(err):
		content, err = o.create(ctx, dt, abs)
		if err != nil {
			return false, err
		}
		created = true
		version = o.versionOf(ctx, abs)
	default:
		return false, &OrchestrationError{Code: CodeReadFailed, Op: "load", Target: dt.String(), Err: err}
	}

	rec := o.buildRecord(dt, abs, content)
	o.publish(rec)
	o.recordRevision(rec, version, created)
	return created, nil
}

// create renders the template for dt and writes it to abs
func (o *Orchestrator) create(ctx context.Context, dt domain.DocumentType, abs string) (string, error) {
	content, err := o.templates.TemplateFor(dt)
	if err != nil {
		return "", &OrchestrationError{Code: CodeTemplateFailed, Op: "create", Target: dt.String(), Err: err}
	}
	if err := o.fs.MkdirAll(ctx, filepath.Dir(abs)); err != nil {
		return "", &OrchestrationError{Code: CodeMkdirFailed, Op: "create", Target: dt.String(), Err: err}
	}
	if err := o.fs.WriteFile(ctx, abs, []byte(content)); err != nil {
		return "", &OrchestrationError{Code: CodeWriteFailed, Op: "create", Target: dt.String(), Err: err}
	}
	o.invalidate(abs)

	o.logger.Info("created missing document from template",
		zap.String("document", dt.String()),
		zap.String("path", abs))
	return content, nil
}

// Update replaces the content of dt on disk and swaps its record
func (o *Orchestrator) Update(ctx context.Context, dt domain.DocumentType, content string) (*domain.DocumentRecord, error) {
	if !dt.Valid() {
		return nil, &OrchestrationError{Code: CodeUnknownDocument, Op: "update", Target: dt.String(), Err: domain.ErrUnknownDocument}
	}

	lock := o.locks[dt]
	lock.Lock()
	defer lock.Unlock()

	abs, err := o.pathFor(dt)
	if err != nil {
		return nil, &OrchestrationError{Code: CodePathInvalid, Op: "update", Target: dt.String(), Err: err}
	}
	if err := o.fs.MkdirAll(ctx, filepath.Dir(abs)); err != nil {
		return nil, &OrchestrationError{Code: CodeMkdirFailed, Op: "update", Target: dt.String(), Err: err}
	}
	if err := o.fs.WriteFile(ctx, abs, []byte(content)); err != nil {
		return nil, &OrchestrationError{Code: CodeWriteFailed, Op: "update", Target: dt.String(), Err: err}
	}
	o.invalidate(abs)

	rec := o.buildRecord(dt, abs, content)
	o.publish(rec)
	o.recordRevision(rec, o.versionOf(ctx, abs), false)
	return rec.Clone(), nil
}

// WriteArbitrary writes content to a path relative to the root. An existing
// file is only replaced when overwrite is true. Returns the absolute path.
func (o *Orchestrator) WriteArbitrary(ctx context.Context, relativePath, content string, overwrite bool) (string, error) {
	rel, err := domain.Sanitize(relativePath, o.root)
	if err != nil {
		return "", &OrchestrationError{Code: CodePathInvalid, Op: "write", Target: relativePath, Err: err}
	}
	if rel == "." {
		return "", &OrchestrationError{Code: CodePathInvalid, Op: "write", Target: relativePath,
			Err: errors.New("cannot write to the memory bank root")}
	}
	abs, err := domain.ResolveUnder(o.root, rel)
	if err != nil {
		return "", &OrchestrationError{Code: CodePathInvalid, Op: "write", Target: relativePath, Err: err}
	}

	// A catalog document keeps its record in step with the file
	dt, isDoc := o.typeForPath(abs)
	if isDoc {
		lock := o.locks[dt]
		lock.Lock()
		defer lock.Unlock()
	}

	info, err := o.fs.Stat(ctx, abs)
	switch {
	case err == nil && info.IsDir:
		return "", &OrchestrationError{Code: CodeWriteFailed, Op: "write", Target: rel, Err: errors.New("path is a directory")}
	case err == nil && !overwrite:
		return "", &OrchestrationError{Code: CodeAlreadyExists, Op: "write", Target: rel, Err: ErrAlreadyExists}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", &OrchestrationError{Code: CodeReadFailed, Op: "write", Target: rel, Err: err}
	}

	if err := o.fs.MkdirAll(ctx, filepath.Dir(abs)); err != nil {
		return "", &OrchestrationError{Code: CodeMkdirFailed, Op: "write", Target: rel, Err: err}
	}
	if err := o.fs.WriteFile(ctx, abs, []byte(content)); err != nil {
		return "", &OrchestrationError{Code: CodeWriteFailed, Op: "write", Target: rel, Err: err}
	}
	o.invalidate(abs)

	if isDoc {
		rec := o.buildRecord(dt, abs, content)
		o.publish(rec)
		o.recordRevision(rec, o.versionOf(ctx, abs), false)
	}

	o.logger.Debug("wrote file", zap.String("path", abs), zap.Bool("overwrite", overwrite))
	return abs, nil
}

// GetDocument returns a copy of the record for dt
func (o *Orchestrator) GetDocument(dt domain.DocumentType) (*domain.DocumentRecord, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	rec, ok := o.records[dt]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// GetAllDocuments returns copies of every loaded record in catalog order
func (o *Orchestrator) GetAllDocuments() []*domain.DocumentRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]*domain.DocumentRecord, 0, len(o.records))
	for _, dt := range domain.AllDocumentTypes() {
		if rec, ok := o.records[dt]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// History returns the most recent revisions of dt, newest first. It is
// empty when no revision index is configured.
func (o *Orchestrator) History(dt domain.DocumentType, limit int) ([]domain.Revision, error) {
	if !dt.Valid() {
		return nil, &OrchestrationError{Code: CodeUnknownDocument, Op: "history", Target: dt.String(), Err: domain.ErrUnknownDocument}
	}
	if o.index == nil {
		return nil, nil
	}
	revs, err := o.index.History(dt, limit)
	if err != nil {
		return nil, &OrchestrationError{Code: CodeReadFailed, Op: "history", Target: dt.String(), Err: err}
	}
	return revs, nil
}

// IsInitialized reports whether LoadAll has completed since the last Dispose
func (o *Orchestrator) IsInitialized() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.initialized
}

// Dispose drops every record and cached entry. Operations in flight are not
// cancelled.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	o.records = make(map[domain.DocumentType]*domain.DocumentRecord)
	o.initialized = false
	o.mu.Unlock()

	if o.cache != nil {
		o.cache.InvalidateAll()
	}
}

func (o *Orchestrator) pathFor(dt domain.DocumentType) (string, error) {
	return domain.SafeJoin(o.root, dt.RelativePath())
}

func (o *Orchestrator) typeForPath(abs string) (domain.DocumentType, bool) {
	for _, dt := range domain.AllDocumentTypes() {
		if p, err := o.pathFor(dt); err == nil && p == abs {
			return dt, true
		}
	}
	return 0, false
}

// buildRecord validates content. Invalid metadata only downgrades the status.
func (o *Orchestrator) buildRecord(dt domain.DocumentType, abs, content string) *domain.DocumentRecord {
	v := domain.ValidateContent(content)
	if v.Status == domain.StatusInvalid {
		o.logger.Warn("document has invalid front-matter",
			zap.String("document", dt.String()),
			zap.Strings("errors", v.Errors))
	}

	return &domain.DocumentRecord{
		Type:             dt,
		Content:          v.Body,
		Raw:              content,
		Metadata:         v.Metadata,
		Status:           v.Status,
		ValidationErrors: v.Errors,
		LastUpdated:      o.now(),
		FilePath:         abs,
		Checksum:         xxhash.Sum64String(content),
	}
}

// publish swaps the record for its type
func (o *Orchestrator) publish(rec *domain.DocumentRecord) {
	o.mu.Lock()
	o.records[rec.Type] = rec
	o.mu.Unlock()
}

func (o *Orchestrator) invalidate(abs string) {
	if o.cache != nil {
		o.cache.Invalidate(abs)
	}
}

func (o *Orchestrator) versionOf(ctx context.Context, abs string) int64 {
	info, err := o.fs.Stat(ctx, abs)
	if err != nil {
		return 0
	}
	return info.Version()
}

// recordRevision appends to the index. Index failures never fail the
// operation that produced the revision.
func (o *Orchestrator) recordRevision(rec *domain.DocumentRecord, version int64, created bool) {
	if o.index == nil {
		return
	}
	err := o.index.Record(domain.Revision{
		Type:       rec.Type,
		Path:       rec.FilePath,
		Checksum:   rec.Checksum,
		Status:     rec.Status,
		Mtime:      version,
		Created:    created,
		RecordedAt: o.now(),
	})
	if err != nil {
		o.logger.Warn("failed to record revision", zap.String("document", rec.Type.String()), zap.Error(err))
	}
}
