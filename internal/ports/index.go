package ports

import "memorybank/internal/domain"

// RevisionIndex records the history of document loads and updates.
// Only metadata is stored; document content stays on disk.
type RevisionIndex interface {
	Record(rev domain.Revision) error
	History(docType domain.DocumentType, limit int) ([]domain.Revision, error)
	Close() error
}
