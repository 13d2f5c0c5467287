package ports

import "memorybank/internal/domain"

// TemplateProvider supplies the initial content for a document type
type TemplateProvider interface {
	TemplateFor(docType domain.DocumentType) (string, error)
}
