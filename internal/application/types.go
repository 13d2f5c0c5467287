package application

import "memorybank/internal/domain"

// Re-export domain types for use by adapters
type (
	DocumentType      = domain.DocumentType
	DocumentRecord    = domain.DocumentRecord
	HealthCheckResult = domain.HealthCheckResult
	Revision          = domain.Revision
)

// ParseDocumentType resolves a document key such as "progress"
func ParseDocumentType(s string) (DocumentType, error) {
	return domain.ParseDocumentType(s)
}

// AllDocumentTypes returns the catalog in its canonical order
func AllDocumentTypes() []DocumentType {
	return domain.AllDocumentTypes()
}
