package commands

import (
	"context"
	"fmt"

	"memorybank/internal/application"
	"memorybank/internal/domain"
)

// DocumentSummary is one row of a document listing
type DocumentSummary struct {
	Type             domain.DocumentType
	Title            string
	Path             string
	Status           domain.ValidationStatus
	ValidationErrors []string
	Size             int
}

// ListDocumentsCommand lists every loaded document
type ListDocumentsCommand struct {
	bank Bank
}

// NewListDocumentsCommand creates a new ListDocumentsCommand
func NewListDocumentsCommand(bank Bank) *ListDocumentsCommand {
	return &ListDocumentsCommand{bank: bank}
}

// Execute runs the list documents command
func (c *ListDocumentsCommand) Execute(ctx context.Context) ([]DocumentSummary, error) {
	if err := requireInitialized(c.bank, "list", "documents"); err != nil {
		return nil, err
	}

	records := c.bank.GetAllDocuments()
	out := make([]DocumentSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, DocumentSummary{
			Type:             rec.Type,
			Title:            rec.Type.Title(),
			Path:             rec.FilePath,
			Status:           rec.Status,
			ValidationErrors: rec.ValidationErrors,
			Size:             len(rec.Content),
		})
	}
	return out, nil
}

// ShowDocumentCommand returns one document
type ShowDocumentCommand struct {
	bank    Bank
	DocType string
}

// NewShowDocumentCommand creates a new ShowDocumentCommand
func NewShowDocumentCommand(bank Bank, docType string) *ShowDocumentCommand {
	return &ShowDocumentCommand{
		bank:    bank,
		DocType: docType,
	}
}

// Validate checks if the document type is known
func (c *ShowDocumentCommand) Validate() error {
	_, err := application.ValidateDocumentType("docType", c.DocType)
	return err
}

// Execute runs the show document command
func (c *ShowDocumentCommand) Execute(ctx context.Context) (*domain.DocumentRecord, error) {
	dt, err := application.ValidateDocumentType("docType", c.DocType)
	if err != nil {
		return nil, err
	}
	if err := requireInitialized(c.bank, "show", dt.String()); err != nil {
		return nil, err
	}

	rec, ok := c.bank.GetDocument(dt)
	if !ok {
		return nil, fmt.Errorf("document %s is not loaded", dt)
	}
	return rec, nil
}
