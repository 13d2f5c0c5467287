package commands

import (
	"context"
	"fmt"

	"memorybank/internal/application"
	"memorybank/internal/domain"
)

// UpdateDocumentResult contains the result of updating a document
type UpdateDocumentResult struct {
	Record  *domain.DocumentRecord
	Message string
}

// UpdateDocumentCommand replaces the content of a catalog document
type UpdateDocumentCommand struct {
	bank    Bank
	DocType string
	Content string
}

// NewUpdateDocumentCommand creates a new UpdateDocumentCommand
func NewUpdateDocumentCommand(bank Bank, docType, content string) *UpdateDocumentCommand {
	return &UpdateDocumentCommand{
		bank:    bank,
		DocType: docType,
		Content: content,
	}
}

// Validate checks if the update operation is valid
func (c *UpdateDocumentCommand) Validate() error {
	if _, err := application.ValidateDocumentType("docType", c.DocType); err != nil {
		return err
	}
	return application.ValidateRequired("content", c.Content)
}

// Execute runs the update document command
func (c *UpdateDocumentCommand) Execute(ctx context.Context) (*UpdateDocumentResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	dt, _ := domain.ParseDocumentType(c.DocType)

	rec, err := c.bank.Update(ctx, dt, c.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", dt, err)
	}

	msg := fmt.Sprintf("Updated %s (%s)", dt.Title(), rec.Status)
	if rec.Status == domain.StatusInvalid {
		msg = fmt.Sprintf("Updated %s with %d metadata problem(s)", dt.Title(), len(rec.ValidationErrors))
	}
	return &UpdateDocumentResult{Record: rec, Message: msg}, nil
}
