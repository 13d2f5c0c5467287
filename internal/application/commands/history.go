package commands

import (
	"context"
	"fmt"

	"memorybank/internal/application"
	"memorybank/internal/domain"
)

// DefaultHistoryLimit is used when no limit is given
const DefaultHistoryLimit = 20

// HistoryCommand lists the recorded revisions of a document
type HistoryCommand struct {
	bank    Bank
	DocType string
	Limit   int
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(bank Bank, docType string, limit int) *HistoryCommand {
	return &HistoryCommand{
		bank:    bank,
		DocType: docType,
		Limit:   limit,
	}
}

// Validate checks if the history request is valid
func (c *HistoryCommand) Validate() error {
	if _, err := application.ValidateDocumentType("docType", c.DocType); err != nil {
		return err
	}
	if c.Limit < 0 {
		return &application.ValidationError{Field: "limit", Message: "limit must not be negative"}
	}
	return nil
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context) ([]domain.Revision, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	dt, _ := domain.ParseDocumentType(c.DocType)

	limit := c.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	revs, err := c.bank.History(dt, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", dt, err)
	}
	return revs, nil
}
