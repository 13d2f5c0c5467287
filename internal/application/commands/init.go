package commands

import (
	"context"
	"fmt"
	"strings"

	"memorybank/internal/domain"
)

// InitResult contains the result of loading the memory bank
type InitResult struct {
	Created []domain.DocumentType
	Message string
}

// InitCommand loads every document, creating missing ones from templates
type InitCommand struct {
	bank Bank
}

// NewInitCommand creates a new InitCommand
func NewInitCommand(bank Bank) *InitCommand {
	return &InitCommand{bank: bank}
}

// Execute runs the init command
func (c *InitCommand) Execute(ctx context.Context) (*InitResult, error) {
	created, err := c.bank.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory bank: %w", err)
	}

	if len(created) == 0 {
		return &InitResult{Message: "All documents present"}, nil
	}

	names := make([]string, len(created))
	for i, dt := range created {
		names[i] = dt.String()
	}
	return &InitResult{
		Created: created,
		Message: fmt.Sprintf("Created %d document(s): %s", len(created), strings.Join(names, ", ")),
	}, nil
}
