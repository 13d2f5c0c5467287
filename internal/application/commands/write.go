package commands

import (
	"context"
	"fmt"

	"memorybank/internal/application"
)

// WriteFileResult contains the result of writing a file
type WriteFileResult struct {
	Path    string
	Message string
}

// WriteFileCommand writes a file anywhere under the memory bank root
type WriteFileCommand struct {
	bank         Bank
	RelativePath string
	Content      string
	Overwrite    bool
}

// NewWriteFileCommand creates a new WriteFileCommand
func NewWriteFileCommand(bank Bank, relativePath, content string, overwrite bool) *WriteFileCommand {
	return &WriteFileCommand{
		bank:         bank,
		RelativePath: relativePath,
		Content:      content,
		Overwrite:    overwrite,
	}
}

// Validate checks if the write operation is valid
func (c *WriteFileCommand) Validate() error {
	return application.ValidateRequired("relativePath", c.RelativePath)
}

// Execute runs the write file command
func (c *WriteFileCommand) Execute(ctx context.Context) (*WriteFileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	path, err := c.bank.WriteArbitrary(ctx, c.RelativePath, c.Content, c.Overwrite)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", c.RelativePath, err)
	}
	return &WriteFileResult{
		Path:    path,
		Message: fmt.Sprintf("Wrote %d bytes to %s", len(c.Content), path),
	}, nil
}
