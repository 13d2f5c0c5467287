package commands

import (
	"context"

	"memorybank/internal/application"
	"memorybank/internal/domain"
)

// Bank is the memory bank as seen by commands
type Bank interface {
	LoadAll(ctx context.Context) ([]domain.DocumentType, error)
	GetDocument(dt domain.DocumentType) (*domain.DocumentRecord, bool)
	GetAllDocuments() []*domain.DocumentRecord
	Update(ctx context.Context, dt domain.DocumentType, content string) (*domain.DocumentRecord, error)
	WriteArbitrary(ctx context.Context, relativePath, content string, overwrite bool) (string, error)
	CheckHealth(ctx context.Context) domain.HealthCheckResult
	History(dt domain.DocumentType, limit int) ([]domain.Revision, error)
	IsInitialized() bool
}

// Ensure Orchestrator implements Bank
var _ Bank = (*application.Orchestrator)(nil)

// requireInitialized fails when LoadAll has not run yet
func requireInitialized(bank Bank, op, target string) error {
	if bank.IsInitialized() {
		return nil
	}
	return &application.OrchestrationError{
		Code:   application.CodeNotInitialized,
		Op:     op,
		Target: target,
		Err:    application.ErrNotInitialized,
	}
}
