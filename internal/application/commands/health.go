package commands

import (
	"context"

	"memorybank/internal/domain"
)

// HealthCommand checks that the memory bank is complete on disk
type HealthCommand struct {
	bank Bank
}

// NewHealthCommand creates a new HealthCommand
func NewHealthCommand(bank Bank) *HealthCommand {
	return &HealthCommand{bank: bank}
}

// Execute runs the health check. It never fails; problems are issues.
func (c *HealthCommand) Execute(ctx context.Context) domain.HealthCheckResult {
	return c.bank.CheckHealth(ctx)
}
