package services

import (
	"context"

	"arc56/internal/models"
)

// Service defines the interface for post-call hooks run after a submission settles
type Service interface {
	// Process handles a single call outcome
	// Returns error only for failures worth surfacing in logs and metrics
	// Note: outcome is passed by reference and must not be mutated
	Process(ctx context.Context, outcome *models.CallOutcome) error

	// Name returns the service name for logging
	Name() string
}
