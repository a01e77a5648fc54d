package storage

import (
	"context"

	"github.com/pkg/errors"

	"arc56/internal/models"
)

// NopRepository discards writes and returns empty reads
type NopRepository struct{}

// NewNopRepository creates a repository that stores nothing
func NewNopRepository() *NopRepository {
	return &NopRepository{}
}

func (NopRepository) SaveDeployment(context.Context, *models.Deployment) error { return nil }

func (NopRepository) GetDeployment(_ context.Context, appID uint64) (*models.Deployment, error) {
	return nil, errors.Wrapf(ErrNotFound, "deployment %d", appID)
}

func (NopRepository) ListDeployments(context.Context, int, int) ([]*models.Deployment, error) {
	return nil, nil
}

func (NopRepository) SaveActivity(context.Context, *models.CallActivity) error { return nil }

func (NopRepository) ListActivities(context.Context, models.ActivityFilter) ([]*models.CallActivity, error) {
	return nil, nil
}

func (NopRepository) Ping(context.Context) error { return nil }

func (NopRepository) Close() error { return nil }
