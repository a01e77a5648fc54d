package storage

import (
	"context"

	"github.com/pkg/errors"

	"arc56/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for all storage operations
type Repository interface {
	// Deployments
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	GetDeployment(ctx context.Context, appID uint64) (*models.Deployment, error)
	ListDeployments(ctx context.Context, limit, offset int) ([]*models.Deployment, error)

	// Call activities
	SaveActivity(ctx context.Context, activity *models.CallActivity) error
	ListActivities(ctx context.Context, filter models.ActivityFilter) ([]*models.CallActivity, error)

	// Health & Maintenance
	Ping(ctx context.Context) error
	Close() error
}

// Open selects a repository implementation by driver name
func Open(ctx context.Context, driver, databaseURL, boltPath string) (Repository, error) {
	switch driver {
	case "", "none":
		return NewNopRepository(), nil
	case "postgres":
		repo, err := NewPostgresRepository(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	case "bolt":
		return NewBoltRepository(boltPath)
	default:
		return nil, errors.Errorf("unknown store driver %q", driver)
	}
}

func matches(a *models.CallActivity, f models.ActivityFilter) bool {
	if f.AppID != 0 && a.AppID != f.AppID {
		return false
	}
	if f.Method != "" && a.Method != f.Method {
		return false
	}
	if f.Sender != "" && a.Sender != f.Sender {
		return false
	}
	if f.SuccessOnly && !a.Success {
		return false
	}
	return true
}
