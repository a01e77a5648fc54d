package services

import (
	"context"
	"time"

	"arc56/internal/debug"
	"arc56/internal/logging"
	"arc56/internal/metrics"
	"arc56/internal/models"
	"arc56/internal/storage"
)

// DeploymentService records applications created through the client
type DeploymentService struct {
	repository storage.Repository
	log        logging.Logger
}

// NewDeploymentService creates a new DeploymentService instance
func NewDeploymentService(repository storage.Repository, log logging.Logger) *DeploymentService {
	return &DeploymentService{
		repository: repository,
		log:        log,
	}
}

// Process saves a deployment when the outcome created the application
func (s *DeploymentService) Process(ctx context.Context, outcome *models.CallOutcome) error {
	if !outcome.Created || !outcome.Success {
		return nil // Not a creation, skip
	}

	deployment := &models.Deployment{
		AppID:             outcome.AppID,
		AppAddress:        outcome.AppAddress,
		Contract:          outcome.Contract,
		CreatedAtRound:    outcome.Round,
		CreatedAt:         outcome.Time,
		TxID:              outcome.TxID(),
		Creator:           outcome.Sender,
		Method:            outcome.Method,
		TemplateVariables: outcome.TemplateVariables,
	}

	start := time.Now()
	if err := s.repository.SaveDeployment(ctx, deployment); err != nil {
		s.log.Errorw("DeploymentService: Failed to save deployment",
			"error", err,
			"app_id", outcome.AppID,
		)
		return err
	}
	metrics.DatabaseWriteDuration.Observe(time.Since(start).Seconds())
	metrics.DeploymentsCreated.Inc()
	debug.PrintDeployment(s.log, deployment)

	s.log.Infow("DeploymentService: Application created",
		"app_id", outcome.AppID,
		"app_address", outcome.AppAddress,
		"round", outcome.Round,
	)
	return nil
}

// Name returns the service name
func (s *DeploymentService) Name() string {
	return "DeploymentService"
}
