package orchestrator

import (
	"context"

	"arc56/internal/logging"
	"arc56/internal/metrics"
	"arc56/internal/models"
	"arc56/internal/services"
)

// Orchestrator runs post-call services over each settled call
type Orchestrator struct {
	services []services.Service
	log      logging.Logger
}

// New creates a new Orchestrator with the given services
func New(log logging.Logger, services ...services.Service) *Orchestrator {
	return &Orchestrator{
		services: services,
		log:      log,
	}
}

// Process runs an outcome through all registered services
func (o *Orchestrator) Process(ctx context.Context, outcome *models.CallOutcome) {
	o.log.Debugw("Orchestrator: Processing call outcome",
		"app_id", outcome.AppID,
		"method", outcome.Method,
		"services_count", len(o.services),
	)

	// Execute each service in order
	for _, service := range o.services {
		if err := service.Process(ctx, outcome); err != nil {
			metrics.ErrorsTotal.WithLabelValues(service.Name()).Inc()
			o.log.Errorw("Service processing failed",
				"service", service.Name(),
				"app_id", outcome.AppID,
				"error", err,
			)
			// A failing hook never fails the call that already settled on chain
		}
	}
}

// Services returns the list of registered services (for inspection/testing)
func (o *Orchestrator) Services() []services.Service {
	return o.services
}
