package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"arc56/internal/debug"
	"arc56/internal/logging"
	"arc56/internal/metrics"
	"arc56/internal/models"
	"arc56/internal/storage"
)

// ActivityService records every call made against tracked applications
type ActivityService struct {
	trackedApps map[uint64]bool
	mu          sync.RWMutex // Protects trackedApps
	repository  storage.Repository
	log         logging.Logger
}

// NewActivityService creates a new ActivityService instance.
// With no tracked applications every outcome is recorded.
func NewActivityService(repository storage.Repository, log logging.Logger) *ActivityService {
	return &ActivityService{
		trackedApps: make(map[uint64]bool),
		repository:  repository,
		log:         log,
	}
}

// Process saves the call as an activity
func (s *ActivityService) Process(ctx context.Context, outcome *models.CallOutcome) error {
	if !s.tracks(outcome.AppID) {
		return nil
	}

	activity := &models.CallActivity{
		ActivityID:    activityID(outcome),
		AppID:         outcome.AppID,
		Contract:      outcome.Contract,
		TxID:          outcome.TxID(),
		Round:         outcome.Round,
		Timestamp:     outcome.Time,
		Sender:        outcome.Sender,
		Method:        outcome.Method,
		Action:        outcome.Action,
		Success:       outcome.Success,
		ReturnValue:   outcome.ReturnValue,
		FailureReason: outcome.FailureReason,
	}

	start := time.Now()
	if err := s.repository.SaveActivity(ctx, activity); err != nil {
		s.log.Errorw("ActivityService: Failed to save call activity",
			"error", err,
			"app_id", outcome.AppID,
			"method", outcome.Method,
		)
		return err
	}
	metrics.DatabaseWriteDuration.Observe(time.Since(start).Seconds())
	metrics.ActivitiesSaved.Inc()
	debug.PrintActivity(s.log, activity)

	s.log.Debugw("ActivityService: Call activity saved",
		"app_id", outcome.AppID,
		"method", outcome.Method,
		"action", outcome.Action,
		"success", outcome.Success,
	)
	return nil
}

// Name returns the service name
func (s *ActivityService) Name() string {
	return "ActivityService"
}

// AddTrackedApp restricts recording to the given application (and any others added)
func (s *ActivityService) AddTrackedApp(appID uint64) {
	s.mu.Lock()
	s.trackedApps[appID] = true
	s.mu.Unlock()
	s.log.Debugw("ActivityService: Added application to tracking", "app_id", appID)
}

// RemoveTrackedApp removes an application from the tracking list
func (s *ActivityService) RemoveTrackedApp(appID uint64) {
	s.mu.Lock()
	delete(s.trackedApps, appID)
	s.mu.Unlock()
	s.log.Debugw("ActivityService: Removed application from tracking", "app_id", appID)
}

// GetTrackedCount returns the number of applications being tracked
func (s *ActivityService) GetTrackedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackedApps)
}

// activityID is the transaction id and group position of a confirmed call.
// Failed calls may share a transaction id or have none, so each gets a fresh id.
func activityID(outcome *models.CallOutcome) string {
	if txID := outcome.TxID(); outcome.Success && txID != "" {
		return fmt.Sprintf("%s:%d", txID, outcome.GroupIndex)
	}
	return "failed:" + uuid.New().String()
}

func (s *ActivityService) tracks(appID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackedApps) == 0 || s.trackedApps[appID]
}
