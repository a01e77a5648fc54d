package orchestrator

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"arc56/internal/logging"
	"arc56/internal/models"
)

type recordingService struct {
	name string
	err  error
	seen []*models.CallOutcome
}

func (s *recordingService) Process(_ context.Context, outcome *models.CallOutcome) error {
	s.seen = append(s.seen, outcome)
	return s.err
}

func (s *recordingService) Name() string { return s.name }

func TestOrchestrator_RunsAllServicesInOrder(t *testing.T) {
	failing := &recordingService{name: "failing", err: errors.New("boom")}
	after := &recordingService{name: "after"}
	o := New(logging.NewNopLogger(), failing, after)

	outcome := &models.CallOutcome{AppID: 1, Method: "foo"}
	o.Process(context.Background(), outcome)

	// a failing service does not stop the ones after it
	assert.Equal(t, []*models.CallOutcome{outcome}, failing.seen)
	assert.Equal(t, []*models.CallOutcome{outcome}, after.seen)
	assert.Len(t, o.Services(), 2)
}
