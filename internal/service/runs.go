package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
	"github.com/caseconductor/ccstore/internal/repository"
)

// RunService validates run input and delegates to the repository.
type RunService struct {
	runs repository.RunRepository
}

// NewRunService constructs a RunService.
func NewRunService(runs repository.RunRepository) *RunService {
	return &RunService{runs: runs}
}

// Create validates and inserts a run.
func (s *RunService) Create(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	if run.ProductVersionID == uuid.Nil {
		return errors.New("validation: empty product version id")
	}
	if run.Name == "" {
		return errors.New("validation: empty run name")
	}
	if run.Status != "" && !run.Status.Valid() {
		return fmt.Errorf("validation: unknown status %q", run.Status)
	}
	return s.runs.Create(ctx, run, actor)
}

// AddSuites adds suites to a run. The suite set is only editable while the
// run is still a draft; active and disabled runs keep the set they were
// activated with.
func (s *RunService) AddSuites(ctx context.Context, run *model.Run, suiteIDs ...uuid.UUID) error {
	if run.Status != model.StatusDraft {
		return fmt.Errorf("validation: cannot edit suites of a %s run", run.Status)
	}
	return s.runs.AddSuites(ctx, run, suiteIDs...)
}

// Activate transitions a draft or disabled run to active.
func (s *RunService) Activate(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	return s.runs.Activate(ctx, run, actor)
}

// Deactivate transitions a run to disabled.
func (s *RunService) Deactivate(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	return s.runs.Deactivate(ctx, run, actor)
}
