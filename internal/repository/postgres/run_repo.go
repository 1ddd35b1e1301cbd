package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
)

// RunRepo implements RunRepository on the record store.
type RunRepo struct{ store *Store }

// NewRunRepo constructs a run repository.
func NewRunRepo(store *Store) *RunRepo { return &RunRepo{store: store} }

// Create inserts a run; an empty status defaults to draft.
func (r *RunRepo) Create(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	if run.Status == "" {
		run.Status = model.StatusDraft
	}
	return r.store.CreateRecord(ctx, run, actor)
}

// GetByID returns a live run by id.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	var run model.Run
	if err := r.store.GetRecord(ctx, &run, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByProductVersion returns the version's live runs ordered by id.
func (r *RunRepo) ListByProductVersion(ctx context.Context, productVersionID uuid.UUID) ([]*model.Run, error) {
	recs, err := r.store.ListRecords(ctx,
		func() model.Record { return &model.Run{} },
		Cond{"product_version_id": productVersionID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Run, len(recs))
	for i, rec := range recs {
		out[i] = rec.(*model.Run)
	}
	return out, nil
}

// Save updates a run with the optimistic version check.
func (r *RunRepo) Save(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	return r.store.SaveRecord(ctx, run, actor, SaveOptions{})
}

// Delete soft-deletes a run.
func (r *RunRepo) Delete(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	return r.store.DeleteRecord(ctx, run, actor)
}

// Undelete restores a run's deletion batch.
func (r *RunRepo) Undelete(ctx context.Context, run *model.Run) error {
	return r.store.UndeleteRecord(ctx, run)
}

// Activate transitions the run to active. The write is forced so the
// transition is recorded even when no other field changed.
func (r *RunRepo) Activate(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	run.Status = model.StatusActive
	return r.store.SaveRecord(ctx, run, actor, SaveOptions{ForceUpdate: true})
}

// Deactivate transitions the run to disabled.
func (r *RunRepo) Deactivate(ctx context.Context, run *model.Run, actor *uuid.UUID) error {
	run.Status = model.StatusDisabled
	return r.store.SaveRecord(ctx, run, actor, SaveOptions{ForceUpdate: true})
}

// Clone copies the run with its suite set cascaded, a "Cloned:" name, and
// status reset to draft.
func (r *RunRepo) Clone(ctx context.Context, run *model.Run, actor *uuid.UUID) (*model.Run, error) {
	rec, err := r.store.CloneRecord(ctx, run,
		CascadeSpec{"suites": {}},
		map[string]any{
			"name":   fmt.Sprintf("Cloned: %s", run.Name),
			"status": model.StatusDraft,
		},
		actor,
	)
	if err != nil {
		return nil, err
	}
	return rec.(*model.Run), nil
}

// AddSuites adds suites to the run's membership.
func (r *RunRepo) AddSuites(ctx context.Context, run *model.Run, suiteIDs ...uuid.UUID) error {
	rel := model.RunDescriptor.Relations["suites"]
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1,$2) ON CONFLICT DO NOTHING",
		rel.JoinTable, rel.SourceColumn, rel.TargetColumn,
	)
	for _, suiteID := range suiteIDs {
		if _, err := r.store.db.Pool.Exec(ctx, insertSQL, run.ID, suiteID); err != nil {
			return err
		}
	}
	return nil
}

// Suites returns the ids of the run's suites.
func (r *RunRepo) Suites(ctx context.Context, run *model.Run) ([]uuid.UUID, error) {
	return r.store.joinTargets(ctx, r.store.db.Pool, model.RunDescriptor.Relations["suites"], run.ID)
}
