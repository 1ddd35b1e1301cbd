package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
)

// SuiteRepo implements SuiteRepository on the record store.
type SuiteRepo struct{ store *Store }

// NewSuiteRepo constructs a suite repository.
func NewSuiteRepo(store *Store) *SuiteRepo { return &SuiteRepo{store: store} }

// Create inserts a suite; an empty status defaults to draft.
func (r *SuiteRepo) Create(ctx context.Context, st *model.Suite, actor *uuid.UUID) error {
	if st.Status == "" {
		st.Status = model.StatusDraft
	}
	return r.store.CreateRecord(ctx, st, actor)
}

// GetByID returns a live suite by id.
func (r *SuiteRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Suite, error) {
	var st model.Suite
	if err := r.store.GetRecord(ctx, &st, id); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListByProduct returns the product's live suites ordered by id.
func (r *SuiteRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Suite, error) {
	recs, err := r.store.ListRecords(ctx,
		func() model.Record { return &model.Suite{} },
		Cond{"product_id": productID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Suite, len(recs))
	for i, rec := range recs {
		out[i] = rec.(*model.Suite)
	}
	return out, nil
}

// Save updates a suite with the optimistic version check.
func (r *SuiteRepo) Save(ctx context.Context, st *model.Suite, actor *uuid.UUID) error {
	return r.store.SaveRecord(ctx, st, actor, SaveOptions{})
}

// Delete soft-deletes a suite.
func (r *SuiteRepo) Delete(ctx context.Context, st *model.Suite, actor *uuid.UUID) error {
	return r.store.DeleteRecord(ctx, st, actor)
}

// Undelete restores a suite's deletion batch.
func (r *SuiteRepo) Undelete(ctx context.Context, st *model.Suite) error {
	return r.store.UndeleteRecord(ctx, st)
}

// Activate transitions the suite to active. The write is forced so the
// transition is recorded even when no other field changed.
func (r *SuiteRepo) Activate(ctx context.Context, st *model.Suite, actor *uuid.UUID) error {
	st.Status = model.StatusActive
	return r.store.SaveRecord(ctx, st, actor, SaveOptions{ForceUpdate: true})
}

// Deactivate transitions the suite to disabled.
func (r *SuiteRepo) Deactivate(ctx context.Context, st *model.Suite, actor *uuid.UUID) error {
	st.Status = model.StatusDisabled
	return r.store.SaveRecord(ctx, st, actor, SaveOptions{ForceUpdate: true})
}

// Clone copies the suite with its case set cascaded and a "Cloned:" name.
func (r *SuiteRepo) Clone(ctx context.Context, st *model.Suite, actor *uuid.UUID) (*model.Suite, error) {
	rec, err := r.store.CloneRecord(ctx, st,
		CascadeSpec{"cases": {}},
		map[string]any{"name": fmt.Sprintf("Cloned: %s", st.Name)},
		actor,
	)
	if err != nil {
		return nil, err
	}
	return rec.(*model.Suite), nil
}

// AddCases adds cases to the suite's membership.
func (r *SuiteRepo) AddCases(ctx context.Context, st *model.Suite, caseIDs ...uuid.UUID) error {
	rel := model.SuiteDescriptor.Relations["cases"]
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1,$2) ON CONFLICT DO NOTHING",
		rel.JoinTable, rel.SourceColumn, rel.TargetColumn,
	)
	for _, caseID := range caseIDs {
		if _, err := r.store.db.Pool.Exec(ctx, insertSQL, st.ID, caseID); err != nil {
			return err
		}
	}
	return nil
}

// Cases returns the ids of the suite's cases.
func (r *SuiteRepo) Cases(ctx context.Context, st *model.Suite) ([]uuid.UUID, error) {
	return r.store.joinTargets(ctx, r.store.db.Pool, model.SuiteDescriptor.Relations["cases"], st.ID)
}
