package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
)

// CaseRepo implements CaseRepository on the record store.
type CaseRepo struct{ store *Store }

// NewCaseRepo constructs a case repository.
func NewCaseRepo(store *Store) *CaseRepo { return &CaseRepo{store: store} }

// Create inserts a case.
func (r *CaseRepo) Create(ctx context.Context, c *model.Case, actor *uuid.UUID) error {
	return r.store.CreateRecord(ctx, c, actor)
}

// GetByID returns a live case by id.
func (r *CaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	var c model.Case
	if err := r.store.GetRecord(ctx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByProduct returns the product's live cases ordered by id.
func (r *CaseRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Case, error) {
	recs, err := r.store.ListRecords(ctx,
		func() model.Record { return &model.Case{} },
		Cond{"product_id": productID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Case, len(recs))
	for i, rec := range recs {
		out[i] = rec.(*model.Case)
	}
	return out, nil
}

// Save updates a case with the optimistic version check.
func (r *CaseRepo) Save(ctx context.Context, c *model.Case, actor *uuid.UUID) error {
	return r.store.SaveRecord(ctx, c, actor, SaveOptions{})
}

// Delete soft-deletes a case.
func (r *CaseRepo) Delete(ctx context.Context, c *model.Case, actor *uuid.UUID) error {
	return r.store.DeleteRecord(ctx, c, actor)
}
