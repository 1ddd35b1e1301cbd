package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
)

// ProductRepo implements ProductRepository on the record store.
type ProductRepo struct{ store *Store }

// NewProductRepo constructs a product repository.
func NewProductRepo(store *Store) *ProductRepo { return &ProductRepo{store: store} }

// Create inserts a product, stamping actor as creator.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product, actor *uuid.UUID) error {
	return r.store.CreateRecord(ctx, p, actor)
}

// GetByID returns a live product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.store.GetRecord(ctx, &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all live products ordered by id.
func (r *ProductRepo) List(ctx context.Context) ([]*model.Product, error) {
	recs, err := r.store.ListRecords(ctx, func() model.Record { return &model.Product{} }, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Product, len(recs))
	for i, rec := range recs {
		out[i] = rec.(*model.Product)
	}
	return out, nil
}

// Save updates a product with the optimistic version check.
func (r *ProductRepo) Save(ctx context.Context, p *model.Product, actor *uuid.UUID) error {
	return r.store.SaveRecord(ctx, p, actor, SaveOptions{})
}

// Delete soft-deletes a product and, in the same batch, its versions,
// suites, cases, and their runs.
func (r *ProductRepo) Delete(ctx context.Context, p *model.Product, actor *uuid.UUID) error {
	return r.store.DeleteRecord(ctx, p, actor)
}

// Undelete restores a product's deletion batch.
func (r *ProductRepo) Undelete(ctx context.Context, p *model.Product) error {
	return r.store.UndeleteRecord(ctx, p)
}

// Clone copies the product with its team cascaded and a "Cloned:" name.
func (r *ProductRepo) Clone(ctx context.Context, p *model.Product, actor *uuid.UUID) (*model.Product, error) {
	rec, err := r.store.CloneRecord(ctx, p,
		CascadeSpec{"team": {}},
		map[string]any{"name": fmt.Sprintf("Cloned: %s", p.Name)},
		actor,
	)
	if err != nil {
		return nil, err
	}
	return rec.(*model.Product), nil
}

// AddToTeam adds users to the product's own team. Gaining members marks the
// product as owning its team; the flag is sticky even if all members are
// later removed.
func (r *ProductRepo) AddToTeam(ctx context.Context, p *model.Product, actor *uuid.UUID, users ...uuid.UUID) error {
	rel := model.ProductDescriptor.Relations["team"]
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1,$2) ON CONFLICT DO NOTHING",
		rel.JoinTable, rel.SourceColumn, rel.TargetColumn,
	)
	for _, userID := range users {
		if _, err := r.store.db.Pool.Exec(ctx, insertSQL, p.ID, userID); err != nil {
			return err
		}
	}
	_, err := r.store.BulkUpdate(ctx, model.ProductDescriptor,
		Cond{"id": p.ID}, map[string]any{"has_team": true}, actor, false)
	if err != nil {
		return err
	}
	p.HasTeam = true
	p.Version++
	return nil
}

// Team returns the product's own team members. Products sit at the top of
// the team inheritance chain, so the own team always applies.
func (r *ProductRepo) Team(ctx context.Context, p *model.Product) ([]uuid.UUID, error) {
	return r.store.joinTargets(ctx, r.store.db.Pool, model.ProductDescriptor.Relations["team"], p.ID)
}
