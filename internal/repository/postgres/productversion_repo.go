package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
)

// ProductVersionRepo implements ProductVersionRepository on the record store.
// Every mutation triggers a reorder of the product's versions so the
// denormalized sort_order and latest columns stay consistent.
type ProductVersionRepo struct{ store *Store }

// NewProductVersionRepo constructs a product version repository.
func NewProductVersionRepo(store *Store) *ProductVersionRepo {
	return &ProductVersionRepo{store: store}
}

// Create inserts a version, reorders its product's versions, and refreshes v
// with the resulting sort_order/latest values.
func (r *ProductVersionRepo) Create(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error {
	if err := r.store.CreateRecord(ctx, v, actor); err != nil {
		return err
	}
	if err := r.ReorderVersions(ctx, v.ProductID); err != nil {
		return err
	}
	return r.store.GetRecord(ctx, v, v.ID)
}

// GetByID returns a live product version by id.
func (r *ProductVersionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductVersion, error) {
	var v model.ProductVersion
	if err := r.store.GetRecord(ctx, &v, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByProduct returns the product's live versions ordered by id.
func (r *ProductVersionRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.ProductVersion, error) {
	recs, err := r.store.ListRecords(ctx,
		func() model.Record { return &model.ProductVersion{} },
		Cond{"product_id": productID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ProductVersion, len(recs))
	for i, rec := range recs {
		out[i] = rec.(*model.ProductVersion)
	}
	return out, nil
}

// Save updates a version with the optimistic check, then reorders and
// refreshes v.
func (r *ProductVersionRepo) Save(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error {
	if err := r.store.SaveRecord(ctx, v, actor, SaveOptions{}); err != nil {
		return err
	}
	if err := r.ReorderVersions(ctx, v.ProductID); err != nil {
		return err
	}
	return r.store.GetRecord(ctx, v, v.ID)
}

// Delete soft-deletes a version (cascading to its runs), then reorders the
// remaining versions so latest moves if needed.
func (r *ProductVersionRepo) Delete(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error {
	if err := r.store.DeleteRecord(ctx, v, actor); err != nil {
		return err
	}
	return r.ReorderVersions(ctx, v.ProductID)
}

// Undelete restores a version's deletion batch, then reorders and refreshes v.
func (r *ProductVersionRepo) Undelete(ctx context.Context, v *model.ProductVersion) error {
	if err := r.store.UndeleteRecord(ctx, v); err != nil {
		return err
	}
	if err := r.ReorderVersions(ctx, v.ProductID); err != nil {
		return err
	}
	return r.store.GetRecord(ctx, v, v.ID)
}

// Clone copies the version with team cascaded, a ".next" version string, and
// a "Cloned:" codename, then reorders so the clone gets a slot.
func (r *ProductVersionRepo) Clone(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) (*model.ProductVersion, error) {
	rec, err := r.store.CloneRecord(ctx, v,
		CascadeSpec{"team": {}},
		map[string]any{
			"version":  fmt.Sprintf("%s.next", v.Version),
			"codename": fmt.Sprintf("Cloned: %s", v.Codename),
		},
		actor,
	)
	if err != nil {
		return nil, err
	}
	clone := rec.(*model.ProductVersion)
	if err := r.ReorderVersions(ctx, clone.ProductID); err != nil {
		return nil, err
	}
	if err := r.store.GetRecord(ctx, clone, clone.ID); err != nil {
		return nil, err
	}
	return clone, nil
}

// ReorderVersions rewrites sort_order (1-based, lowest version first) and
// latest (highest live version only) across the product's versions. The
// writes are untracked force-updates: bookkeeping, not user edits, though
// each still bumps the version counter.
func (r *ProductVersionRepo) ReorderVersions(ctx context.Context, productID uuid.UUID) error {
	versions, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	model.SortVersions(versions)
	for i, v := range versions {
		v.SortOrder = i + 1
		v.Latest = i == len(versions)-1
		err := r.store.SaveRecord(ctx, v, nil, SaveOptions{ForceUpdate: true, Untracked: true})
		if err != nil {
			return err
		}
	}
	return nil
}

// Team returns the version's own team if it has one, the product's team
// otherwise.
func (r *ProductVersionRepo) Team(ctx context.Context, v *model.ProductVersion) ([]uuid.UUID, error) {
	if v.HasTeam {
		rel := model.ProductVersionDescriptor.Relations["team"]
		return r.store.joinTargets(ctx, r.store.db.Pool, rel, v.ID)
	}
	rel := model.ProductDescriptor.Relations["team"]
	return r.store.joinTargets(ctx, r.store.db.Pool, rel, v.ProductID)
}
