package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/caseconductor/ccstore/internal/errs"
	"github.com/caseconductor/ccstore/internal/model"
)

// Cascade selects which members of one named relation follow a clone. Which
// field applies depends on the relation's kind; a nil selector keeps all.
type Cascade struct {
	// KeepTargets filters many-to-many target ids.
	KeepTargets func([]uuid.UUID) []uuid.UUID
	// KeepRecords filters the live child records of a reverse one-to-many.
	KeepRecords func([]model.Record) []model.Record
}

// CascadeSpec maps relation names to their cascade selection. Relations not
// named are left unassociated on the clone: cloning is shallow by default.
type CascadeSpec map[string]Cascade

// CloneRecord creates a new record of src's type with every scalar column
// copied (overrides replacing copied values), fresh creation stamps, and a
// forced insert, then cascades the relations named in spec: many-to-many
// sets are reconciled to exactly the selected targets, reverse one-to-many
// children are recursively cloned onto the new parent. The whole cascade
// tree runs in one transaction, so a failure anywhere leaves no partial
// clone behind.
//
// created_on, created_by, and modified_by are always stamped fresh from the
// actor and clock; they cannot be copied or overridden.
func (s *Store) CloneRecord(ctx context.Context, src model.Record, spec CascadeSpec, overrides map[string]any, actor *uuid.UUID) (model.Record, error) {
	var dst model.Record
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		dst, err = s.cloneTx(ctx, tx, src, spec, overrides, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func (s *Store) cloneTx(ctx context.Context, tx pgx.Tx, src model.Record, spec CascadeSpec, overrides map[string]any, actor *uuid.UUID) (model.Record, error) {
	d := src.Descriptor()

	dst := src.CloneBlank()
	vals := src.ColumnValues()
	for i, col := range d.Columns {
		if err := dst.SetColumn(col, vals[i]); err != nil {
			return nil, err
		}
	}
	for _, col := range sortedKeys(overrides) {
		if err := dst.SetColumn(col, overrides[col]); err != nil {
			return nil, err
		}
	}

	if err := s.saveRecord(ctx, tx, dst, actor, SaveOptions{ForceInsert: true}); err != nil {
		return nil, err
	}
	s.log.Debug("cloned record",
		zap.String("table", d.Table),
		zap.Stringer("source", src.RecordMeta().ID),
		zap.Stringer("clone", dst.RecordMeta().ID),
	)

	for _, name := range sortedKeys(spec) {
		rel, ok := d.Relations[name]
		if !ok {
			return nil, fmt.Errorf(
				"cannot cascade-clone %q on %s: %w", name, d.Table, errs.ErrInvalidCascade,
			)
		}
		var err error
		switch rel.Kind {
		case model.ManyToMany:
			err = s.cloneManyToMany(ctx, tx, rel, src.RecordMeta().ID, dst.RecordMeta().ID, spec[name].KeepTargets)
		case model.ReverseOneToMany:
			err = s.cloneChildren(ctx, tx, rel, src.RecordMeta().ID, dst.RecordMeta().ID, spec[name].KeepRecords, actor)
		default:
			err = fmt.Errorf(
				"cannot cascade-clone %q on %s: %w", name, d.Table, errs.ErrInvalidCascade,
			)
		}
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// cloneManyToMany makes the clone's related set exactly equal the selected
// source targets: selected-but-missing rows are added, present-but-unselected
// rows are removed.
func (s *Store) cloneManyToMany(ctx context.Context, tx pgx.Tx, rel model.Relation, srcID, dstID uuid.UUID, keep func([]uuid.UUID) []uuid.UUID) error {
	targets, err := s.joinTargets(ctx, tx, rel, srcID)
	if err != nil {
		return err
	}
	if keep != nil {
		targets = keep(targets)
	}
	existing, err := s.joinTargets(ctx, tx, rel, dstID)
	if err != nil {
		return err
	}

	want := make(map[uuid.UUID]struct{}, len(targets))
	for _, id := range targets {
		want[id] = struct{}{}
	}
	have := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1,$2)",
		rel.JoinTable, rel.SourceColumn, rel.TargetColumn,
	)
	for _, id := range targets {
		if _, ok := have[id]; ok {
			continue
		}
		if _, err := tx.Exec(ctx, insertSQL, dstID, id); err != nil {
			return err
		}
	}

	var remove []uuid.UUID
	for _, id := range existing {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}
	if len(remove) > 0 {
		deleteSQL := fmt.Sprintf(
			"DELETE FROM %s WHERE %s=$1 AND %s = ANY($2::uuid[])",
			rel.JoinTable, rel.SourceColumn, rel.TargetColumn,
		)
		if _, err := tx.Exec(ctx, deleteSQL, dstID, uuidStrings(remove)); err != nil {
			return err
		}
	}
	return nil
}

// cloneChildren recursively clones the selected live children of a reverse
// one-to-many relation, re-pointing their foreign key at the new parent.
func (s *Store) cloneChildren(ctx context.Context, tx pgx.Tx, rel model.Relation, srcID, dstID uuid.UUID, keep func([]model.Record) []model.Record, actor *uuid.UUID) error {
	children, err := s.listRecords(ctx, tx, rel.Blank, Cond{rel.FKColumn: srcID}, false)
	if err != nil {
		return err
	}
	if keep != nil {
		children = keep(children)
	}
	for _, child := range children {
		if _, err := s.cloneTx(ctx, tx, child, nil, map[string]any{rel.FKColumn: dstID}, actor); err != nil {
			return err
		}
	}
	return nil
}

// joinTargets lists the target ids of a many-to-many relation for one source
// record, ordered for deterministic statements.
func (s *Store) joinTargets(ctx context.Context, q querier, rel model.Relation, sourceID uuid.UUID) ([]uuid.UUID, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s=$1 ORDER BY %s",
		rel.TargetColumn, rel.JoinTable, rel.SourceColumn, rel.TargetColumn,
	)
	rows, err := q.Query(ctx, sql, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
