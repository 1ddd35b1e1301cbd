package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/caseconductor/ccstore/internal/model"
)

// batch is one table's slice of a cascade closure.
type batch struct {
	desc *model.Descriptor
	ids  []uuid.UUID
}

// DeleteRecord soft-deletes rec together with every record transitively
// reachable through cascade-on-delete relations, all stamped with one shared
// timestamp, in a single transaction. Already-deleted records are untouched.
func (s *Store) DeleteRecord(ctx context.Context, rec model.Record, actor *uuid.UUID) error {
	m := rec.RecordMeta()
	var when time.Time
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		when, err = s.softDeleteTx(ctx, tx, rec.Descriptor(), []uuid.UUID{m.ID}, actor)
		return err
	})
	if err != nil {
		return err
	}
	if m.DeletedOn == nil {
		m.DeletedOn = &when
		m.DeletedBy = actor
	}
	return nil
}

// UndeleteRecord restores rec and exactly the records that were soft-deleted
// in the same cascade batch (matched by rec's deletion timestamp). Records
// deleted independently at another time stay deleted.
func (s *Store) UndeleteRecord(ctx context.Context, rec model.Record) error {
	m := rec.RecordMeta()
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		return s.undeleteTx(ctx, tx, rec.Descriptor(), []uuid.UUID{m.ID})
	})
	if err != nil {
		return err
	}
	m.DeletedOn = nil
	m.DeletedBy = nil
	return nil
}

// DeleteRecords soft-deletes every live record matching cond, with cascade,
// as one batch. With permanent=true it instead issues a plain DELETE: cascade
// and undo semantics then belong to the storage engine's foreign keys.
func (s *Store) DeleteRecords(ctx context.Context, d *model.Descriptor, cond Cond, actor *uuid.UUID, permanent bool) error {
	if permanent {
		where, args := whereClause(cond, false, 0)
		_, err := s.db.Pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s%s", d.Table, where), args...)
		return err
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		roots, err := s.matchIDs(ctx, tx, d, cond, false)
		if err != nil || len(roots) == 0 {
			return err
		}
		_, err = s.softDeleteTx(ctx, tx, d, roots, actor)
		return err
	})
}

// UndeleteRecords restores the deletion batches of every record matching
// cond (deleted records included in the match).
func (s *Store) UndeleteRecords(ctx context.Context, d *model.Descriptor, cond Cond) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		roots, err := s.matchIDs(ctx, tx, d, cond, true)
		if err != nil || len(roots) == 0 {
			return err
		}
		return s.undeleteTx(ctx, tx, d, roots)
	})
}

// PurgeRecord permanently deletes a single record. Irreversible; dependent
// rows are handled by the schema's ON DELETE rules, not by the collector.
func (s *Store) PurgeRecord(ctx context.Context, rec model.Record) error {
	d := rec.Descriptor()
	sql := fmt.Sprintf("DELETE FROM %s WHERE id=$1", d.Table)
	_, err := s.db.Pool.Exec(ctx, sql, rec.RecordMeta().ID)
	return err
}

func (s *Store) softDeleteTx(ctx context.Context, tx pgx.Tx, d *model.Descriptor, rootIDs []uuid.UUID, actor *uuid.UUID) (time.Time, error) {
	batches, err := s.collect(ctx, tx, d, rootIDs)
	if err != nil {
		return time.Time{}, err
	}
	now := s.now()
	for _, b := range batches {
		sql := fmt.Sprintf(
			"UPDATE %s SET deleted_on=$1, deleted_by=$2 WHERE id = ANY($3::uuid[]) AND deleted_on IS NULL",
			b.desc.Table,
		)
		if _, err := tx.Exec(ctx, sql, now, actor, uuidStrings(b.ids)); err != nil {
			return time.Time{}, err
		}
		s.log.Debug("soft-delete batch",
			zap.String("table", b.desc.Table),
			zap.Int("records", len(b.ids)),
			zap.Time("deleted_on", now),
		)
	}
	return now, nil
}

func (s *Store) undeleteTx(ctx context.Context, tx pgx.Tx, d *model.Descriptor, rootIDs []uuid.UUID) error {
	batches, err := s.collect(ctx, tx, d, rootIDs)
	if err != nil {
		return err
	}

	// Deletion timestamps of the roots scope the restore: only members of
	// those exact batches come back.
	sql := fmt.Sprintf(
		"SELECT DISTINCT deleted_on FROM %s WHERE id = ANY($1::uuid[]) AND deleted_on IS NOT NULL",
		d.Table,
	)
	rows, err := tx.Query(ctx, sql, uuidStrings(rootIDs))
	if err != nil {
		return err
	}
	defer rows.Close()
	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return err
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(times) == 0 {
		return nil
	}

	for _, b := range batches {
		sql := fmt.Sprintf(
			"UPDATE %s SET deleted_on=NULL, deleted_by=NULL WHERE id = ANY($1::uuid[]) AND deleted_on = ANY($2::timestamptz[])",
			b.desc.Table,
		)
		if _, err := tx.Exec(ctx, sql, uuidStrings(b.ids), times); err != nil {
			return err
		}
		s.log.Debug("undelete batch",
			zap.String("table", b.desc.Table),
			zap.Int("records", len(b.ids)),
		)
	}
	return nil
}

// collect walks cascade-on-delete relations breadth-first from the roots and
// returns the reachable records grouped per table, roots first. Records are
// collected regardless of deletion state; the delete and undelete statements
// apply their own filters, which is what makes deletion idempotent and
// undeletion batch-exact.
func (s *Store) collect(ctx context.Context, q querier, d *model.Descriptor, rootIDs []uuid.UUID) ([]batch, error) {
	type frame struct {
		desc *model.Descriptor
		ids  []uuid.UUID
	}

	var order []string
	byTable := make(map[string]*batch)
	seen := make(map[string]map[uuid.UUID]struct{})

	add := func(d *model.Descriptor, ids []uuid.UUID) []uuid.UUID {
		if seen[d.Table] == nil {
			seen[d.Table] = make(map[uuid.UUID]struct{})
		}
		var fresh []uuid.UUID
		for _, id := range ids {
			if _, dup := seen[d.Table][id]; dup {
				continue
			}
			seen[d.Table][id] = struct{}{}
			fresh = append(fresh, id)
		}
		if len(fresh) == 0 {
			return nil
		}
		b := byTable[d.Table]
		if b == nil {
			b = &batch{desc: d}
			byTable[d.Table] = b
			order = append(order, d.Table)
		}
		b.ids = append(b.ids, fresh...)
		return fresh
	}

	queue := []frame{{desc: d, ids: add(d, rootIDs)}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if len(f.ids) == 0 {
			continue
		}
		for _, rel := range f.desc.CascadeChildren() {
			sql := fmt.Sprintf(
				"SELECT id FROM %s WHERE %s = ANY($1::uuid[]) ORDER BY id",
				rel.Child.Table, rel.FKColumn,
			)
			rows, err := q.Query(ctx, sql, uuidStrings(f.ids))
			if err != nil {
				return nil, err
			}
			var childIDs []uuid.UUID
			for rows.Next() {
				var id uuid.UUID
				if err := rows.Scan(&id); err != nil {
					rows.Close()
					return nil, err
				}
				childIDs = append(childIDs, id)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return nil, err
			}
			if fresh := add(rel.Child, childIDs); len(fresh) > 0 {
				queue = append(queue, frame{desc: rel.Child, ids: fresh})
			}
		}
	}

	out := make([]batch, 0, len(order))
	for _, table := range order {
		out = append(out, *byTable[table])
	}
	return out, nil
}

// matchIDs resolves cond to record ids within the transaction.
func (s *Store) matchIDs(ctx context.Context, q querier, d *model.Descriptor, cond Cond, includeDeleted bool) ([]uuid.UUID, error) {
	where, args := whereClause(cond, includeDeleted, 0)
	sql := fmt.Sprintf("SELECT id FROM %s%s ORDER BY id", d.Table, where)
	rows, err := q.Query(ctx, sql, args...)
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

// inTx runs fn within one transaction, committing on success and rolling
// back on any error.
func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()
	return fn(tx)
}
