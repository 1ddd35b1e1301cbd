package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/caseconductor/ccstore/internal/errs"
	"github.com/caseconductor/ccstore/internal/model"
)

// metaColumns are the audit/versioning columns every entity table carries, in
// the order the store selects and scans them.
// The counter column is cc_version rather than version so entities can carry
// a domain column called version (product versions do).
const metaColumns = "created_on, created_by, modified_on, modified_by, deleted_on, deleted_by, cc_version"

// Store is the sanctioned entry point for every create, save, delete,
// undelete, and clone, so audit stamping, version counting, and cascade
// semantics cannot be bypassed by raw field writes.
type Store struct {
	db  *DB
	log *zap.Logger
	now func() time.Time
}

// NewStore constructs a record store. A nil logger disables logging.
func NewStore(db *DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SaveOptions control a single save.
type SaveOptions struct {
	// ForceInsert inserts even if the record carries an id (clone path).
	ForceInsert bool
	// ForceUpdate updates even if nothing appears changed (status
	// transitions use this).
	ForceUpdate bool
	// Untracked skips the modified_on/modified_by stamps for internal
	// bookkeeping writes that must not look like user edits. The version
	// counter is still incremented.
	Untracked bool
}

// Cond is an equality filter over scalar columns, applied in sorted column
// order for deterministic SQL.
type Cond map[string]any

// CreateRecord inserts rec, stamping creator and modifier to actor, both
// timestamps to now, and version to 0.
func (s *Store) CreateRecord(ctx context.Context, rec model.Record, actor *uuid.UUID) error {
	return s.saveRecord(ctx, s.db.Pool, rec, actor, SaveOptions{ForceInsert: true})
}

// SaveRecord persists rec. Records without an id are inserted; records with
// an id go through a conditional update that succeeds only if the stored
// version still equals the version rec was read at, returning
// errs.ErrVersionConflict otherwise. On success the in-memory meta mirrors
// the stored stamps and version.
func (s *Store) SaveRecord(ctx context.Context, rec model.Record, actor *uuid.UUID, opts SaveOptions) error {
	return s.saveRecord(ctx, s.db.Pool, rec, actor, opts)
}

func (s *Store) saveRecord(ctx context.Context, q querier, rec model.Record, actor *uuid.UUID, opts SaveOptions) error {
	d := rec.Descriptor()
	m := rec.RecordMeta()

	insert := (m.ID == uuid.Nil || opts.ForceInsert) && !opts.ForceUpdate
	if insert {
		return s.insertRecord(ctx, q, d, rec, actor, opts)
	}

	now := s.now()
	expected := m.Version

	var set []string
	vals := rec.ColumnValues()
	args := make([]any, 0, len(d.Columns)+4)
	for i, col := range d.Columns {
		args = append(args, vals[i])
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if !opts.Untracked {
		args = append(args, now)
		set = append(set, fmt.Sprintf("modified_on=$%d", len(args)))
		args = append(args, actor)
		set = append(set, fmt.Sprintf("modified_by=$%d", len(args)))
	}
	set = append(set, "cc_version=cc_version+1")
	args = append(args, m.ID, expected)

	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id=$%d AND cc_version=$%d",
		d.Table, strings.Join(set, ", "), len(args)-1, len(args),
	)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf(
			"no %s row with id %s and version %d updated: %w",
			d.Table, m.ID, expected, errs.ErrVersionConflict,
		)
	}

	m.Version = expected + 1
	if !opts.Untracked {
		m.ModifiedOn = now
		m.ModifiedBy = actor
	}
	return nil
}

func (s *Store) insertRecord(ctx context.Context, q querier, d *model.Descriptor, rec model.Record, actor *uuid.UUID, opts SaveOptions) error {
	m := rec.RecordMeta()
	now := s.now()

	m.ID = uuid.Must(uuid.NewV4())
	m.CreatedOn = now
	m.ModifiedOn = now
	m.Version = 0
	if !opts.Untracked {
		m.CreatedBy = actor
		m.ModifiedBy = actor
	}

	cols := append([]string{"id"}, d.Columns...)
	cols = append(cols, "created_on", "created_by", "modified_on", "modified_by", "cc_version")
	args := append([]any{m.ID}, rec.ColumnValues()...)
	args = append(args, m.CreatedOn, m.CreatedBy, m.ModifiedOn, m.ModifiedBy, m.Version)

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		d.Table, strings.Join(cols, ", "), placeholders(len(args)),
	)
	_, err := q.Exec(ctx, sql, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s id %s: %w", d.Table, m.ID, errs.ErrAlreadyExists)
	}
	return err
}

// GetRecord loads the live record with the given id into rec. Soft-deleted
// records are reported as errs.ErrNotFound.
func (s *Store) GetRecord(ctx context.Context, rec model.Record, id uuid.UUID) error {
	return s.getRecord(ctx, s.db.Pool, rec, id, false)
}

// GetRecordAny loads the record with the given id regardless of deletion
// state. Intended for administrative recovery.
func (s *Store) GetRecordAny(ctx context.Context, rec model.Record, id uuid.UUID) error {
	return s.getRecord(ctx, s.db.Pool, rec, id, true)
}

func (s *Store) getRecord(ctx context.Context, q querier, rec model.Record, id uuid.UUID, includeDeleted bool) error {
	d := rec.Descriptor()
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id=$1", selectList(d), d.Table)
	if !includeDeleted {
		sql += " AND deleted_on IS NULL"
	}
	if err := scanRecord(q.QueryRow(ctx, sql, id), rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s id %s: %w", d.Table, id, errs.ErrNotFound)
		}
		return err
	}
	return nil
}

// ListRecords returns live records matching cond, ordered by id. blank must
// return a new zero record per row.
func (s *Store) ListRecords(ctx context.Context, blank func() model.Record, cond Cond) ([]model.Record, error) {
	return s.listRecords(ctx, s.db.Pool, blank, cond, false)
}

// ListRecordsAny is ListRecords without the live-only filter.
func (s *Store) ListRecordsAny(ctx context.Context, blank func() model.Record, cond Cond) ([]model.Record, error) {
	return s.listRecords(ctx, s.db.Pool, blank, cond, true)
}

func (s *Store) listRecords(ctx context.Context, q querier, blank func() model.Record, cond Cond, includeDeleted bool) ([]model.Record, error) {
	d := blank().Descriptor()
	where, args := whereClause(cond, includeDeleted, 0)
	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id", selectList(d), d.Table, where)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		rec := blank()
		if err := scanRecord(rows, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// BulkUpdate applies fields to every live row matching cond. Unless
// untracked, modified_on/modified_by are stamped; the version counter is
// always incremented. There is no per-row version check: bulk update is
// last-writer-wins across the matched set, unlike SaveRecord.
func (s *Store) BulkUpdate(ctx context.Context, d *model.Descriptor, cond Cond, fields map[string]any, actor *uuid.UUID, untracked bool) (int64, error) {
	var set []string
	var args []any
	for _, col := range sortedKeys(fields) {
		args = append(args, fields[col])
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if !untracked {
		args = append(args, s.now())
		set = append(set, fmt.Sprintf("modified_on=$%d", len(args)))
		args = append(args, actor)
		set = append(set, fmt.Sprintf("modified_by=$%d", len(args)))
	}
	set = append(set, "cc_version=cc_version+1")

	where, whereArgs := whereClause(cond, false, len(args))
	args = append(args, whereArgs...)

	sql := fmt.Sprintf("UPDATE %s SET %s%s", d.Table, strings.Join(set, ", "), where)
	tag, err := s.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// selectList returns the full column list for SELECTs on d.
func selectList(d *model.Descriptor) string {
	return "id, " + strings.Join(d.Columns, ", ") + ", " + metaColumns
}

// scanRecord scans one row (id, scalar columns, meta columns) into rec.
func scanRecord(row pgx.Row, rec model.Record) error {
	m := rec.RecordMeta()
	dest := append([]any{&m.ID}, rec.ColumnPointers()...)
	dest = append(dest,
		&m.CreatedOn, &m.CreatedBy,
		&m.ModifiedOn, &m.ModifiedBy,
		&m.DeletedOn, &m.DeletedBy,
		&m.Version,
	)
	return row.Scan(dest...)
}

// whereClause builds "WHERE ..." from cond (sorted keys) with placeholder
// numbering starting after offset. An empty result means no WHERE at all.
func whereClause(cond Cond, includeDeleted bool, offset int) (string, []any) {
	var parts []string
	var args []any
	if !includeDeleted {
		parts = append(parts, "deleted_on IS NULL")
	}
	for _, col := range sortedKeys(cond) {
		args = append(args, cond[col])
		parts = append(parts, fmt.Sprintf("%s=$%d", col, offset+len(args)))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
