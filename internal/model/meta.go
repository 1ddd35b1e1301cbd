// Package model defines the versioned-record base shared by every persisted
// entity, the relation metadata used for cascade operations, and the concrete
// domain entities built on top of them.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Meta carries the audit and concurrency columns present on every entity
// table. It is embedded in every persisted record.
//
// Version starts at 0 on insert and is incremented by exactly one per
// successful update. It is maintained by the store; callers never set it
// directly, they only carry the value they last read for conflict checking.
type Meta struct {
	ID uuid.UUID

	CreatedOn time.Time
	CreatedBy *uuid.UUID

	ModifiedOn time.Time
	ModifiedBy *uuid.UUID

	// DeletedOn non-nil means the record is soft-deleted. All records
	// soft-deleted in one cascade batch share the same timestamp, which is
	// what scopes undelete to exactly that batch.
	DeletedOn *time.Time
	DeletedBy *uuid.UUID

	Version int64
}

// RecordMeta returns the embedded meta, satisfying part of Record.
func (m *Meta) RecordMeta() *Meta { return m }

// Live reports whether the record is not soft-deleted.
func (m *Meta) Live() bool { return m.DeletedOn == nil }

// Record is implemented by every persisted entity. Column access is declared
// per type (ordered lists and a typed setter) instead of reflection, so the
// store can insert, scan, copy, and override any record generically.
type Record interface {
	RecordMeta() *Meta
	Descriptor() *Descriptor

	// ColumnValues returns the current values of the entity's scalar columns,
	// aligned with Descriptor().Columns.
	ColumnValues() []any

	// ColumnPointers returns scan destinations aligned with
	// Descriptor().Columns.
	ColumnPointers() []any

	// SetColumn assigns a scalar column by name. It rejects unknown columns
	// and mismatched value types; both are programmer errors surfaced to the
	// caller of clone overrides.
	SetColumn(name string, value any) error

	// CloneBlank returns a new zero record of the same concrete type.
	CloneBlank() Record
}
