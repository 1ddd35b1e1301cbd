package model

import "sort"

// RelationKind tags the two relation shapes that cascade operations
// understand. Anything else in a cascade spec is rejected.
type RelationKind int

const (
	// ManyToMany relates two tables through a plain join table. Join rows
	// carry no audit columns and are never collected by cascade deletion.
	ManyToMany RelationKind = iota

	// ReverseOneToMany is the child side of a foreign key: rows in Child
	// whose FKColumn points at the parent record.
	ReverseOneToMany
)

// Relation describes one named relation of an entity type. Which fields are
// meaningful depends on Kind.
type Relation struct {
	Kind RelationKind

	// CascadeOnDelete marks relations whose dependent records are
	// soft-deleted and undeleted together with the parent.
	CascadeOnDelete bool

	// Reverse one-to-many.
	Child    *Descriptor
	FKColumn string
	Blank    func() Record

	// Many-to-many.
	JoinTable    string
	SourceColumn string
	TargetColumn string
}

// Descriptor is the per-entity relation/column metadata consumed by the
// store. Columns lists the entity's scalar columns in a fixed order; the
// audit columns of Meta are implicit and appended by the store itself.
type Descriptor struct {
	Table     string
	Columns   []string
	Relations map[string]Relation
}

// CascadeChildren returns the relations that participate in cascade
// soft-deletion, ordered by child table name so batch statements are
// deterministic.
func (d *Descriptor) CascadeChildren() []Relation {
	var out []Relation
	for _, rel := range d.Relations {
		if rel.CascadeOnDelete && rel.Kind == ReverseOneToMany {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Child.Table < out[j].Child.Table
	})
	return out
}

// Blank returns a zero record for a known entity table. Used by recovery
// tooling that addresses records by table name.
func Blank(table string) (Record, bool) {
	switch table {
	case "products":
		return &Product{}, true
	case "product_versions":
		return &ProductVersion{}, true
	case "suites":
		return &Suite{}, true
	case "cases":
		return &Case{}, true
	case "runs":
		return &Run{}, true
	}
	return nil, false
}
