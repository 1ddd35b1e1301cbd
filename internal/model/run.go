package model

import "github.com/gofrs/uuid/v5"

// Run is an execution of a set of suites against a product version.
type Run struct {
	Meta
	ProductVersionID uuid.UUID
	Name             string
	Description      string
	Status           Status
}

// RunDescriptor declares the runs table layout and relations.
var RunDescriptor = &Descriptor{
	Table:   "runs",
	Columns: []string{"product_version_id", "name", "description", "status"},
	Relations: map[string]Relation{
		"suites": {
			Kind:         ManyToMany,
			JoinTable:    "run_suites",
			SourceColumn: "run_id",
			TargetColumn: "suite_id",
		},
	},
}

func (r *Run) Descriptor() *Descriptor { return RunDescriptor }

func (r *Run) ColumnValues() []any {
	return []any{r.ProductVersionID, r.Name, r.Description, r.Status}
}

func (r *Run) ColumnPointers() []any {
	return []any{&r.ProductVersionID, &r.Name, &r.Description, &r.Status}
}

func (r *Run) SetColumn(name string, value any) error {
	switch name {
	case "product_version_id":
		return assign(&r.ProductVersionID, "runs", name, value)
	case "name":
		return assign(&r.Name, "runs", name, value)
	case "description":
		return assign(&r.Description, "runs", name, value)
	case "status":
		return assign(&r.Status, "runs", name, value)
	}
	return errNoColumn("runs", name)
}

func (r *Run) CloneBlank() Record { return &Run{} }
