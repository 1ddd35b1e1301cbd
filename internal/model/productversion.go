package model

import "github.com/gofrs/uuid/v5"

// ProductVersion is one released version of a product. SortOrder and Latest
// are denormalized for querying and maintained by reordering; they are
// written with untracked saves so bookkeeping does not look like user edits.
type ProductVersion struct {
	Meta
	ProductID uuid.UUID
	Version   string
	Codename  string
	SortOrder int
	Latest    bool
	HasTeam   bool
}

// ProductVersionDescriptor declares the product_versions table layout and
// relations.
var ProductVersionDescriptor = &Descriptor{
	Table: "product_versions",
	Columns: []string{
		"product_id", "version", "codename", "sort_order", "latest", "has_team",
	},
	Relations: map[string]Relation{
		"runs": {
			Kind:            ReverseOneToMany,
			CascadeOnDelete: true,
			Child:           RunDescriptor,
			FKColumn:        "product_version_id",
			Blank:           func() Record { return &Run{} },
		},
		"team": {
			Kind:         ManyToMany,
			JoinTable:    "product_version_teams",
			SourceColumn: "product_version_id",
			TargetColumn: "user_id",
		},
	},
}

func (v *ProductVersion) Descriptor() *Descriptor { return ProductVersionDescriptor }

func (v *ProductVersion) ColumnValues() []any {
	return []any{v.ProductID, v.Version, v.Codename, v.SortOrder, v.Latest, v.HasTeam}
}

func (v *ProductVersion) ColumnPointers() []any {
	return []any{&v.ProductID, &v.Version, &v.Codename, &v.SortOrder, &v.Latest, &v.HasTeam}
}

func (v *ProductVersion) SetColumn(name string, value any) error {
	switch name {
	case "product_id":
		return assign(&v.ProductID, "product_versions", name, value)
	case "version":
		return assign(&v.Version, "product_versions", name, value)
	case "codename":
		return assign(&v.Codename, "product_versions", name, value)
	case "sort_order":
		return assign(&v.SortOrder, "product_versions", name, value)
	case "latest":
		return assign(&v.Latest, "product_versions", name, value)
	case "has_team":
		return assign(&v.HasTeam, "product_versions", name, value)
	}
	return errNoColumn("product_versions", name)
}

func (v *ProductVersion) CloneBlank() Record { return &ProductVersion{} }
