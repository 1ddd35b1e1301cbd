package model

// Product is a product under test. It may own its access-control team; child
// versions, suites, and cases are soft-deleted together with it.
type Product struct {
	Meta
	Name        string
	Description string

	// HasTeam is sticky: once a product gains its own team members it stays
	// self-owning even if the members are later removed.
	HasTeam bool
}

// ProductDescriptor declares the products table layout and relations.
var ProductDescriptor = &Descriptor{
	Table:   "products",
	Columns: []string{"name", "description", "has_team"},
	Relations: map[string]Relation{
		"versions": {
			Kind:            ReverseOneToMany,
			CascadeOnDelete: true,
			Child:           ProductVersionDescriptor,
			FKColumn:        "product_id",
			Blank:           func() Record { return &ProductVersion{} },
		},
		"suites": {
			Kind:            ReverseOneToMany,
			CascadeOnDelete: true,
			Child:           SuiteDescriptor,
			FKColumn:        "product_id",
			Blank:           func() Record { return &Suite{} },
		},
		"cases": {
			Kind:            ReverseOneToMany,
			CascadeOnDelete: true,
			Child:           CaseDescriptor,
			FKColumn:        "product_id",
			Blank:           func() Record { return &Case{} },
		},
		"team": {
			Kind:         ManyToMany,
			JoinTable:    "product_teams",
			SourceColumn: "product_id",
			TargetColumn: "user_id",
		},
	},
}

func (p *Product) Descriptor() *Descriptor { return ProductDescriptor }

func (p *Product) ColumnValues() []any {
	return []any{p.Name, p.Description, p.HasTeam}
}

func (p *Product) ColumnPointers() []any {
	return []any{&p.Name, &p.Description, &p.HasTeam}
}

func (p *Product) SetColumn(name string, value any) error {
	switch name {
	case "name":
		return assign(&p.Name, "products", name, value)
	case "description":
		return assign(&p.Description, "products", name, value)
	case "has_team":
		return assign(&p.HasTeam, "products", name, value)
	}
	return errNoColumn("products", name)
}

func (p *Product) CloneBlank() Record { return &Product{} }
