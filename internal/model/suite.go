package model

import "github.com/gofrs/uuid/v5"

// Suite is a named collection of test cases for a product.
type Suite struct {
	Meta
	ProductID   uuid.UUID
	Name        string
	Description string
	Status      Status
}

// SuiteDescriptor declares the suites table layout and relations.
var SuiteDescriptor = &Descriptor{
	Table:   "suites",
	Columns: []string{"product_id", "name", "description", "status"},
	Relations: map[string]Relation{
		"cases": {
			Kind:         ManyToMany,
			JoinTable:    "suite_cases",
			SourceColumn: "suite_id",
			TargetColumn: "case_id",
		},
	},
}

func (s *Suite) Descriptor() *Descriptor { return SuiteDescriptor }

func (s *Suite) ColumnValues() []any {
	return []any{s.ProductID, s.Name, s.Description, s.Status}
}

func (s *Suite) ColumnPointers() []any {
	return []any{&s.ProductID, &s.Name, &s.Description, &s.Status}
}

func (s *Suite) SetColumn(name string, value any) error {
	switch name {
	case "product_id":
		return assign(&s.ProductID, "suites", name, value)
	case "name":
		return assign(&s.Name, "suites", name, value)
	case "description":
		return assign(&s.Description, "suites", name, value)
	case "status":
		return assign(&s.Status, "suites", name, value)
	}
	return errNoColumn("suites", name)
}

func (s *Suite) CloneBlank() Record { return &Suite{} }
