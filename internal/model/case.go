package model

import "github.com/gofrs/uuid/v5"

// Case is a single test case belonging to a product.
type Case struct {
	Meta
	ProductID uuid.UUID
	Name      string
}

// CaseDescriptor declares the cases table layout.
var CaseDescriptor = &Descriptor{
	Table:   "cases",
	Columns: []string{"product_id", "name"},
}

func (c *Case) Descriptor() *Descriptor { return CaseDescriptor }

func (c *Case) ColumnValues() []any { return []any{c.ProductID, c.Name} }

func (c *Case) ColumnPointers() []any { return []any{&c.ProductID, &c.Name} }

func (c *Case) SetColumn(name string, value any) error {
	switch name {
	case "product_id":
		return assign(&c.ProductID, "cases", name, value)
	case "name":
		return assign(&c.Name, "cases", name, value)
	}
	return errNoColumn("cases", name)
}

func (c *Case) CloneBlank() Record { return &Case{} }
