package model

import "fmt"

// assign sets a typed column destination from an untyped value, rejecting
// type mismatches with a descriptive error.
func assign[T any](dst *T, table, column string, value any) error {
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("%s.%s: cannot assign value of type %T", table, column, value)
	}
	*dst = v
	return nil
}

// errNoColumn reports an unknown column name for SetColumn implementations.
func errNoColumn(table, column string) error {
	return fmt.Errorf("%s has no column %q", table, column)
}
