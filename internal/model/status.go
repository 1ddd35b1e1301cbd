package model

// Status is the lifecycle state of entities that go through a draft phase
// before execution (suites and runs).
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusDisabled:
		return true
	}
	return false
}
