package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User is an actor identity row. Users are managed by the (external)
// authentication layer; this core only references them for audit stamps and
// team membership, so they are not versioned records.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	CreatedOn time.Time
}
