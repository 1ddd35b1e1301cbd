// Package repository declares the interfaces the service layer and tooling
// consume; PostgreSQL implementations live in the postgres subpackage.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/caseconductor/ccstore/internal/model"
)

// ProductRepository manages products and their access-control teams.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product, actor *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	Save(ctx context.Context, p *model.Product, actor *uuid.UUID) error
	Delete(ctx context.Context, p *model.Product, actor *uuid.UUID) error
	Undelete(ctx context.Context, p *model.Product) error

	// Clone copies p with its team cascaded and a "Cloned:" name.
	Clone(ctx context.Context, p *model.Product, actor *uuid.UUID) (*model.Product, error)

	// AddToTeam adds users to p's own team and permanently marks p as
	// owning its team.
	AddToTeam(ctx context.Context, p *model.Product, actor *uuid.UUID, users ...uuid.UUID) error

	// Team returns the ids of p's team members.
	Team(ctx context.Context, p *model.Product) ([]uuid.UUID, error)
}

// ProductVersionRepository manages product versions, keeping their sort order
// and latest flag consistent after every mutation.
type ProductVersionRepository interface {
	Create(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProductVersion, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.ProductVersion, error)
	Save(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error
	Delete(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) error
	Undelete(ctx context.Context, v *model.ProductVersion) error

	// Clone copies v with team cascaded, version "<version>.next", and
	// codename "Cloned: <codename>".
	Clone(ctx context.Context, v *model.ProductVersion, actor *uuid.UUID) (*model.ProductVersion, error)

	// ReorderVersions rewrites sort_order and latest across the product's
	// live versions with untracked saves.
	ReorderVersions(ctx context.Context, productID uuid.UUID) error

	// Team returns v's own team if it has one, the product's team otherwise.
	Team(ctx context.Context, v *model.ProductVersion) ([]uuid.UUID, error)
}

// SuiteRepository manages test suites and their case membership.
type SuiteRepository interface {
	Create(ctx context.Context, st *model.Suite, actor *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Suite, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Suite, error)
	Save(ctx context.Context, st *model.Suite, actor *uuid.UUID) error
	Delete(ctx context.Context, st *model.Suite, actor *uuid.UUID) error
	Undelete(ctx context.Context, st *model.Suite) error
	Activate(ctx context.Context, st *model.Suite, actor *uuid.UUID) error
	Deactivate(ctx context.Context, st *model.Suite, actor *uuid.UUID) error
	Clone(ctx context.Context, st *model.Suite, actor *uuid.UUID) (*model.Suite, error)
	AddCases(ctx context.Context, st *model.Suite, caseIDs ...uuid.UUID) error
	Cases(ctx context.Context, st *model.Suite) ([]uuid.UUID, error)
}

// CaseRepository manages test cases.
type CaseRepository interface {
	Create(ctx context.Context, c *model.Case, actor *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*model.Case, error)
	Save(ctx context.Context, c *model.Case, actor *uuid.UUID) error
	Delete(ctx context.Context, c *model.Case, actor *uuid.UUID) error
}

// RunRepository manages test runs and their suite membership.
type RunRepository interface {
	Create(ctx context.Context, run *model.Run, actor *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error)
	ListByProductVersion(ctx context.Context, productVersionID uuid.UUID) ([]*model.Run, error)
	Save(ctx context.Context, run *model.Run, actor *uuid.UUID) error
	Delete(ctx context.Context, run *model.Run, actor *uuid.UUID) error
	Undelete(ctx context.Context, run *model.Run) error
	Activate(ctx context.Context, run *model.Run, actor *uuid.UUID) error
	Deactivate(ctx context.Context, run *model.Run, actor *uuid.UUID) error

	// Clone copies run with its suite set cascaded, a "Cloned:" name, and
	// status reset to draft.
	Clone(ctx context.Context, run *model.Run, actor *uuid.UUID) (*model.Run, error)

	AddSuites(ctx context.Context, run *model.Run, suiteIDs ...uuid.UUID) error
	Suites(ctx context.Context, run *model.Run) ([]uuid.UUID, error)
}

// UserRepository provides access to actor identities.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
