package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/caseconductor/ccstore/internal/model"
)

func TestProductRepo_AddToTeam_SetsStickyFlag(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()
	r := NewProductRepo(st)

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	p := &model.Product{Name: "conductor"}
	p.ID = uuid.Must(uuid.NewV4())
	p.Version = 2
	u1 := uuid.Must(uuid.NewV4())
	u2 := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`INSERT INTO product_teams \(product_id, user_id\) VALUES \(\$1,\$2\) ON CONFLICT DO NOTHING`).
		WithArgs(p.ID, u1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO product_teams \(product_id, user_id\) VALUES \(\$1,\$2\) ON CONFLICT DO NOTHING`).
		WithArgs(p.ID, u2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE products SET has_team=\$1, modified_on=\$2, modified_by=\$3, cc_version=cc_version\+1 WHERE deleted_on IS NULL AND id=\$4`).
		WithArgs(true, now, &actor, p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, r.AddToTeam(ctx, p, &actor, u1, u2))
	require.True(t, p.HasTeam)
	require.Equal(t, int64(3), p.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_Clone_PrefixesNameAndCascadesTeam(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()
	r := NewProductRepo(st)

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	p := &model.Product{Name: "conductor", HasTeam: true}
	p.ID = uuid.Must(uuid.NewV4())
	member := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products \(id, name, description, has_team, created_on, created_by, modified_on, modified_by, cc_version\)`).
		WithArgs(pgxmock.AnyArg(), "Cloned: conductor", "", true, pgxmock.AnyArg(), &actor, pgxmock.AnyArg(), &actor, int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT user_id FROM product_teams WHERE product_id=\$1 ORDER BY user_id`).
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(member))
	mock.ExpectQuery(`SELECT user_id FROM product_teams WHERE product_id=\$1 ORDER BY user_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}))
	mock.ExpectExec(`INSERT INTO product_teams \(product_id, user_id\) VALUES \(\$1,\$2\)`).
		WithArgs(pgxmock.AnyArg(), member).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	clone, err := r.Clone(ctx, p, &actor)
	require.NoError(t, err)
	require.Equal(t, "Cloned: conductor", clone.Name)
	require.NotEqual(t, p.ID, clone.ID)
	require.Equal(t, int64(0), clone.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetByID_List(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()
	r := NewProductRepo(st)

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	cols := []string{
		"id", "name", "description", "has_team",
		"created_on", "created_by", "modified_on", "modified_by",
		"deleted_on", "deleted_by", "cc_version",
	}

	mock.ExpectQuery(`SELECT id, name, description, has_team, .+ FROM products WHERE id=\$1 AND deleted_on IS NULL`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(id, "conductor", "", false, now, nil, now, nil, nil, nil, int64(1)))

	p, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "conductor", p.Name)

	mock.ExpectQuery(`SELECT .+ FROM products WHERE deleted_on IS NULL ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(id, "conductor", "", false, now, nil, now, nil, nil, nil, int64(1)))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
