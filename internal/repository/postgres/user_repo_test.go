package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/caseconductor/ccstore/internal/errs"
	"github.com/caseconductor/ccstore/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestUserRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	ctx := context.Background()
	u := &model.User{
		ID:        uuid.Must(uuid.NewV4()),
		Username:  "tester",
		Email:     "tester@example.com",
		CreatedOn: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO users \(id, username, email, created_on\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(u.ID, u.Username, u.Email, u.CreatedOn).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(ctx, u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	ctx := context.Background()
	u := &model.User{ID: uuid.Must(uuid.NewV4()), Username: "tester"}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Username, u.Email, u.CreatedOn).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername_OK_And_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, username, email, created_on FROM users WHERE username=\$1`).
		WithArgs("tester").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "created_on"}).
			AddRow(id, "tester", "tester@example.com", ts))
	u, err := r.GetByUsername(ctx, "tester")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	mock.ExpectQuery(`SELECT id, username, email, created_on FROM users WHERE username=\$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
