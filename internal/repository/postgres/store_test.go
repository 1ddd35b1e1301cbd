package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/caseconductor/ccstore/internal/errs"
	"github.com/caseconductor/ccstore/internal/model"
)

func newTestStore(t *testing.T) (*Store, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	st := NewStore(&DB{Pool: mock}, nil)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	return st, mock, now
}

func caseColumns() []string {
	return []string{
		"id", "product_id", "name",
		"created_on", "created_by", "modified_on", "modified_by",
		"deleted_on", "deleted_by", "cc_version",
	}
}

func TestStore_CreateRecord_StampsAndVersionZero(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())
	c := &model.Case{ProductID: productID, Name: "login works"}

	mock.ExpectExec(`INSERT INTO cases \(id, product_id, name, created_on, created_by, modified_on, modified_by, cc_version\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8\)`).
		WithArgs(pgxmock.AnyArg(), productID, "login works", now, &actor, now, &actor, int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.CreateRecord(ctx, c, &actor))
	require.NotEqual(t, uuid.Nil, c.ID)
	require.Equal(t, now, c.CreatedOn)
	require.Equal(t, now, c.ModifiedOn)
	require.Equal(t, &actor, c.CreatedBy)
	require.Equal(t, int64(0), c.Version)
	require.True(t, c.Live())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRecord_ConditionalUpdate_OK(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())
	c := &model.Case{ProductID: productID, Name: "renamed"}
	c.ID = id
	c.Version = 3

	mock.ExpectExec(`UPDATE cases SET product_id=\$1, name=\$2, modified_on=\$3, modified_by=\$4, cc_version=cc_version\+1 WHERE id=\$5 AND cc_version=\$6`).
		WithArgs(productID, "renamed", now, &actor, id, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.SaveRecord(ctx, c, &actor, SaveOptions{}))
	require.Equal(t, int64(4), c.Version)
	require.Equal(t, now, c.ModifiedOn)
	require.Equal(t, &actor, c.ModifiedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRecord_VersionConflict(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	c := &model.Case{Name: "stale"}
	c.ID = uuid.Must(uuid.NewV4())
	c.Version = 3

	mock.ExpectExec(`UPDATE cases SET .+ WHERE id=\$5 AND cc_version=\$6`).
		WithArgs(pgxmock.AnyArg(), "stale", pgxmock.AnyArg(), pgxmock.AnyArg(), c.ID, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.SaveRecord(ctx, c, &actor, SaveOptions{})
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	require.Equal(t, int64(3), c.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRecord_Untracked_SkipsModifiedStamps(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	readAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &model.Case{Name: "bookkeeping"}
	c.ID = uuid.Must(uuid.NewV4())
	c.ModifiedOn = readAt
	c.Version = 1

	mock.ExpectExec(`UPDATE cases SET product_id=\$1, name=\$2, cc_version=cc_version\+1 WHERE id=\$3 AND cc_version=\$4`).
		WithArgs(uuid.Nil, "bookkeeping", c.ID, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.SaveRecord(ctx, c, &actor, SaveOptions{ForceUpdate: true, Untracked: true}))
	require.Equal(t, int64(2), c.Version)
	require.Equal(t, readAt, c.ModifiedOn, "untracked save must not restamp modified_on")
	require.Nil(t, c.ModifiedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRecord_InsertWithoutID(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	c := &model.Case{Name: "fresh"}

	mock.ExpectExec(`INSERT INTO cases`).
		WithArgs(pgxmock.AnyArg(), uuid.Nil, "fresh", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.SaveRecord(ctx, c, nil, SaveOptions{}))
	require.NotEqual(t, uuid.Nil, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetRecord_LiveOnly(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, product_id, name, created_on, created_by, modified_on, modified_by, deleted_on, deleted_by, cc_version FROM cases WHERE id=\$1 AND deleted_on IS NULL`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(caseColumns()).
			AddRow(id, productID, "login works", now, nil, now, nil, nil, nil, int64(2)))

	var c model.Case
	require.NoError(t, st.GetRecord(ctx, &c, id))
	require.Equal(t, id, c.ID)
	require.Equal(t, "login works", c.Name)
	require.Equal(t, int64(2), c.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetRecord_NotFound(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT .+ FROM cases WHERE id=\$1 AND deleted_on IS NULL`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	var c model.Case
	err := st.GetRecord(ctx, &c, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetRecordAny_IncludesDeleted(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	deletedAt := now.Add(-time.Hour)

	mock.ExpectQuery(`SELECT id, product_id, name, created_on, created_by, modified_on, modified_by, deleted_on, deleted_by, cc_version FROM cases WHERE id=\$1$`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(caseColumns()).
			AddRow(id, uuid.Nil, "gone", now, nil, now, nil, &deletedAt, nil, int64(0)))

	var c model.Case
	require.NoError(t, st.GetRecordAny(ctx, &c, id))
	require.False(t, c.Live())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListRecords_FiltersAndOrders(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV4())
	id1 := uuid.Must(uuid.NewV4())
	id2 := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT .+ FROM cases WHERE deleted_on IS NULL AND product_id=\$1 ORDER BY id`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows(caseColumns()).
			AddRow(id1, productID, "a", now, nil, now, nil, nil, nil, int64(0)).
			AddRow(id2, productID, "b", now, nil, now, nil, nil, nil, int64(1)))

	out, err := st.ListRecords(ctx, func() model.Record { return &model.Case{} }, Cond{"product_id": productID})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].(*model.Case).Name)
	require.Equal(t, "b", out[1].(*model.Case).Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_BulkUpdate_Tracked(t *testing.T) {
	st, mock, now := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	actor := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE products SET has_team=\$1, modified_on=\$2, modified_by=\$3, cc_version=cc_version\+1 WHERE deleted_on IS NULL AND id=\$4`).
		WithArgs(true, now, &actor, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n, err := st.BulkUpdate(ctx, model.ProductDescriptor, Cond{"id": id}, map[string]any{"has_team": true}, &actor, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_BulkUpdate_Untracked(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE products SET has_team=\$1, cc_version=cc_version\+1 WHERE deleted_on IS NULL AND id=\$2`).
		WithArgs(true, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := st.BulkUpdate(ctx, model.ProductDescriptor, Cond{"id": id}, map[string]any{"has_team": true}, nil, true)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRecord_ExecErr(t *testing.T) {
	st, mock, _ := newTestStore(t)
	defer mock.Close()

	ctx := context.Background()
	c := &model.Case{Name: "x"}
	c.ID = uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE cases SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), c.ID, int64(0)).
		WillReturnError(errors.New("exec-fail"))

	require.Error(t, st.SaveRecord(ctx, c, nil, SaveOptions{}))
	require.NoError(t, mock.ExpectationsWereMet())
}
