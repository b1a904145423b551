package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "business", "running", 42, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.KindBusiness, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, 42, run.InputCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, kind, status, input_count`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	passed := true
	path := "/tmp/out.csv"
	rows := pgxmock.NewRows([]string{
		"id", "kind", "status", "input_count", "output_count",
		"qa_passed", "export_path", "error", "created_at", "updated_at",
	}).AddRow("run-1", model.KindBusiness, model.RunStatusComplete, 10, 7, &passed, &path, (*string)(nil), now, now)

	mock.ExpectQuery(`SELECT id, kind, status, input_count`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 7, run.OutputCount)
	require.NotNil(t, run.QAPassed)
	assert.True(t, *run.QAPassed)
	assert.Equal(t, "/tmp/out.csv", run.ExportPath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("complete", 5, true, "/tmp/out.csv", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", 5, true, "/tmp/out.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveBusinesses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"run_records"},
		[]string{"id", "run_id", "kind", "position", "record"}).
		WillReturnResult(2)

	records := []model.BusinessRecord{
		{CompanyName: "Acme", State: "TX", Source: "a"},
		{CompanyName: "Beta", State: "CA", Source: "b"},
	}
	require.NoError(t, s.SaveBusinesses(context.Background(), "run-1", records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListBusinesses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"record"}).
		AddRow([]byte(`{"company_name":"Acme","state":"TX","source":"a"}`)).
		AddRow([]byte(`{"company_name":"Beta","state":"CA","source":"b"}`))

	mock.ExpectQuery(`SELECT record FROM run_records`).
		WithArgs("run-1", "business", 100, 0).
		WillReturnRows(rows)

	records, err := s.ListBusinesses(context.Background(), "run-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].CompanyName)
	assert.Equal(t, "CA", records[1].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}
