package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataforge/dataforge-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.KindBusiness, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID, 80, true, "/tmp/business.csv"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 100, got.InputCount)
	assert.Equal(t, 80, got.OutputCount)
	require.NotNil(t, got.QAPassed)
	assert.True(t, *got.QAPassed)
	assert.Equal(t, "/tmp/business.csv", got.ExportPath)
}

func TestSQLiteStore_FailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.KindRFP, 10)
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, eris.New("load: no rows")))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "no rows")
	assert.Nil(t, got.QAPassed)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	err := s.CompleteRun(context.Background(), "missing", 1, false, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	bizRun, err := s.CreateRun(ctx, model.KindBusiness, 5)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, model.KindRFP, 3)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, bizRun.ID, 4, true, ""))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	biz, err := s.ListRuns(ctx, RunFilter{Kind: model.KindBusiness})
	require.NoError(t, err)
	require.Len(t, biz, 1)
	assert.Equal(t, bizRun.ID, biz[0].ID)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, bizRun.ID, complete[0].ID)
}

func TestSQLiteStore_SaveAndListBusinesses(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.KindBusiness, 3)
	require.NoError(t, err)

	emp := 12
	records := []model.BusinessRecord{
		{CompanyName: "Acme", State: "TX", EmployeeCount: &emp, Source: "a", QualityScore: 90},
		{CompanyName: "Beta", State: "CA", Source: "b", QualityScore: 70},
		{CompanyName: "Gamma", State: "WA", Source: "c", QualityScore: 50},
	}
	require.NoError(t, s.SaveBusinesses(ctx, run.ID, records))

	got, err := s.ListBusinesses(ctx, run.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Output order survives the round trip.
	assert.Equal(t, "Acme", got[0].CompanyName)
	require.NotNil(t, got[0].EmployeeCount)
	assert.Equal(t, 12, *got[0].EmployeeCount)
	assert.Equal(t, "Gamma", got[2].CompanyName)

	// Pagination.
	page, err := s.ListBusinesses(ctx, run.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Beta", page[0].CompanyName)
}

func TestSQLiteStore_SaveAndListRFPs(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.KindRFP, 2)
	require.NoError(t, err)

	records := []model.RFPRecord{
		{NoticeID: "N-1", Title: "IT Support", Source: "sam.gov"},
		{NoticeID: "N-2", Title: "Janitorial", Source: "grants.gov"},
	}
	require.NoError(t, s.SaveRFPs(ctx, run.ID, records))

	got, err := s.ListRFPs(ctx, run.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "N-1", got[0].NoticeID)

	// RFP records do not leak into a business listing.
	biz, err := s.ListBusinesses(ctx, run.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, biz)
}
