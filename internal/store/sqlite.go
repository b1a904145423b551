package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	input_count  INTEGER NOT NULL DEFAULT 0,
	output_count INTEGER NOT NULL DEFAULT 0,
	qa_passed    INTEGER,
	export_path  TEXT,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_records (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	kind     TEXT NOT NULL,
	position INTEGER NOT NULL,
	record   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_run_records_run_id ON run_records(run_id, position);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, kind model.RecordKind, inputCount int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, input_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(kind), string(model.RunStatusRunning), inputCount, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:         id,
		Kind:       kind,
		Status:     model.RunStatusRunning,
		InputCount: inputCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, outputCount int, qaPassed bool, exportPath string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, output_count = ?, qa_passed = ?, export_path = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), outputCount, qaPassed, exportPath, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), cause.Error(), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, input_count, output_count, qa_passed, export_path, error, created_at, updated_at
		 FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, kind, status, input_count, output_count, qa_passed, export_path, error, created_at, updated_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveBusinesses(ctx context.Context, runID string, records []model.BusinessRecord) error {
	return s.saveRecords(ctx, runID, model.KindBusiness, len(records), func(i int) (any, error) {
		return records[i], nil
	})
}

func (s *SQLiteStore) SaveRFPs(ctx context.Context, runID string, records []model.RFPRecord) error {
	return s.saveRecords(ctx, runID, model.KindRFP, len(records), func(i int) (any, error) {
		return records[i], nil
	})
}

func (s *SQLiteStore) saveRecords(ctx context.Context, runID string, kind model.RecordKind, n int, at func(int) (any, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save records")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_records (id, run_id, kind, position, record) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert record")
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		rec, err := at(i)
		if err != nil {
			return err
		}
		blob, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal record")
		}
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), runID, string(kind), i, string(blob)); err != nil {
			return eris.Wrapf(err, "sqlite: insert record for run %s", runID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit records")
}

func (s *SQLiteStore) ListBusinesses(ctx context.Context, runID string, limit, offset int) ([]model.BusinessRecord, error) {
	blobs, err := s.listRecordBlobs(ctx, runID, model.KindBusiness, limit, offset)
	if err != nil {
		return nil, err
	}
	records := make([]model.BusinessRecord, 0, len(blobs))
	for _, blob := range blobs {
		var r model.BusinessRecord
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal business record")
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *SQLiteStore) ListRFPs(ctx context.Context, runID string, limit, offset int) ([]model.RFPRecord, error) {
	blobs, err := s.listRecordBlobs(ctx, runID, model.KindRFP, limit, offset)
	if err != nil {
		return nil, err
	}
	records := make([]model.RFPRecord, 0, len(blobs))
	for _, blob := range blobs {
		var r model.RFPRecord
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal rfp record")
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *SQLiteStore) listRecordBlobs(ctx context.Context, runID string, kind model.RecordKind, limit, offset int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM run_records WHERE run_id = ? AND kind = ? ORDER BY position LIMIT ? OFFSET ?`,
		runID, string(kind), limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var blobs []string
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		blobs = append(blobs, blob)
	}
	return blobs, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var qaPassed sql.NullBool
	var exportPath, errMsg sql.NullString

	err := row.Scan(&r.ID, &r.Kind, &r.Status, &r.InputCount, &r.OutputCount,
		&qaPassed, &exportPath, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if qaPassed.Valid {
		v := qaPassed.Bool
		r.QAPassed = &v
	}
	r.ExportPath = exportPath.String
	r.Error = errMsg.String
	return &r, nil
}
