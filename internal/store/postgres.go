package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dataforge/dataforge-cli/internal/db"
	"github.com/dataforge/dataforge-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Declared as an
// interface so tests can substitute a pgxmock pool.
type Pool interface {
	db.Pool
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	input_count  INTEGER NOT NULL DEFAULT 0,
	output_count INTEGER NOT NULL DEFAULT 0,
	qa_passed    BOOLEAN,
	export_path  TEXT,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_records (
	id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	kind     TEXT NOT NULL,
	position INTEGER NOT NULL,
	record   JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_run_records_run_id ON run_records(run_id, position);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, kind model.RecordKind, inputCount int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, kind, status, input_count, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, string(kind), string(model.RunStatusRunning), inputCount, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, outputCount int, qaPassed bool, exportPath string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, output_count = $2, qa_passed = $3, export_path = $4, updated_at = $5 WHERE id = $6`,
		string(model.RunStatusComplete), outputCount, qaPassed, exportPath, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), cause.Error(), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, status, input_count, output_count, qa_passed, export_path, error, created_at, updated_at
		 FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, kind, status, input_count, output_count, qa_passed, export_path, error, created_at, updated_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveBusinesses(ctx context.Context, runID string, records []model.BusinessRecord) error {
	return s.saveRecords(ctx, runID, model.KindBusiness, len(records), func(i int) any { return records[i] })
}

func (s *PostgresStore) SaveRFPs(ctx context.Context, runID string, records []model.RFPRecord) error {
	return s.saveRecords(ctx, runID, model.KindRFP, len(records), func(i int) any { return records[i] })
}

// saveRecords bulk-inserts the batch with COPY; one round trip per batch
// rather than one per record.
func (s *PostgresStore) saveRecords(ctx context.Context, runID string, kind model.RecordKind, n int, at func(int) any) error {
	rows := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		blob, err := json.Marshal(at(i))
		if err != nil {
			return eris.Wrap(err, "postgres: marshal record")
		}
		rows = append(rows, []any{uuid.New().String(), runID, string(kind), i, blob})
	}

	_, err := db.CopyFrom(ctx, s.pool, "run_records",
		[]string{"id", "run_id", "kind", "position", "record"}, rows)
	if err != nil {
		return eris.Wrapf(err, "postgres: save records for run %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListBusinesses(ctx context.Context, runID string, limit, offset int) ([]model.BusinessRecord, error) {
	blobs, err := s.listRecordBlobs(ctx, runID, model.KindBusiness, limit, offset)
	if err != nil {
		return nil, err
	}
	records := make([]model.BusinessRecord, 0, len(blobs))
	for _, blob := range blobs {
		var r model.BusinessRecord
		if err := json.Unmarshal(blob, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal business record")
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *PostgresStore) ListRFPs(ctx context.Context, runID string, limit, offset int) ([]model.RFPRecord, error) {
	blobs, err := s.listRecordBlobs(ctx, runID, model.KindRFP, limit, offset)
	if err != nil {
		return nil, err
	}
	records := make([]model.RFPRecord, 0, len(blobs))
	for _, blob := range blobs {
		var r model.RFPRecord
		if err := json.Unmarshal(blob, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal rfp record")
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *PostgresStore) listRecordBlobs(ctx context.Context, runID string, kind model.RecordKind, limit, offset int) ([][]byte, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM run_records WHERE run_id = $1 AND kind = $2 ORDER BY position LIMIT $3 OFFSET $4`,
		runID, string(kind), limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var blobs [][]byte
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		blobs = append(blobs, blob)
	}
	return blobs, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var qaPassed *bool
	var exportPath, errMsg *string

	err := row.Scan(&r.ID, &r.Kind, &r.Status, &r.InputCount, &r.OutputCount,
		&qaPassed, &exportPath, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, err
	}

	r.QAPassed = qaPassed
	if exportPath != nil {
		r.ExportPath = *exportPath
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}
