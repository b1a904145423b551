// Package store persists dedup runs and their merged output records so they
// can be listed and previewed after the pipeline finishes.
package store

import (
	"context"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   model.RecordKind `json:"kind,omitempty"`
	Status model.RunStatus  `json:"status,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the dedup pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, kind model.RecordKind, inputCount int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, outputCount int, qaPassed bool, exportPath string) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Output records, kept in pipeline output order for preview.
	SaveBusinesses(ctx context.Context, runID string, records []model.BusinessRecord) error
	SaveRFPs(ctx context.Context, runID string, records []model.RFPRecord) error
	ListBusinesses(ctx context.Context, runID string, limit, offset int) ([]model.BusinessRecord, error)
	ListRFPs(ctx context.Context, runID string, limit, offset int) ([]model.RFPRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
