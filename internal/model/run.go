package model

import "time"

// RecordKind distinguishes the two canonical record types. The engine only
// ever compares records of the same kind.
type RecordKind string

const (
	KindBusiness RecordKind = "business"
	KindRFP      RecordKind = "rfp"
)

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one execution of the dedup pipeline for the preview store.
type Run struct {
	ID          string     `json:"id"`
	Kind        RecordKind `json:"kind"`
	Status      RunStatus  `json:"status"`
	InputCount  int        `json:"input_count"`
	OutputCount int        `json:"output_count"`
	QAPassed    *bool      `json:"qa_passed,omitempty"`
	ExportPath  string     `json:"export_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
