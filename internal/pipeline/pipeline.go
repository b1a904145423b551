// Package pipeline wires the full dedup flow: load, dedupe, classify,
// score, filter, export, and QA, with run bookkeeping in the store.
package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dataforge/dataforge-cli/internal/engine"
	"github.com/dataforge/dataforge-cli/internal/export"
	"github.com/dataforge/dataforge-cli/internal/model"
	"github.com/dataforge/dataforge-cli/internal/qa"
	"github.com/dataforge/dataforge-cli/internal/quality"
	"github.com/dataforge/dataforge-cli/internal/sizeclass"
	"github.com/dataforge/dataforge-cli/internal/store"
)

// Options controls a single pipeline run.
type Options struct {
	// States and Filters feed the export filename slug.
	States  []string
	Filters []string

	// SmallOnly keeps only records flagged as small businesses.
	SmallOnly bool
	// Sizes, when non-empty, keeps only records in these size categories.
	Sizes []string

	ExportDir string
	// Format is "csv" or "xlsx".
	Format string
	// SkipExport suppresses file output; records still flow to the store.
	SkipExport bool

	GeocodeEnabled bool
}

// Pipeline runs the dedup flow end to end. The store is optional; without
// one, runs are not recorded and preview is unavailable.
type Pipeline struct {
	engine    *engine.Engine
	quality   quality.Config
	sizeTable sizeclass.Table
	store     store.Store
}

// New assembles a pipeline from its stages.
func New(eng *engine.Engine, qcfg quality.Config, table sizeclass.Table, st store.Store) *Pipeline {
	return &Pipeline{engine: eng, quality: qcfg, sizeTable: table, store: st}
}

// BusinessResult is the outcome of a business pipeline run.
type BusinessResult struct {
	Run        *model.Run
	Records    []model.BusinessRecord
	Report     model.QAReport
	ExportPath string
}

// RFPResult is the outcome of an RFP pipeline run.
type RFPResult struct {
	Run        *model.Run
	Records    []model.RFPRecord
	Report     model.QAReport
	ExportPath string
}

// RunBusinesses deduplicates, classifies, scores, filters, exports, and
// validates a business record batch.
func (p *Pipeline) RunBusinesses(ctx context.Context, records []model.BusinessRecord, opts Options) (*BusinessResult, error) {
	run, err := p.createRun(ctx, model.KindBusiness, len(records))
	if err != nil {
		return nil, err
	}

	merged, err := p.engine.DedupeBusinesses(ctx, records)
	if err != nil {
		return nil, p.failRun(ctx, run, err)
	}

	for i := range merged {
		sizeclass.Apply(&merged[i], p.sizeTable)
		merged[i].QualityScore = quality.ScoreBusiness(merged[i], p.quality)
	}

	merged = filterBusinesses(merged, opts)

	// Highest quality first; stable so equal scores keep merge order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].QualityScore > merged[j].QualityScore
	})

	exportPath := ""
	if !opts.SkipExport {
		exportPath, err = p.exportBusinesses(merged, opts)
		if err != nil {
			return nil, p.failRun(ctx, run, err)
		}
	}

	report := qa.BusinessReport(merged, opts.GeocodeEnabled)
	if !report.Passed {
		zap.L().Warn("pipeline: business qa failed",
			zap.Int("errors", len(report.Errors)),
		)
	}

	if err := p.finishRun(ctx, run, len(merged), report.Passed, exportPath, func(runID string) error {
		return p.store.SaveBusinesses(ctx, runID, merged)
	}); err != nil {
		return nil, err
	}

	return &BusinessResult{Run: run, Records: merged, Report: report, ExportPath: exportPath}, nil
}

// RunRFPs deduplicates, scores, exports, and validates an RFP record batch.
func (p *Pipeline) RunRFPs(ctx context.Context, records []model.RFPRecord, opts Options) (*RFPResult, error) {
	run, err := p.createRun(ctx, model.KindRFP, len(records))
	if err != nil {
		return nil, err
	}

	merged, err := p.engine.DedupeRFPs(ctx, records)
	if err != nil {
		return nil, p.failRun(ctx, run, err)
	}

	for i := range merged {
		merged[i].QualityScore = quality.ScoreRFP(merged[i], p.quality)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].QualityScore > merged[j].QualityScore
	})

	exportPath := ""
	if !opts.SkipExport {
		exportPath, err = p.exportRFPs(merged, opts)
		if err != nil {
			return nil, p.failRun(ctx, run, err)
		}
	}

	report := qa.RFPReport(merged)
	if !report.Passed {
		zap.L().Warn("pipeline: rfp qa failed",
			zap.Int("errors", len(report.Errors)),
		)
	}

	if err := p.finishRun(ctx, run, len(merged), report.Passed, exportPath, func(runID string) error {
		return p.store.SaveRFPs(ctx, runID, merged)
	}); err != nil {
		return nil, err
	}

	return &RFPResult{Run: run, Records: merged, Report: report, ExportPath: exportPath}, nil
}

func filterBusinesses(records []model.BusinessRecord, opts Options) []model.BusinessRecord {
	if !opts.SmallOnly && len(opts.Sizes) == 0 {
		return records
	}

	sizes := make(map[string]bool, len(opts.Sizes))
	for _, s := range opts.Sizes {
		sizes[s] = true
	}

	kept := records[:0]
	for _, r := range records {
		if opts.SmallOnly && (r.IsSmallBusiness == nil || !*r.IsSmallBusiness) {
			continue
		}
		if len(sizes) > 0 && !sizes[string(r.BusinessSize)] {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (p *Pipeline) exportBusinesses(records []model.BusinessRecord, opts Options) (string, error) {
	ext := exportExt(opts.Format)
	path := filepath.Join(opts.ExportDir, export.Filename("business", opts.States, opts.Filters, ext, time.Now()))
	if ext == "xlsx" {
		return path, export.WriteBusinessXLSX(records, path)
	}
	return path, export.WriteBusinessCSV(records, path)
}

func (p *Pipeline) exportRFPs(records []model.RFPRecord, opts Options) (string, error) {
	ext := exportExt(opts.Format)
	path := filepath.Join(opts.ExportDir, export.Filename("rfps", opts.States, opts.Filters, ext, time.Now()))
	if ext == "xlsx" {
		return path, export.WriteRFPXLSX(records, path)
	}
	return path, export.WriteRFPCSV(records, path)
}

func exportExt(format string) string {
	if format == "xlsx" {
		return "xlsx"
	}
	return "csv"
}

func (p *Pipeline) createRun(ctx context.Context, kind model.RecordKind, inputCount int) (*model.Run, error) {
	if p.store == nil {
		return nil, nil
	}
	return p.store.CreateRun(ctx, kind, inputCount)
}

// failRun marks the run failed and returns the original error. Store
// failures during cleanup are logged, not returned.
func (p *Pipeline) failRun(ctx context.Context, run *model.Run, cause error) error {
	if p.store != nil && run != nil {
		if err := p.store.FailRun(ctx, run.ID, cause); err != nil {
			zap.L().Error("pipeline: mark run failed", zap.Error(err))
		}
	}
	return cause
}

func (p *Pipeline) finishRun(ctx context.Context, run *model.Run, outputCount int, qaPassed bool, exportPath string, save func(runID string) error) error {
	if p.store == nil || run == nil {
		return nil
	}
	if err := save(run.ID); err != nil {
		return p.failRun(ctx, run, err)
	}
	if err := p.store.CompleteRun(ctx, run.ID, outputCount, qaPassed, exportPath); err != nil {
		return err
	}
	run.Status = model.RunStatusComplete
	run.OutputCount = outputCount
	run.QAPassed = &qaPassed
	run.ExportPath = exportPath
	return nil
}
