// Package engine implements the record deduplication core: blocking,
// pairwise similarity scoring, union-find cluster resolution, and
// field-level merging. The engine is a pure batch computation: it takes an
// immutable input slice plus an explicit Config and returns a new output
// slice, so callers may run independent batches concurrently.
package engine

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// Engine deduplicates canonical record sets. Construct with New; the
// zero value is not usable.
type Engine struct {
	cfg Config
}

// New validates cfg and returns an engine. Invalid configuration is
// rejected here, before any clustering work begins.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// DedupeBusinesses clusters business records that denote the same entity
// and merges each cluster into one output record. Input order determines
// the insertion-order tie-break, so output is deterministic for a fixed
// input and configuration.
func (e *Engine) DedupeBusinesses(ctx context.Context, records []model.BusinessRecord) ([]model.BusinessRecord, error) {
	start := time.Now()

	blocks := buildBlocks(len(records), func(i int) []string {
		if !records[i].HasIdentity() {
			return nil // malformed: singleton, never compared
		}
		return businessKeys(records[i], e.cfg.NamePrefixLen)
	})
	pairs := candidatePairs(blocks)

	edges, err := e.scorePairs(ctx, pairs, func(p pair) (float64, map[string]float64) {
		return BusinessSimilarity(records[p.a], records[p.b], e.cfg)
	})
	if err != nil {
		return nil, err
	}

	clusters := resolveClusters(len(records), edges, e.cfg.MergeThreshold)

	out := make([]model.BusinessRecord, 0, len(clusters))
	for _, idxs := range clusters {
		ordered := precedenceOrder(idxs,
			func(i int) int { return e.cfg.sourceRank(records[i].Source) },
			func(i int) int { return records[i].Completeness() },
		)
		out = append(out, mergeBusinessCluster(records, ordered))
	}

	zap.L().Info("engine: business dedupe complete",
		zap.Int("input", len(records)),
		zap.Int("pairs", len(pairs)),
		zap.Int("clusters", len(clusters)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return out, nil
}

// DedupeRFPs clusters RFP records that denote the same solicitation and
// merges each cluster into one output record.
func (e *Engine) DedupeRFPs(ctx context.Context, records []model.RFPRecord) ([]model.RFPRecord, error) {
	start := time.Now()

	blocks := buildBlocks(len(records), func(i int) []string {
		if !records[i].HasIdentity() {
			return nil
		}
		return rfpKeys(records[i], e.cfg.NamePrefixLen)
	})
	pairs := candidatePairs(blocks)

	edges, err := e.scorePairs(ctx, pairs, func(p pair) (float64, map[string]float64) {
		return RFPSimilarity(records[p.a], records[p.b], e.cfg)
	})
	if err != nil {
		return nil, err
	}

	clusters := resolveClusters(len(records), edges, e.cfg.MergeThreshold)

	out := make([]model.RFPRecord, 0, len(clusters))
	for _, idxs := range clusters {
		ordered := precedenceOrder(idxs,
			func(i int) int { return e.cfg.sourceRank(records[i].Source) },
			func(i int) int { return records[i].Completeness() },
		)
		out = append(out, mergeRFPCluster(records, ordered))
	}

	zap.L().Info("engine: rfp dedupe complete",
		zap.Int("input", len(records)),
		zap.Int("pairs", len(pairs)),
		zap.Int("clusters", len(clusters)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return out, nil
}

// scorePairs evaluates candidate pairs concurrently. Each worker writes
// into its own slice region, so no lock is needed; the union pass that
// consumes the edges stays single-threaded.
func (e *Engine) scorePairs(ctx context.Context, pairs []pair, score func(pair) (float64, map[string]float64)) ([]Match, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(pairs) + workers - 1) / workers

	edges := make([]Match, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(pairs); lo += chunk {
		hi := lo + chunk
		if hi > len(pairs) {
			hi = len(pairs)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				s, signals := score(pairs[i])
				edges[i] = Match{A: pairs[i].a, B: pairs[i].b, Score: s, Signals: signals}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return edges, nil
}
