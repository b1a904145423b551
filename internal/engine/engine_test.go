package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataforge/dataforge-cli/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestDedupeBusinesses_ExactDomainMatch(t *testing.T) {
	e := newTestEngine(t)
	in := []model.BusinessRecord{
		{CompanyName: "Acme LLC", Domain: "acme.com", State: "TX", Source: "state_registry", LastVerified: time.Now()},
		{CompanyName: "Acme Corp", Domain: "acme.com", State: "TX", Source: "opencorporates", LastVerified: time.Now()},
	}
	out, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Acme LLC", out[0].CompanyName)
	assert.Equal(t, "state_registry,opencorporates", out[0].Source)
}

func TestDedupeBusinesses_AmbiguousNameDoesNotMerge(t *testing.T) {
	e := newTestEngine(t)
	in := []model.BusinessRecord{
		{CompanyName: "Smith Consulting", State: "TX", City: "Austin", Source: "a", LastVerified: time.Now()},
		{CompanyName: "Smith Consulting Group", State: "TX", City: "Dallas", Source: "b", LastVerified: time.Now()},
	}
	out, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestDedupeBusinesses_FuzzyNameSamePostal(t *testing.T) {
	e := newTestEngine(t)
	in := []model.BusinessRecord{
		{CompanyName: "Acme Corporation", City: "Austin", State: "TX", PostalCode: "78701", Source: "a", LastVerified: time.Now()},
		{CompanyName: "Acme Corp", City: "Austin", State: "TX", PostalCode: "78701", Source: "b", LastVerified: time.Now()},
	}
	out, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDedupeBusinesses_MalformedRecordIsSingleton(t *testing.T) {
	e := newTestEngine(t)
	in := []model.BusinessRecord{
		{CompanyName: "Acme", Domain: "acme.com", State: "TX", Source: "a", LastVerified: time.Now()},
		{Source: "b", LastVerified: time.Now()}, // no identity fields at all
		{CompanyName: "Acme Inc", Domain: "acme.com", State: "TX", Source: "c", LastVerified: time.Now()},
	}
	out, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestDedupeBusinesses_PartitionInvariant(t *testing.T) {
	e := newTestEngine(t)
	in := []model.BusinessRecord{
		{CompanyName: "Acme", Domain: "acme.com", State: "TX", Source: "a", LastVerified: time.Now()},
		{CompanyName: "Acme Inc", Domain: "acme.com", State: "TX", Source: "b", LastVerified: time.Now()},
		{CompanyName: "Zenith", Phone: "5550109999", State: "CA", Source: "a", LastVerified: time.Now()},
		{CompanyName: "Zenith Co", Phone: "1 (555) 010-9999", State: "CA", Source: "b", LastVerified: time.Now()},
		{CompanyName: "Unrelated", State: "NY", Source: "c", LastVerified: time.Now()},
	}
	out, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	// Every input source tag appears in exactly one output record.
	seen := map[string]int{}
	for _, r := range out {
		for _, s := range splitSources(r.Source) {
			seen[s+r.CompanyName[:1]]++
		}
	}
	total := 0
	for _, n := range seen {
		total += n
	}
	assert.Equal(t, len(in), total)
}

func splitSources(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

func TestDedupeBusinesses_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	in := []model.BusinessRecord{
		{CompanyName: "Acme LLC", Domain: "acme.com", State: "TX", Source: "a", LastVerified: ts},
		{CompanyName: "Acme Corp", Domain: "acme.com", Phone: "5550101234", State: "TX", Source: "b", LastVerified: ts},
		{CompanyName: "Beta Industries", State: "CA", City: "Fresno", Source: "a", LastVerified: ts},
	}
	first, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	second, err := e.DedupeBusinesses(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDedupeBusinesses_ThresholdMonotonic(t *testing.T) {
	ts := time.Now()
	in := []model.BusinessRecord{
		{CompanyName: "Acme Corporation", City: "Austin", State: "TX", PostalCode: "78701", Source: "a", LastVerified: ts},
		{CompanyName: "Acme Corp", City: "Austin", State: "TX", PostalCode: "78701", Source: "b", LastVerified: ts},
		{CompanyName: "Acme Holdings", City: "Austin", State: "TX", PostalCode: "78701", Source: "c", LastVerified: ts},
	}

	prev := -1
	for _, th := range []float64{0.5, 0.7, 0.9, 1.0} {
		cfg := DefaultConfig()
		cfg.MergeThreshold = th
		e, err := New(cfg)
		require.NoError(t, err)

		out, err := e.DedupeBusinesses(context.Background(), in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(out), prev, "threshold %.2f", th)
		prev = len(out)
	}
}

func TestDedupeBusinesses_SparseRecordNotPenalized(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Now()
	third := model.BusinessRecord{CompanyName: "Gamma Labs", Domain: "gammalabs.io", State: "WA", Source: "ref", LastVerified: ts}
	full := model.BusinessRecord{CompanyName: "Gamma Labs", Domain: "gammalabs.io", Phone: "5550107777", Email: "hi@gammalabs.io", State: "WA", Source: "full", LastVerified: ts}
	sparse := model.BusinessRecord{CompanyName: "Gamma Labs", Domain: "gammalabs.io", State: "WA", Source: "sparse", LastVerified: ts}

	outFull, err := e.DedupeBusinesses(context.Background(), []model.BusinessRecord{third, full})
	require.NoError(t, err)
	outSparse, err := e.DedupeBusinesses(context.Background(), []model.BusinessRecord{third, sparse})
	require.NoError(t, err)

	// The sparse record merges with the reference exactly like the full one:
	// unshared optional fields carry no penalty.
	assert.Len(t, outFull, 1)
	assert.Len(t, outSparse, 1)
}

func TestDedupeRFPs_NoticeIDMerge(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Now()
	in := []model.RFPRecord{
		{NoticeID: "N-42", Title: "it support services", Source: "grants.gov", LastChecked: ts},
		{NoticeID: "N-42", Title: "IT Support Services", Agency: "GSA", Source: "sam.gov", LastChecked: ts},
	}
	out, err := e.DedupeRFPs(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	// sam.gov outranks grants.gov in the default source priority, so its
	// title casing wins even though it arrived second.
	assert.Equal(t, "IT Support Services", out[0].Title)
	assert.Equal(t, "sam.gov,grants.gov", out[0].Source)
}

func TestDedupeRFPs_EmptyInput(t *testing.T) {
	e := newTestEngine(t)
	out, err := e.DedupeRFPs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
