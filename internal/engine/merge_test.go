package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dataforge/dataforge-cli/internal/model"
)

func TestPrecedenceOrder(t *testing.T) {
	ranks := []int{2, 0, 0, 1}
	completeness := []int{5, 3, 9, 1}

	ordered := precedenceOrder([]int{0, 1, 2, 3},
		func(i int) int { return ranks[i] },
		func(i int) int { return completeness[i] },
	)
	// rank asc, then completeness desc, then index asc.
	assert.Equal(t, []int{2, 1, 3, 0}, ordered)
}

func TestPrecedenceOrder_InsertionTieBreak(t *testing.T) {
	ordered := precedenceOrder([]int{2, 0, 1},
		func(int) int { return 0 },
		func(int) int { return 0 },
	)
	assert.Equal(t, []int{0, 1, 2}, ordered)
}

func TestMergeBusinessCluster(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	emp := 40

	records := []model.BusinessRecord{
		{CompanyName: "Acme LLC", Domain: "acme.com", State: "TX", Source: "state_registry", LastVerified: older},
		{CompanyName: "Acme Corporation", Phone: "5550101234", EmployeeCount: &emp, State: "TX", Source: "opencorporates", LastVerified: newer},
	}

	out := mergeBusinessCluster(records, []int{0, 1})
	// First non-null in precedence order wins per field.
	assert.Equal(t, "Acme LLC", out.CompanyName)
	assert.Equal(t, "acme.com", out.Domain)
	// Gaps are filled from lower-priority records.
	assert.Equal(t, "5550101234", out.Phone)
	if assert.NotNil(t, out.EmployeeCount) {
		assert.Equal(t, 40, *out.EmployeeCount)
	}
	// Sources aggregate in precedence order; freshest timestamp wins.
	assert.Equal(t, "state_registry,opencorporates", out.Source)
	assert.Equal(t, newer, out.LastVerified)
}

func TestMergeBusinessCluster_NullStaysNull(t *testing.T) {
	records := []model.BusinessRecord{
		{CompanyName: "Acme", State: "TX", Source: "a"},
		{CompanyName: "Acme", State: "TX", Source: "b"},
	}
	out := mergeBusinessCluster(records, []int{0, 1})
	assert.Empty(t, out.Domain)
	assert.Nil(t, out.EmployeeCount)
	assert.Nil(t, out.IsSmallBusiness)
}

func TestMergeBusinessCluster_DuplicateSourceTag(t *testing.T) {
	records := []model.BusinessRecord{
		{CompanyName: "Acme", State: "TX", Source: "nppes"},
		{CompanyName: "Acme Inc", State: "TX", Source: "nppes"},
	}
	out := mergeBusinessCluster(records, []int{0, 1})
	assert.Equal(t, "nppes", out.Source)
}

func TestMergeRFPCluster(t *testing.T) {
	checked := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	posted := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	records := []model.RFPRecord{
		{NoticeID: "N-1", Title: "IT Support Services", Source: "sam.gov", LastChecked: checked},
		{NoticeID: "N-1", Title: "it support services", Agency: "GSA", PostedDate: &posted, Source: "grants.gov", LastChecked: checked.Add(-time.Hour)},
	}
	out := mergeRFPCluster(records, []int{0, 1})
	assert.Equal(t, "IT Support Services", out.Title) // higher precedence record wins
	assert.Equal(t, "GSA", out.Agency)
	if assert.NotNil(t, out.PostedDate) {
		assert.Equal(t, posted, *out.PostedDate)
	}
	assert.Equal(t, "sam.gov,grants.gov", out.Source)
	assert.Equal(t, checked, out.LastChecked)
}
