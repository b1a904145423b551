package sizeclass

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataforge/dataforge-cli/internal/model"
)

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func TestClassify_EmployeeThresholds(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		emp   int
		size  model.BusinessSize
		small bool
	}{
		{1, model.SizeMicro, true},
		{9, model.SizeMicro, true},
		{10, model.SizeSmall, true},
		{49, model.SizeSmall, true},
		{50, model.SizeMedium, false},
		{249, model.SizeMedium, false},
		{250, model.SizeLarge, false},
	}
	for _, tt := range tests {
		size, small := Classify(intPtr(tt.emp), nil, "", table)
		assert.Equal(t, tt.size, size, "emp=%d", tt.emp)
		if assert.NotNil(t, small, "emp=%d", tt.emp) {
			assert.Equal(t, tt.small, *small, "emp=%d", tt.emp)
		}
	}
}

func TestClassify_RevenueFallback(t *testing.T) {
	table := DefaultTable()
	// employee_count=null, annual_revenue_usd=8,000,000 → small.
	size, small := Classify(nil, int64Ptr(8_000_000), "", table)
	assert.Equal(t, model.SizeSmall, size)
	if assert.NotNil(t, small) {
		assert.True(t, *small)
	}

	size, small = Classify(nil, int64Ptr(60_000_000), "", table)
	assert.Equal(t, model.SizeLarge, size)
	assert.False(t, *small)
}

func TestClassify_EmployeesPreferredOverRevenue(t *testing.T) {
	table := DefaultTable()
	// Large revenue but tiny headcount: employee thresholds win.
	size, _ := Classify(intPtr(5), int64Ptr(60_000_000), "", table)
	assert.Equal(t, model.SizeMicro, size)
}

func TestClassify_Unclassified(t *testing.T) {
	size, small := Classify(nil, nil, "", DefaultTable())
	assert.Equal(t, model.BusinessSize(""), size)
	assert.Nil(t, small)
}

func TestClassify_NAICSOverride(t *testing.T) {
	table := DefaultTable()
	// 541511 carries the SBA 1,500-employee standard: 800 employees is
	// still a small business in that industry.
	size, small := Classify(intPtr(800), nil, "541511", table)
	assert.Equal(t, model.SizeSmall, size)
	if assert.NotNil(t, small) {
		assert.True(t, *small)
	}

	// Same headcount without a NAICS entry classifies large.
	size, small = Classify(intPtr(800), nil, "999999", table)
	assert.Equal(t, model.SizeLarge, size)
	assert.False(t, *small)
}

func TestClassify_NAICSOverride_AboveCeiling(t *testing.T) {
	table := DefaultTable()
	size, small := Classify(intPtr(2000), nil, "541511", table)
	assert.Equal(t, model.SizeLarge, size)
	assert.False(t, *small)
}

func TestApply(t *testing.T) {
	r := model.BusinessRecord{CompanyName: "Acme", AnnualRevenueUSD: int64Ptr(500_000), Source: "a"}
	Apply(&r, DefaultTable())
	assert.Equal(t, model.SizeMicro, r.BusinessSize)
	if assert.NotNil(t, r.IsSmallBusiness) {
		assert.True(t, *r.IsSmallBusiness)
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "size.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
naics:
  "311811": 1000
  "541511": 1250
`), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	// New entries merge in, existing defaults can be overridden.
	assert.Equal(t, 1000, table.NAICS["311811"])
	assert.Equal(t, 1250, table.NAICS["541511"])
	assert.Equal(t, 1500, table.NAICS["541512"])
	// Generic thresholds stay at defaults when the file omits them.
	assert.Equal(t, 9, table.Generic.MicroEmployees)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
