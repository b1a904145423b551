// Package sizeclass maps employee count or annual revenue to a coarse
// business size category. Employee thresholds are preferred; revenue is the
// fallback; NAICS-specific small-business standards override the generic
// employee ceiling when the table has an entry for the record's code.
package sizeclass

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// Thresholds holds the generic classification boundaries, inclusive upper
// bounds per category.
type Thresholds struct {
	MicroEmployees  int   `yaml:"micro_employees"`
	SmallEmployees  int   `yaml:"small_employees"`
	MediumEmployees int   `yaml:"medium_employees"`
	MicroRevenue    int64 `yaml:"micro_revenue"`
	SmallRevenue    int64 `yaml:"small_revenue"`
	MediumRevenue   int64 `yaml:"medium_revenue"`
}

// Table is the full classification configuration: generic thresholds plus
// NAICS-specific small-business employee ceilings.
type Table struct {
	Generic Thresholds     `yaml:"generic"`
	NAICS   map[string]int `yaml:"naics"`
}

// DefaultTable returns the generic thresholds and the SBA service-sector
// size standards (1,500-employee ceiling) for the NAICS codes the original
// dataset most commonly carries.
func DefaultTable() Table {
	naics := make(map[string]int, len(serviceSectorCodes))
	for _, code := range serviceSectorCodes {
		naics[code] = 1500
	}
	return Table{
		Generic: Thresholds{
			MicroEmployees:  9,
			SmallEmployees:  49,
			MediumEmployees: 249,
			MicroRevenue:    1_000_000,
			SmallRevenue:    10_000_000,
			MediumRevenue:   50_000_000,
		},
		NAICS: naics,
	}
}

// serviceSectorCodes are the NAICS codes with a 1,500-employee SBA
// small-business standard: computer services, health practitioner offices,
// consulting, advertising, and other professional services.
var serviceSectorCodes = []string{
	"541511", "541512", "541513", "541519",
	"621111", "621112", "621210", "621310", "621320", "621330",
	"621340", "621391", "621399",
	"541611", "541612", "541613", "541614", "541618", "541690",
	"541810", "541820", "541830", "541840", "541850", "541860",
	"541870", "541890", "541910", "541920", "541930", "541940", "541990",
}

// LoadTable reads a threshold table from a YAML file, overlaying the
// defaults: generic thresholds replace wholesale when present, NAICS
// entries merge over the built-in standards.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return table, eris.Wrap(err, "sizeclass: read table")
	}

	var file Table
	if err := yaml.Unmarshal(data, &file); err != nil {
		return table, eris.Wrap(err, "sizeclass: parse table")
	}

	if file.Generic != (Thresholds{}) {
		table.Generic = file.Generic
	}
	for code, ceiling := range file.NAICS {
		table.NAICS[code] = ceiling
	}
	return table, nil
}

// Classify derives the size category and small-business flag. When neither
// employee count nor revenue is available the record stays unclassified:
// ("", nil) means unknown, not large or small.
func Classify(employeeCount *int, revenueUSD *int64, naics string, t Table) (model.BusinessSize, *bool) {
	if employeeCount != nil {
		if ceiling, ok := t.NAICS[naics]; ok {
			return classifyWithCeiling(*employeeCount, ceiling, t.Generic)
		}
		return classifyEmployees(*employeeCount, t.Generic)
	}
	if revenueUSD != nil {
		return classifyRevenue(*revenueUSD, t.Generic)
	}
	return "", nil
}

// Apply sets BusinessSize and IsSmallBusiness on the record in place.
func Apply(r *model.BusinessRecord, t Table) {
	r.BusinessSize, r.IsSmallBusiness = Classify(r.EmployeeCount, r.AnnualRevenueUSD, r.NAICSCode, t)
}

func classifyEmployees(n int, g Thresholds) (model.BusinessSize, *bool) {
	switch {
	case n <= g.MicroEmployees:
		return model.SizeMicro, boolPtr(true)
	case n <= g.SmallEmployees:
		return model.SizeSmall, boolPtr(true)
	case n <= g.MediumEmployees:
		return model.SizeMedium, boolPtr(false)
	default:
		return model.SizeLarge, boolPtr(false)
	}
}

// classifyWithCeiling applies a NAICS-specific small-business ceiling: the
// record counts as small up to the industry standard even when the generic
// thresholds would call it medium or large.
func classifyWithCeiling(n, ceiling int, g Thresholds) (model.BusinessSize, *bool) {
	small := n <= ceiling
	switch {
	case n <= g.MicroEmployees:
		return model.SizeMicro, boolPtr(small)
	case n <= ceiling:
		return model.SizeSmall, boolPtr(small)
	case n <= g.MediumEmployees:
		return model.SizeMedium, boolPtr(small)
	default:
		return model.SizeLarge, boolPtr(small)
	}
}

func classifyRevenue(rev int64, g Thresholds) (model.BusinessSize, *bool) {
	switch {
	case rev <= g.MicroRevenue:
		return model.SizeMicro, boolPtr(true)
	case rev <= g.SmallRevenue:
		return model.SizeSmall, boolPtr(true)
	case rev <= g.MediumRevenue:
		return model.SizeMedium, boolPtr(false)
	default:
		return model.SizeLarge, boolPtr(false)
	}
}

func boolPtr(b bool) *bool { return &b }
