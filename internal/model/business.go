package model

import "time"

// BusinessSize is a coarse size category derived from employee count or revenue.
type BusinessSize string

const (
	SizeMicro  BusinessSize = "micro"
	SizeSmall  BusinessSize = "small"
	SizeMedium BusinessSize = "medium"
	SizeLarge  BusinessSize = "large"
)

// ValidSize reports whether s is one of the four recognized size categories.
func ValidSize(s string) bool {
	switch BusinessSize(s) {
	case SizeMicro, SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// BusinessRecord is the canonical, source-agnostic representation of a
// business entity. Optional string fields use "" for absent; optional
// numeric and boolean fields use nil pointers so a genuine zero survives
// merging.
//
// Invariant: Source is non-empty and LastVerified is set before the record
// enters the dedup engine; Domain and the matching form of CompanyName are
// lower-cased and whitespace-collapsed by the normalizer.
type BusinessRecord struct {
	CompanyName      string       `json:"company_name"`
	Domain           string       `json:"domain,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Email            string       `json:"email,omitempty"`
	AddressLine1     string       `json:"address_line1,omitempty"`
	City             string       `json:"city,omitempty"`
	State            string       `json:"state"`
	PostalCode       string       `json:"postal_code,omitempty"`
	Country          string       `json:"country,omitempty"`
	County           string       `json:"county,omitempty"`
	CountyFIPS       string       `json:"county_fips,omitempty"`
	NAICSCode        string       `json:"naics_code,omitempty"`
	Industry         string       `json:"industry,omitempty"`
	FoundedYear      *int         `json:"founded_year,omitempty"`
	YearsInBusiness  *int         `json:"years_in_business,omitempty"`
	EmployeeCount    *int         `json:"employee_count,omitempty"`
	AnnualRevenueUSD *int64       `json:"annual_revenue_usd,omitempty"`
	BusinessSize     BusinessSize `json:"business_size,omitempty"`
	IsSmallBusiness  *bool        `json:"is_small_business,omitempty"`
	Source           string       `json:"source"`
	LastVerified     time.Time    `json:"last_verified"`
	QualityScore     int          `json:"quality_score"`
}

// HasIdentity reports whether the record carries at least one
// identity-relevant field usable for matching. Records without identity
// are never compared; the engine emits them as singleton clusters.
func (r BusinessRecord) HasIdentity() bool {
	return r.CompanyName != "" || r.Domain != "" || r.Phone != "" ||
		r.Email != "" || r.AddressLine1 != "" || r.City != "" || r.PostalCode != ""
}

// Completeness counts populated fields. Used as the second merge tie-break
// after source priority.
func (r BusinessRecord) Completeness() int {
	n := 0
	for _, s := range []string{
		r.CompanyName, r.Domain, r.Phone, r.Email, r.AddressLine1, r.City,
		r.State, r.PostalCode, r.Country, r.County, r.CountyFIPS,
		r.NAICSCode, r.Industry, string(r.BusinessSize),
	} {
		if s != "" {
			n++
		}
	}
	for _, p := range []*int{r.FoundedYear, r.YearsInBusiness, r.EmployeeCount} {
		if p != nil {
			n++
		}
	}
	if r.AnnualRevenueUSD != nil {
		n++
	}
	if r.IsSmallBusiness != nil {
		n++
	}
	return n
}
