// Package qa validates output sets after dedup and scoring, producing a
// QAReport the pipeline attaches to the run.
package qa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dataforge/dataforge-cli/internal/model"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,11}$`)
	fipsPattern  = regexp.MustCompile(`^\d{5}$`)
)

// validStates are the two-letter USPS codes plus DC.
var validStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

// ValidState reports whether s is a recognized state code.
func ValidState(s string) bool {
	return validStates[strings.ToUpper(s)]
}

// BusinessReport checks each business record's state code, phone shape,
// county FIPS (when geocoding ran), and founded-year consistency.
func BusinessReport(records []model.BusinessRecord, geocodeEnabled bool) model.QAReport {
	var errs []string

	for _, r := range records {
		if !ValidState(r.State) {
			errs = append(errs, fmt.Sprintf("invalid state %q for %s", r.State, r.CompanyName))
		}
		if r.Phone != "" {
			sanitized := strings.ReplaceAll(r.Phone, "+", "")
			if !phonePattern.MatchString(sanitized) {
				errs = append(errs, fmt.Sprintf("bad phone %q for %s", r.Phone, r.CompanyName))
			}
		}
		if geocodeEnabled && r.CountyFIPS != "" && !fipsPattern.MatchString(r.CountyFIPS) {
			errs = append(errs, fmt.Sprintf("invalid county_fips %q for %s", r.CountyFIPS, r.CompanyName))
		}
		if r.FoundedYear != nil && r.YearsInBusiness != nil && !r.LastVerified.IsZero() {
			expected := r.LastVerified.Year() - *r.FoundedYear
			if expected < 0 {
				expected = 0
			}
			if diff := expected - *r.YearsInBusiness; diff > 1 || diff < -1 {
				errs = append(errs, fmt.Sprintf("years_in_business mismatch for %s", r.CompanyName))
			}
		}
	}

	return model.QAReport{
		Passed:    len(errs) == 0,
		TotalRows: len(records),
		Errors:    errs,
	}
}

// RFPReport checks for duplicate notice ids surviving dedup. The engine
// guarantees none remain, so any dupe here is an error.
func RFPReport(records []model.RFPRecord) model.QAReport {
	var errs []string
	seen := make(map[string]bool, len(records))
	dupes := 0

	for _, r := range records {
		if r.NoticeID == "" {
			continue
		}
		if seen[r.NoticeID] {
			dupes++
			errs = append(errs, fmt.Sprintf("duplicate notice_id %s", r.NoticeID))
			continue
		}
		seen[r.NoticeID] = true
	}

	return model.QAReport{
		Passed:    len(errs) == 0,
		TotalRows: len(records),
		Dupes:     dupes,
		Errors:    errs,
	}
}
