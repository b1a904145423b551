// Package export writes merged record sets to CSV and XLSX files using the
// canonical column orders downstream consumers depend on.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// businessColumns defines the ordered business CSV output columns.
var businessColumns = []string{
	"company_name",
	"domain",
	"phone",
	"email",
	"address_line1",
	"city",
	"state",
	"postal_code",
	"country",
	"county",
	"county_fips",
	"naics_code",
	"industry",
	"founded_year",
	"years_in_business",
	"employee_count",
	"annual_revenue_usd",
	"business_size",
	"is_small_business",
	"source",
	"last_verified",
	"quality_score",
}

// rfpColumns defines the ordered RFP CSV output columns.
var rfpColumns = []string{
	"notice_id",
	"title",
	"agency",
	"naics",
	"solicitation_number",
	"notice_type",
	"posted_date",
	"close_date",
	"place_of_performance_state",
	"description",
	"url",
	"contact_name",
	"contact_email",
	"estimated_value",
	"source",
	"last_checked",
	"quality_score",
}

// Filename builds the export file name from the run parameters:
// <prefix>-<yyyymmdd>-<sorted states>-<naics or keywords or "all">.<ext>
func Filename(prefix string, states, filters []string, ext string, now time.Time) string {
	sortedStates := append([]string(nil), states...)
	sort.Strings(sortedStates)

	filterSlug := "all"
	if len(filters) > 0 {
		filterSlug = strings.Join(filters, "-")
	}

	return fmt.Sprintf("%s-%s-%s-%s.%s",
		prefix, now.UTC().Format("20060102"), strings.Join(sortedStates, "-"), filterSlug, ext)
}

// WriteBusinessCSV writes merged business records to path, creating parent
// directories as needed.
func WriteBusinessCSV(records []model.BusinessRecord, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(businessColumns); err != nil {
		return eris.Wrap(err, "export: write business header")
	}
	for _, r := range records {
		if err := w.Write(businessRow(r)); err != nil {
			return eris.Wrap(err, "export: write business row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush business csv")
}

// WriteRFPCSV writes merged RFP records to path.
func WriteRFPCSV(records []model.RFPRecord, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(rfpColumns); err != nil {
		return eris.Wrap(err, "export: write rfp header")
	}
	for _, r := range records {
		if err := w.Write(rfpRow(r)); err != nil {
			return eris.Wrap(err, "export: write rfp row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush rfp csv")
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "export: create dir")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: create file")
	}
	return f, nil
}

func businessRow(r model.BusinessRecord) []string {
	return []string{
		r.CompanyName,
		r.Domain,
		r.Phone,
		r.Email,
		r.AddressLine1,
		r.City,
		r.State,
		r.PostalCode,
		r.Country,
		r.County,
		r.CountyFIPS,
		r.NAICSCode,
		r.Industry,
		intStr(r.FoundedYear),
		intStr(r.YearsInBusiness),
		intStr(r.EmployeeCount),
		int64Str(r.AnnualRevenueUSD),
		string(r.BusinessSize),
		boolStr(r.IsSmallBusiness),
		r.Source,
		timeStr(r.LastVerified),
		strconv.Itoa(r.QualityScore),
	}
}

func rfpRow(r model.RFPRecord) []string {
	return []string{
		r.NoticeID,
		r.Title,
		r.Agency,
		r.NAICS,
		r.SolicitationNumber,
		r.NoticeType,
		datePtrStr(r.PostedDate),
		datePtrStr(r.CloseDate),
		r.PlaceOfPerformanceState,
		r.Description,
		r.URL,
		r.ContactName,
		r.ContactEmail,
		r.EstimatedValue,
		r.Source,
		timeStr(r.LastChecked),
		strconv.Itoa(r.QualityScore),
	}
}

func intStr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func int64Str(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func boolStr(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}

func timeStr(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func datePtrStr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
