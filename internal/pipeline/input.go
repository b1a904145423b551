package pipeline

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dataforge/dataforge-cli/internal/model"
	"github.com/dataforge/dataforge-cli/internal/normalize"
)

// LoadBusinessCSV reads raw business rows from a headered CSV file and
// normalizes them into canonical records. Columns are matched by header
// name, so column order and extra columns do not matter. Malformed optional
// values degrade to null; only rows with no usable identity are dropped.
func LoadBusinessCSV(path string) ([]model.BusinessRecord, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	col := headerIndex(header)
	records := make([]model.BusinessRecord, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		get := func(name string) string { return cell(row, col, name) }

		r := model.BusinessRecord{
			CompanyName:      normalize.String(get("company_name")),
			Domain:           normalize.Domain(get("domain")),
			Phone:            normalize.PhoneDigits(get("phone")),
			Email:            strings.ToLower(normalize.String(get("email"))),
			AddressLine1:     normalize.String(get("address_line1")),
			City:             normalize.String(get("city")),
			State:            strings.ToUpper(normalize.String(get("state"))),
			PostalCode:       normalize.String(get("postal_code")),
			Country:          normalize.String(get("country")),
			County:           normalize.String(get("county")),
			CountyFIPS:       normalize.String(get("county_fips")),
			NAICSCode:        normalize.String(get("naics_code")),
			Industry:         normalize.String(get("industry")),
			FoundedYear:      normalize.Int(get("founded_year")),
			YearsInBusiness:  normalize.Int(get("years_in_business")),
			EmployeeCount:    normalize.Int(get("employee_count")),
			AnnualRevenueUSD: normalize.Int64(get("annual_revenue_usd")),
			IsSmallBusiness:  normalize.Bool(get("is_small_business")),
			Source:           normalize.String(get("source")),
			LastVerified:     normalize.Timestamp(get("last_verified")),
		}
		if size := normalize.String(get("business_size")); model.ValidSize(size) {
			r.BusinessSize = model.BusinessSize(size)
		}

		if r.CompanyName == "" && r.Domain == "" && r.Phone == "" {
			dropped++
			continue
		}
		records = append(records, r)
	}

	if dropped > 0 {
		zap.L().Warn("pipeline: dropped identity-less business rows",
			zap.String("path", path),
			zap.Int("dropped", dropped),
		)
	}
	return records, nil
}

// LoadRFPCSV reads raw RFP rows from a headered CSV file.
func LoadRFPCSV(path string) ([]model.RFPRecord, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	col := headerIndex(header)
	records := make([]model.RFPRecord, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		get := func(name string) string { return cell(row, col, name) }

		r := model.RFPRecord{
			NoticeID:                normalize.String(get("notice_id")),
			Title:                   normalize.String(get("title")),
			Agency:                  normalize.String(get("agency")),
			NAICS:                   normalize.String(get("naics")),
			SolicitationNumber:      normalize.String(get("solicitation_number")),
			NoticeType:              normalize.String(get("notice_type")),
			PostedDate:              normalize.Date(get("posted_date")),
			CloseDate:               normalize.Date(get("close_date")),
			PlaceOfPerformanceState: strings.ToUpper(normalize.String(get("place_of_performance_state"))),
			Description:             normalize.String(get("description")),
			URL:                     normalize.String(get("url")),
			ContactName:             normalize.String(get("contact_name")),
			ContactEmail:            strings.ToLower(normalize.String(get("contact_email"))),
			EstimatedValue:          normalize.String(get("estimated_value")),
			Source:                  normalize.String(get("source")),
			LastChecked:             normalize.Timestamp(get("last_checked")),
		}

		if r.NoticeID == "" && r.Title == "" {
			dropped++
			continue
		}
		records = append(records, r)
	}

	if dropped > 0 {
		zap.L().Warn("pipeline: dropped identity-less rfp rows",
			zap.String("path", path),
			zap.Int("dropped", dropped),
		)
	}
	return records, nil
}

func readCSV(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: open input")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	header, err = r.Read()
	if err == io.EOF {
		return nil, nil, eris.New("pipeline: input file is empty")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: read header")
	}

	rows, err = r.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: read rows")
	}
	return rows, header, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
