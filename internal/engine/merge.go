package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// precedenceOrder sorts cluster member indices into field-merge precedence:
// source priority first, then record completeness, then insertion order as
// the final stable tie-break.
func precedenceOrder(idxs []int, rank func(i int) int, completeness func(i int) int) []int {
	ordered := make([]int, len(idxs))
	copy(ordered, idxs)
	sort.SliceStable(ordered, func(x, y int) bool {
		a, b := ordered[x], ordered[y]
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		if ca, cb := completeness(a), completeness(b); ca != cb {
			return ca > cb
		}
		return a < b
	})
	return ordered
}

// mergeBusinessCluster builds the single output record for a cluster. Each
// field takes the first non-null value in precedence order; no field is
// silently dropped, and if no member has a value the output field stays null.
// The source field aggregates all contributing tags, and the freshest
// verification timestamp wins.
func mergeBusinessCluster(records []model.BusinessRecord, ordered []int) model.BusinessRecord {
	var out model.BusinessRecord
	var sources []string
	var freshest time.Time

	for _, i := range ordered {
		r := records[i]
		out.CompanyName = firstString(out.CompanyName, r.CompanyName)
		out.Domain = firstString(out.Domain, r.Domain)
		out.Phone = firstString(out.Phone, r.Phone)
		out.Email = firstString(out.Email, r.Email)
		out.AddressLine1 = firstString(out.AddressLine1, r.AddressLine1)
		out.City = firstString(out.City, r.City)
		out.State = firstString(out.State, r.State)
		out.PostalCode = firstString(out.PostalCode, r.PostalCode)
		out.Country = firstString(out.Country, r.Country)
		out.County = firstString(out.County, r.County)
		out.CountyFIPS = firstString(out.CountyFIPS, r.CountyFIPS)
		out.NAICSCode = firstString(out.NAICSCode, r.NAICSCode)
		out.Industry = firstString(out.Industry, r.Industry)
		if out.BusinessSize == "" {
			out.BusinessSize = r.BusinessSize
		}
		out.FoundedYear = firstInt(out.FoundedYear, r.FoundedYear)
		out.YearsInBusiness = firstInt(out.YearsInBusiness, r.YearsInBusiness)
		out.EmployeeCount = firstInt(out.EmployeeCount, r.EmployeeCount)
		out.AnnualRevenueUSD = firstInt64(out.AnnualRevenueUSD, r.AnnualRevenueUSD)
		out.IsSmallBusiness = firstBool(out.IsSmallBusiness, r.IsSmallBusiness)

		if r.Source != "" && !containsString(sources, r.Source) {
			sources = append(sources, r.Source)
		}
		if r.LastVerified.After(freshest) {
			freshest = r.LastVerified
		}
	}

	out.Source = strings.Join(sources, ",")
	out.LastVerified = freshest
	return out
}

// mergeRFPCluster builds the single output record for an RFP cluster under
// the same precedence policy.
func mergeRFPCluster(records []model.RFPRecord, ordered []int) model.RFPRecord {
	var out model.RFPRecord
	var sources []string
	var freshest time.Time

	for _, i := range ordered {
		r := records[i]
		out.NoticeID = firstString(out.NoticeID, r.NoticeID)
		out.Title = firstString(out.Title, r.Title)
		out.Agency = firstString(out.Agency, r.Agency)
		out.NAICS = firstString(out.NAICS, r.NAICS)
		out.SolicitationNumber = firstString(out.SolicitationNumber, r.SolicitationNumber)
		out.NoticeType = firstString(out.NoticeType, r.NoticeType)
		out.PlaceOfPerformanceState = firstString(out.PlaceOfPerformanceState, r.PlaceOfPerformanceState)
		out.Description = firstString(out.Description, r.Description)
		out.URL = firstString(out.URL, r.URL)
		out.ContactName = firstString(out.ContactName, r.ContactName)
		out.ContactEmail = firstString(out.ContactEmail, r.ContactEmail)
		out.EstimatedValue = firstString(out.EstimatedValue, r.EstimatedValue)
		out.PostedDate = firstTime(out.PostedDate, r.PostedDate)
		out.CloseDate = firstTime(out.CloseDate, r.CloseDate)

		if r.Source != "" && !containsString(sources, r.Source) {
			sources = append(sources, r.Source)
		}
		if r.LastChecked.After(freshest) {
			freshest = r.LastChecked
		}
	}

	out.Source = strings.Join(sources, ",")
	out.LastChecked = freshest
	return out
}

func firstString(cur, next string) string {
	if cur != "" {
		return cur
	}
	return next
}

func firstInt(cur, next *int) *int {
	if cur != nil {
		return cur
	}
	return next
}

func firstInt64(cur, next *int64) *int64 {
	if cur != nil {
		return cur
	}
	return next
}

func firstBool(cur, next *bool) *bool {
	if cur != nil {
		return cur
	}
	return next
}

func firstTime(cur, next *time.Time) *time.Time {
	if cur != nil {
		return cur
	}
	return next
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
