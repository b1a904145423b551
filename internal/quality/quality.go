// Package quality assigns each output record a deterministic 0-100 score
// reflecting completeness and verification status. Scoring is a pure
// function of the record and the penalty/bonus tables, so it is testable
// without running the cluster pipeline.
package quality

import (
	"net/mail"
	"regexp"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// BusinessPenalties are the per-missing-field deductions for business
// records. Deductions are additive and independent.
type BusinessPenalties struct {
	Domain     int `yaml:"domain" mapstructure:"domain"`
	Phone      int `yaml:"phone" mapstructure:"phone"`
	Email      int `yaml:"email" mapstructure:"email"`
	Address    int `yaml:"address" mapstructure:"address"`
	Industry   int `yaml:"industry" mapstructure:"industry"`
	SizeInputs int `yaml:"size_inputs" mapstructure:"size_inputs"`
}

// RFPPenalties are the per-missing-field deductions for RFP records.
type RFPPenalties struct {
	Title          int `yaml:"title" mapstructure:"title"`
	Agency         int `yaml:"agency" mapstructure:"agency"`
	CloseDate      int `yaml:"close_date" mapstructure:"close_date"`
	ContactEmail   int `yaml:"contact_email" mapstructure:"contact_email"`
	EstimatedValue int `yaml:"estimated_value" mapstructure:"estimated_value"`
}

// Bonuses are the additive credits for independently-verified signals.
type Bonuses struct {
	CountyFIPS int `yaml:"county_fips" mapstructure:"county_fips"`
	ValidEmail int `yaml:"valid_email" mapstructure:"valid_email"`
}

// Config holds the full scoring table. Passed in explicitly; never read
// from ambient state.
type Config struct {
	Business BusinessPenalties `yaml:"business" mapstructure:"business"`
	RFP      RFPPenalties      `yaml:"rfp" mapstructure:"rfp"`
	Bonus    Bonuses           `yaml:"bonus" mapstructure:"bonus"`
}

// DefaultConfig returns the default penalty/bonus table.
func DefaultConfig() Config {
	return Config{
		Business: BusinessPenalties{
			Domain:     20,
			Phone:      10,
			Email:      5,
			Address:    10,
			Industry:   10,
			SizeInputs: 10,
		},
		RFP: RFPPenalties{
			Title:          25,
			Agency:         20,
			CloseDate:      20,
			ContactEmail:   15,
			EstimatedValue: 10,
		},
		Bonus: Bonuses{
			CountyFIPS: 5,
			ValidEmail: 5,
		},
	}
}

var fipsPattern = regexp.MustCompile(`^\d{5}$`)

// ScoreBusiness computes the quality score for a merged business record:
// 100, minus a penalty per missing checklist field, plus a bonus per
// verified signal, clamped to [0,100].
func ScoreBusiness(r model.BusinessRecord, cfg Config) int {
	score := 100

	if r.Domain == "" {
		score -= cfg.Business.Domain
	}
	if r.Phone == "" {
		score -= cfg.Business.Phone
	}
	if r.Email == "" {
		score -= cfg.Business.Email
	}
	if !hasFullAddress(r) {
		score -= cfg.Business.Address
	}
	if r.NAICSCode == "" && r.Industry == "" {
		score -= cfg.Business.Industry
	}
	if r.EmployeeCount == nil && r.AnnualRevenueUSD == nil {
		score -= cfg.Business.SizeInputs
	}

	// Verification bonuses: a resolved county FIPS means the geocoder
	// confirmed the address; a parseable email passed syntax validation.
	if fipsPattern.MatchString(r.CountyFIPS) {
		score += cfg.Bonus.CountyFIPS
	}
	if ValidEmail(r.Email) {
		score += cfg.Bonus.ValidEmail
	}

	return clamp(score)
}

// ScoreRFP computes the quality score for a merged RFP record using the
// smaller solicitation checklist.
func ScoreRFP(r model.RFPRecord, cfg Config) int {
	score := 100

	if r.Title == "" {
		score -= cfg.RFP.Title
	}
	if r.Agency == "" {
		score -= cfg.RFP.Agency
	}
	if r.CloseDate == nil {
		score -= cfg.RFP.CloseDate
	}
	if r.ContactEmail == "" {
		score -= cfg.RFP.ContactEmail
	}
	if r.EstimatedValue == "" {
		score -= cfg.RFP.EstimatedValue
	}

	if ValidEmail(r.ContactEmail) {
		score += cfg.Bonus.ValidEmail
	}

	return clamp(score)
}

// ValidEmail reports whether s parses as a bare RFC 5322 address.
func ValidEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func hasFullAddress(r model.BusinessRecord) bool {
	return r.AddressLine1 != "" && r.City != "" && r.State != "" && r.PostalCode != ""
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
