package model

import "time"

// RFPRecord is the canonical representation of a solicitation notice.
// Date fields are date-precision; nil means the source did not supply one.
type RFPRecord struct {
	NoticeID                string     `json:"notice_id"`
	Title                   string     `json:"title"`
	Agency                  string     `json:"agency,omitempty"`
	NAICS                   string     `json:"naics,omitempty"`
	SolicitationNumber      string     `json:"solicitation_number,omitempty"`
	NoticeType              string     `json:"notice_type,omitempty"`
	PostedDate              *time.Time `json:"posted_date,omitempty"`
	CloseDate               *time.Time `json:"close_date,omitempty"`
	PlaceOfPerformanceState string     `json:"place_of_performance_state,omitempty"`
	Description             string     `json:"description,omitempty"`
	URL                     string     `json:"url,omitempty"`
	ContactName             string     `json:"contact_name,omitempty"`
	ContactEmail            string     `json:"contact_email,omitempty"`
	EstimatedValue          string     `json:"estimated_value,omitempty"`
	Source                  string     `json:"source"`
	LastChecked             time.Time  `json:"last_checked"`
	QualityScore            int        `json:"quality_score"`
}

// HasIdentity reports whether the record carries at least one
// identity-relevant field usable for matching.
func (r RFPRecord) HasIdentity() bool {
	return r.NoticeID != "" || r.SolicitationNumber != "" || r.Title != "" || r.Agency != ""
}

// Completeness counts populated fields. Used as the second merge tie-break
// after source priority.
func (r RFPRecord) Completeness() int {
	n := 0
	for _, s := range []string{
		r.NoticeID, r.Title, r.Agency, r.NAICS, r.SolicitationNumber,
		r.NoticeType, r.PlaceOfPerformanceState, r.Description, r.URL,
		r.ContactName, r.ContactEmail, r.EstimatedValue,
	} {
		if s != "" {
			n++
		}
	}
	if r.PostedDate != nil {
		n++
	}
	if r.CloseDate != nil {
		n++
	}
	return n
}
