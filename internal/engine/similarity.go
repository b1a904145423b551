package engine

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/dataforge/dataforge-cli/internal/model"
	"github.com/dataforge/dataforge-cli/internal/normalize"
)

// Match is a scored candidate pair: the similarity in [0,1] plus the
// per-signal contributions that produced it. Created transiently during
// scoring, consumed by the cluster resolver, never persisted.
type Match struct {
	A, B    int
	Score   float64
	Signals map[string]float64
}

// BusinessSimilarity computes the confidence that two business records
// denote the same entity. Each signal is normalized to [0,1] and the
// weighted sum is renormalized over signals where both records have data,
// so sparse records are compared fairly on what they share. If the records
// share no identity-relevant fields the similarity is 0: absence of
// information never merges.
func BusinessSimilarity(a, b model.BusinessRecord, cfg Config) (float64, map[string]float64) {
	signals := make(map[string]float64)
	var weightSum, scoreSum float64

	if da, db := normalize.Domain(a.Domain), normalize.Domain(b.Domain); da != "" && db != "" {
		v := 0.0
		if da == db {
			v = 1.0
		}
		signals["domain"] = v
		weightSum += cfg.Business.Domain
		scoreSum += cfg.Business.Domain * v
	}

	if pa, pb := normalize.PhoneDigits(a.Phone), normalize.PhoneDigits(b.Phone); pa != "" && pb != "" {
		v := 0.0
		if pa == pb {
			v = 1.0
		}
		signals["phone"] = v
		weightSum += cfg.Business.Phone
		scoreSum += cfg.Business.Phone * v
	}

	if na, nb := normalize.MatchName(a.CompanyName), normalize.MatchName(b.CompanyName); na != "" && nb != "" {
		v := nameSimilarity(na, nb)
		signals["name"] = v
		weightSum += cfg.Business.Name
		scoreSum += cfg.Business.Name * v
	}

	if bothHaveCityState(a, b) {
		v := addressSignal(a, b, cfg.StreetThreshold)
		signals["address"] = v
		weightSum += cfg.Business.Address
		scoreSum += cfg.Business.Address * v
	}

	if weightSum == 0 {
		return 0, signals
	}
	return scoreSum / weightSum, signals
}

// RFPSimilarity computes the confidence that two RFP records denote the
// same solicitation. A notice-id exact match forces a merge; otherwise
// title fuzzy similarity, agency exact match, and posted-date proximity
// combine under the same renormalized weighted sum as business records.
func RFPSimilarity(a, b model.RFPRecord, cfg Config) (float64, map[string]float64) {
	if a.NoticeID != "" && b.NoticeID != "" && a.NoticeID == b.NoticeID {
		return 1.0, map[string]float64{"notice_id": 1.0}
	}

	signals := make(map[string]float64)
	var weightSum, scoreSum float64

	if ta, tb := normalize.MatchName(a.Title), normalize.MatchName(b.Title); ta != "" && tb != "" {
		v := nameSimilarity(ta, tb)
		signals["title"] = v
		weightSum += cfg.RFP.Title
		scoreSum += cfg.RFP.Title * v
	}

	if aa, ab := normalize.MatchName(a.Agency), normalize.MatchName(b.Agency); aa != "" && ab != "" {
		v := 0.0
		if aa == ab {
			v = 1.0
		}
		signals["agency"] = v
		weightSum += cfg.RFP.Agency
		scoreSum += cfg.RFP.Agency * v
	}

	if a.PostedDate != nil && b.PostedDate != nil {
		v := 0.0
		if sameDay(*a.PostedDate, *b.PostedDate) {
			v = 1.0
		}
		signals["posted_date"] = v
		weightSum += cfg.RFP.PostedDate
		scoreSum += cfg.RFP.PostedDate * v
	}

	if weightSum == 0 {
		return 0, signals
	}
	return scoreSum / weightSum, signals
}

// nameSimilarity blends order-independent token overlap with an
// edit-distance ratio on the normalized strings. Both inputs are already
// in matching form (lower-cased, suffix-stripped), so "Acme LLC" and
// "Acme Corp" arrive here as the same string.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return 0.5*tokenJaccard(a, b) + 0.5*levRatio(a, b)
}

// tokenJaccard is intersection-over-union of whitespace-split token sets.
func tokenJaccard(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// levRatio converts Levenshtein distance to a similarity in [0,1].
func levRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}

func bothHaveCityState(a, b model.BusinessRecord) bool {
	return a.City != "" && a.State != "" && b.City != "" && b.State != ""
}

// addressSignal matches when city and state agree and either the postal
// codes agree or the street lines are fuzzily similar above the
// sub-threshold.
func addressSignal(a, b model.BusinessRecord, streetThreshold float64) float64 {
	if !strings.EqualFold(a.City, b.City) || !strings.EqualFold(a.State, b.State) {
		return 0
	}
	if a.PostalCode != "" && b.PostalCode != "" && a.PostalCode == b.PostalCode {
		return 1.0
	}
	if a.AddressLine1 != "" && b.AddressLine1 != "" {
		sa := strings.ToLower(normalize.String(a.AddressLine1))
		sb := strings.ToLower(normalize.String(b.AddressLine1))
		if levRatio(sa, sb) >= streetThreshold {
			return 1.0
		}
	}
	return 0
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
