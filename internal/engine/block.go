package engine

import (
	"sort"

	"github.com/dataforge/dataforge-cli/internal/model"
	"github.com/dataforge/dataforge-cli/internal/normalize"
)

// buildBlocks groups record indices into comparison buckets keyed by coarse
// blocking attributes. A record may appear under several keys; records with
// no usable blocking field appear under none and therefore surface as
// singleton clusters without any comparison. Pure function of the input.
func buildBlocks(n int, keysFor func(i int) []string) map[string][]int {
	blocks := make(map[string][]int)
	for i := 0; i < n; i++ {
		for _, k := range keysFor(i) {
			blocks[k] = append(blocks[k], i)
		}
	}
	return blocks
}

// pair is an unordered candidate comparison with a < b.
type pair struct {
	a, b int
}

// candidatePairs expands buckets into the deduplicated set of pairs to
// score. Comparison is exhaustive within a bucket; a pair sharing two keys
// is still scored once. The result is sorted for deterministic scoring
// order regardless of map iteration.
func candidatePairs(blocks map[string][]int) []pair {
	seen := make(map[pair]struct{})
	for _, idxs := range blocks {
		for x := 0; x < len(idxs); x++ {
			for y := x + 1; y < len(idxs); y++ {
				p := pair{idxs[x], idxs[y]}
				if p.a > p.b {
					p.a, p.b = p.b, p.a
				}
				seen[p] = struct{}{}
			}
		}
	}
	pairs := make([]pair, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	return pairs
}

// businessKeys derives the blocking keys for a business record: domain,
// phone digits, and normalized-name prefix + state. The key namespace is
// prefixed so distinct attributes never collide in one bucket.
func businessKeys(r model.BusinessRecord, prefixLen int) []string {
	var keys []string
	if d := normalize.Domain(r.Domain); d != "" {
		keys = append(keys, "domain:"+d)
	}
	if p := normalize.PhoneDigits(r.Phone); p != "" {
		keys = append(keys, "phone:"+p)
	}
	if name := normalize.MatchName(r.CompanyName); name != "" && r.State != "" {
		prefix := name
		if prefixLen > 0 && len(prefix) > prefixLen {
			prefix = prefix[:prefixLen]
		}
		keys = append(keys, "name:"+prefix+"|"+r.State)
	}
	return keys
}

// rfpKeys derives the blocking keys for an RFP record: notice id,
// solicitation number, and title prefix + agency.
func rfpKeys(r model.RFPRecord, prefixLen int) []string {
	var keys []string
	if r.NoticeID != "" {
		keys = append(keys, "notice:"+r.NoticeID)
	}
	if r.SolicitationNumber != "" {
		keys = append(keys, "sol:"+r.SolicitationNumber)
	}
	if title := normalize.MatchName(r.Title); title != "" && r.Agency != "" {
		prefix := title
		if prefixLen > 0 && len(prefix) > prefixLen {
			prefix = prefix[:prefixLen]
		}
		keys = append(keys, "title:"+prefix+"|"+normalize.MatchName(r.Agency))
	}
	return keys
}
