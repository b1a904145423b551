package engine

import "github.com/rotisserie/eris"

// BusinessWeights holds the per-signal weights for business similarity.
// Weights need not sum to 1: the weighted sum is renormalized over the
// signals where both records have data.
type BusinessWeights struct {
	Domain  float64 `yaml:"domain" mapstructure:"domain"`
	Phone   float64 `yaml:"phone" mapstructure:"phone"`
	Name    float64 `yaml:"name" mapstructure:"name"`
	Address float64 `yaml:"address" mapstructure:"address"`
}

// RFPWeights holds the per-signal weights for RFP similarity. A notice-id
// exact match bypasses the weighted sum entirely and forces a merge.
type RFPWeights struct {
	Title      float64 `yaml:"title" mapstructure:"title"`
	Agency     float64 `yaml:"agency" mapstructure:"agency"`
	PostedDate float64 `yaml:"posted_date" mapstructure:"posted_date"`
}

// Config is the explicit configuration consumed by the engine. It is always
// passed in at construction; the engine never reads ambient state.
type Config struct {
	// MergeThreshold is the minimum similarity at which two records are
	// considered the same entity. Calibrated so that a domain-or-phone-only
	// match passes but a generic name-similarity-only match does not.
	MergeThreshold float64 `yaml:"merge_threshold" mapstructure:"merge_threshold"`

	Business BusinessWeights `yaml:"business_weights" mapstructure:"business_weights"`
	RFP      RFPWeights      `yaml:"rfp_weights" mapstructure:"rfp_weights"`

	// SourcePriority ranks source tags most-authoritative first for field
	// merging. Sources not listed rank after all listed ones.
	SourcePriority []string `yaml:"source_priority" mapstructure:"source_priority"`

	// NamePrefixLen is the length of the normalized-name prefix used as a
	// blocking key (combined with state for business records).
	NamePrefixLen int `yaml:"name_prefix_len" mapstructure:"name_prefix_len"`

	// StreetThreshold is the street-line fuzzy sub-threshold for the
	// address signal.
	StreetThreshold float64 `yaml:"street_threshold" mapstructure:"street_threshold"`

	// Workers caps the number of concurrent pair-scoring goroutines.
	// Zero means GOMAXPROCS.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the calibrated default engine configuration.
func DefaultConfig() Config {
	return Config{
		MergeThreshold: 0.80,
		Business: BusinessWeights{
			Domain:  0.70,
			Phone:   0.40,
			Name:    0.15,
			Address: 0.15,
		},
		RFP: RFPWeights{
			Title:      0.50,
			Agency:     0.30,
			PostedDate: 0.20,
		},
		SourcePriority:  []string{"state_registry", "nppes", "opencorporates", "sam.gov", "grants.gov"},
		NamePrefixLen:   4,
		StreetThreshold: 0.80,
	}
}

// Validate rejects configurations the engine cannot run with. Called once at
// engine construction, before any clustering work.
func (c Config) Validate() error {
	if c.MergeThreshold < 0 || c.MergeThreshold > 1 {
		return eris.Errorf("engine: merge threshold %.3f outside [0,1]", c.MergeThreshold)
	}
	if len(c.SourcePriority) == 0 {
		return eris.New("engine: source priority list is empty")
	}
	for _, w := range []float64{
		c.Business.Domain, c.Business.Phone, c.Business.Name, c.Business.Address,
		c.RFP.Title, c.RFP.Agency, c.RFP.PostedDate,
	} {
		if w < 0 {
			return eris.New("engine: signal weights must be non-negative")
		}
	}
	if c.Business.Domain+c.Business.Phone+c.Business.Name+c.Business.Address == 0 {
		return eris.New("engine: business weights sum to zero")
	}
	if c.RFP.Title+c.RFP.Agency+c.RFP.PostedDate == 0 {
		return eris.New("engine: rfp weights sum to zero")
	}
	if c.StreetThreshold < 0 || c.StreetThreshold > 1 {
		return eris.Errorf("engine: street threshold %.3f outside [0,1]", c.StreetThreshold)
	}
	if c.NamePrefixLen < 0 {
		return eris.New("engine: name prefix length must be non-negative")
	}
	return nil
}

// sourceRank returns the precedence rank of a source tag, lower first.
// Unlisted sources share the rank after the last listed one.
func (c Config) sourceRank(source string) int {
	for i, s := range c.SourcePriority {
		if s == source {
			return i
		}
	}
	return len(c.SourcePriority)
}
