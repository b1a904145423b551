package model

// QAReport summarizes post-pipeline validation of an output set.
type QAReport struct {
	Passed    bool     `json:"passed"`
	TotalRows int      `json:"total_rows"`
	Dupes     int      `json:"dupes"`
	Errors    []string `json:"errors,omitempty"`
}
