// internal/catalog/domain.go
package catalog

// Format is one edition/format attached to a catalog entry.
type Format struct {
	Name string `json:"name,omitempty"`
	ISBN string `json:"isbn,omitempty"`
}

// SearchResult is one entry returned by the catalog provider for a
// title query. Results are transient: they live for one reconciliation
// pass and are never persisted.
type SearchResult struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Formats         []Format `json:"formats,omitempty"`
	IsAvailable     bool     `json:"is_available"`
	IsHoldable      bool     `json:"is_holdable"`
	AvailableCopies int      `json:"available_copies"`
	HoldCount       int      `json:"hold_count"`
}

// Identifiers returns the non-empty identifiers across the result's
// formats.
func (r *SearchResult) Identifiers() []string {
	var ids []string
	for _, f := range r.Formats {
		if f.ISBN != "" {
			ids = append(ids, f.ISBN)
		}
	}
	return ids
}

// MatchStrategy names what produced a match.
type MatchStrategy string

const (
	MatchByIdentifier      MatchStrategy = "identifier"
	MatchByNormalizedTitle MatchStrategy = "normalized-title"
)

// MatchDecision is the matcher's output. The zero value is unmatched;
// unmatched is final and never defaults to an arbitrary result.
type MatchDecision struct {
	Matched  bool
	Result   *SearchResult
	Strategy MatchStrategy
}
