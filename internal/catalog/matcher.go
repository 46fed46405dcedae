// internal/catalog/matcher.go
package catalog

// MatchQuery carries the tracked-book fields the matcher compares
// against provider results.
type MatchQuery struct {
	Title       string
	Identifiers []string
}

// Match selects the single catalog entry corresponding to the query, or
// reports unmatched. Identifier intersection is tried first because
// catalog editions diverge from tracked editions in title formatting far
// more often than in identifier; normalized-title equality is the
// fallback for books with no known identifiers. Within a strategy the
// first result in provider order wins. Unmatched is never replaced with
// the first result: a wrong link is worse than no link.
func Match(q MatchQuery, results []SearchResult) MatchDecision {
	if len(q.Identifiers) > 0 {
		want := make(map[string]struct{}, len(q.Identifiers))
		for _, id := range q.Identifiers {
			want[id] = struct{}{}
		}
		for i := range results {
			for _, id := range results[i].Identifiers() {
				if _, ok := want[id]; ok {
					return MatchDecision{
						Matched:  true,
						Result:   &results[i],
						Strategy: MatchByIdentifier,
					}
				}
			}
		}
	}

	wantTitle := NormalizeTitle(q.Title)
	if wantTitle != "" {
		for i := range results {
			if NormalizeTitle(results[i].Title) == wantTitle {
				return MatchDecision{
					Matched:  true,
					Result:   &results[i],
					Strategy: MatchByNormalizedTitle,
				}
			}
		}
	}

	return MatchDecision{}
}
