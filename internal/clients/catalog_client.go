// internal/clients/catalog_client.go
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"shelfwatch/internal/catalog"
)

// ErrMalformedResponse marks a provider payload missing a required
// field. The caller treats it like any other search failure: matching
// never sees a half-parsed result.
var ErrMalformedResponse = errors.New("malformed catalog response")

// CatalogClient queries the external library-availability provider.
// One search is one HTTP call; the circuit breaker trips after repeated
// consecutive failures so a throttling provider is not hammered for the
// rest of a batch.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "catalog-search",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Search queries the provider by title. An empty items array is a valid
// "no results" outcome, not a failure.
func (c *CatalogClient) Search(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return out.([]catalog.SearchResult), nil
}

func (c *CatalogClient) search(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	searchURL := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search: unexpected status code: %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	results := make([]catalog.SearchResult, 0, len(payload.Items))
	for i, item := range payload.Items {
		result, err := item.toSearchResult()
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedResponse, i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// searchResponse mirrors the provider's wire shape. Required fields are
// pointers so an absent field is distinguishable from a zero value and
// the parse fails closed.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID              *string        `json:"id"`
	Title           *string        `json:"title"`
	IsAvailable     *bool          `json:"isAvailable"`
	IsHoldable      *bool          `json:"isHoldable"`
	AvailableCopies *int           `json:"availableCopies"`
	HoldsCount      int            `json:"holdsCount"`
	Formats         []searchFormat `json:"formats"`
}

type searchFormat struct {
	Name string `json:"name"`
	ISBN string `json:"isbn"`
}

func (it searchItem) toSearchResult() (catalog.SearchResult, error) {
	switch {
	case it.ID == nil || *it.ID == "":
		return catalog.SearchResult{}, errors.New("missing id")
	case it.Title == nil:
		return catalog.SearchResult{}, errors.New("missing title")
	case it.IsAvailable == nil:
		return catalog.SearchResult{}, errors.New("missing isAvailable")
	case it.IsHoldable == nil:
		return catalog.SearchResult{}, errors.New("missing isHoldable")
	case it.AvailableCopies == nil:
		return catalog.SearchResult{}, errors.New("missing availableCopies")
	}

	result := catalog.SearchResult{
		ID:              *it.ID,
		Title:           *it.Title,
		IsAvailable:     *it.IsAvailable,
		IsHoldable:      *it.IsHoldable,
		AvailableCopies: *it.AvailableCopies,
		HoldCount:       it.HoldsCount,
	}
	for _, f := range it.Formats {
		result.Formats = append(result.Formats, catalog.Format{Name: f.Name, ISBN: f.ISBN})
	}
	return result, nil
}
