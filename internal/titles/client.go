package titles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 10 * time.Second

	// Only the leading search results are enriched with full details.
	detailEnrichmentLimit = 5
)

var (
	// ErrTitleNotFound indicates the upstream API has no record for the query.
	ErrTitleNotFound = errors.New("titles: title not found")
	// ErrUpstreamUnauthorized indicates the upstream API rejected the key.
	ErrUpstreamUnauthorized = errors.New("titles: upstream rejected api key")
	// ErrUpstreamUnavailable indicates the upstream API could not be reached.
	ErrUpstreamUnavailable = errors.New("titles: upstream unavailable")
)

// ClientConfig configures the WatchMode read-through client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a stateless read-through proxy to the WatchMode API. Search
// results are enriched with per-title details on a best-effort basis; a
// failed detail fetch never fails the search.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a WatchMode client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("titles: api key required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("titles: base url required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// SearchTitles queries the upstream search endpoint and fans out detail
// fetches for the leading title results.
func (c *Client) SearchTitles(ctx context.Context, searchValue, searchField string) (SearchResponse, error) {
	if searchField == "" {
		searchField = "name"
	}
	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("search_field", searchField)
	query.Set("search_value", searchValue)

	var response SearchResponse
	if err := c.get(ctx, "/search?"+query.Encode(), &response); err != nil {
		return SearchResponse{}, err
	}

	limit := len(response.TitleResults)
	if limit > detailEnrichmentLimit {
		limit = detailEnrichmentLimit
	}

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		if response.TitleResults[i].ID == 0 {
			continue
		}
		wg.Add(1)
		go func(result *SearchResult) {
			defer wg.Done()
			details, err := c.TitleDetails(ctx, result.ID)
			if err != nil {
				c.logger.Warn("title detail enrichment failed",
					zap.Int("title_id", result.ID),
					zap.Error(err))
				return
			}
			result.Details = &details
		}(&response.TitleResults[i])
	}
	wg.Wait()

	return response, nil
}

// TitleDetails fetches the full record for a title, including streaming sources.
func (c *Client) TitleDetails(ctx context.Context, titleID int) (TitleDetails, error) {
	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("append_to_response", "sources")

	var details TitleDetails
	path := "/title/" + strconv.Itoa(titleID) + "/details?" + query.Encode()
	if err := c.get(ctx, path, &details); err != nil {
		if errors.Is(err, ErrTitleNotFound) {
			return TitleDetails{}, fmt.Errorf("%w: id %d", ErrTitleNotFound, titleID)
		}
		return TitleDetails{}, err
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return ErrTitleNotFound
	case response.StatusCode == http.StatusUnauthorized:
		return ErrUpstreamUnauthorized
	case response.StatusCode >= 400:
		return fmt.Errorf("%w: upstream status %d", ErrUpstreamUnavailable, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
