// Package news fetches company news from Finnhub.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"PortfolioLens/internal/model"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// ErrNoAPIKey is returned when the client has no Finnhub token.
var ErrNoAPIKey = errors.New("finnhub api key not configured")

// Client fetches company news from the Finnhub REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Finnhub news client.
func New(apiKey string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: finnhubBaseURL,
		http:    httpClient,
		log:     log.With().Str("client", "finnhub").Logger(),
	}
}

type fhArticle struct {
	ID        int64  `json:"id"`
	Category  string `json:"category"`
	Datetime  int64  `json:"datetime"` // unix seconds
	Headline  string `json:"headline"`
	Image     string `json:"image"`
	Related   string `json:"related"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Sentiment string `json:"sentiment"`
}

// CompanyNews returns the articles about symbol published between from and to, newest first.
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]model.Article, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("from", from.Format(time.DateOnly))
	params.Set("to", to.Format(time.DateOnly))
	params.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/company-news?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub company-news: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("finnhub company-news: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw []fhArticle
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("finnhub decode: %w", err)
	}

	out := make([]model.Article, 0, len(raw))
	for _, a := range raw {
		if a.Headline == "" {
			continue
		}
		out = append(out, model.Article{
			ID:        a.ID,
			Headline:  a.Headline,
			Summary:   a.Summary,
			Source:    a.Source,
			URL:       a.URL,
			Published: time.Unix(a.Datetime, 0).UTC(),
			Sentiment: a.Sentiment,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Published.After(out[j].Published) })
	c.log.Debug().Str("symbol", symbol).Int("articles", len(out)).Msg("company news fetched")
	return out, nil
}
