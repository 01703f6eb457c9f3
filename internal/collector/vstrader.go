package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PortfolioLens/internal/calculator"
	"PortfolioLens/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type vsQuote struct {
	Price         float64  `json:"price"`
	PreviousClose *float64 `json:"previous_close"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	High52w       float64  `json:"high_52w"`
	Low52w        float64  `json:"low_52w"`
	Volume        float64  `json:"volume"`
	Currency      string   `json:"currency"`
}

func (f *VsTraderFetcher) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s%s?%s", f.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("vstrader %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vstrader %s: status %d, body: %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vstrader %s decode: %w", path, err)
	}
	return nil
}

// FetchHistory returns the daily bars between from and to.
func (f *VsTraderFetcher) FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", model.Day(from).Format(time.DateOnly))
	params.Set("to", model.Day(to).Format(time.DateOnly))

	var vsBars []vsBar
	if err := f.get(ctx, "/api/v1/bars/daily", params, &vsBars); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, len(vsBars))
	for i, vb := range vsBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(vb.Timestamp, 0).UTC(),
			Open:   vb.Open,
			High:   vb.High,
			Low:    vb.Low,
			Close:  vb.Close,
			Volume: vb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// FetchQuote returns the latest quote for symbol.
func (f *VsTraderFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var q vsQuote
	if err := f.get(ctx, "/api/v1/quote", params, &q); err != nil {
		return model.Quote{}, err
	}
	if q.Price <= 0 {
		return model.Quote{}, fmt.Errorf("vstrader: price of %s: %w", symbol, calculator.ErrMissing)
	}
	if q.PreviousClose == nil {
		return model.Quote{}, fmt.Errorf("vstrader: previous close of %s: %w", symbol, calculator.ErrMissing)
	}
	return model.Quote{
		Symbol:        symbol,
		Price:         q.Price,
		PreviousClose: *q.PreviousClose,
		DayHigh:       q.High,
		DayLow:        q.Low,
		High52w:       q.High52w,
		Low52w:        q.Low52w,
		Volume:        q.Volume,
		Currency:      q.Currency,
		FetchedAt:     time.Now().UTC(),
	}, nil
}
