package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioLens/internal/calculator"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"currency":"USD","regularMarketPrice":191.5,"chartPreviousClose":189.0,
          "regularMarketDayHigh":192.0,"regularMarketDayLow":188.5,"regularMarketVolume":5000000,
          "fiftyTwoWeekHigh":199.6,"fiftyTwoWeekLow":164.1},
  "timestamp":[1704205800,1704292200,1704378600],
  "indicators":{"quote":[{
    "open":[187.1,null,182.1],"high":[188.4,null,183.0],"low":[183.8,null,180.8],
    "close":[185.6,null,181.9],"volume":[82488700,null,71983600]}]}}],"error":null}}`

func newYahooServer(t *testing.T, body string, status int) (*YahooFetcher, *url.URL) {
	t.Helper()
	var last url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r.URL
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, &last
}

func TestYahooFetchHistory(t *testing.T) {
	f, u := newYahooServer(t, chartJSON, http.StatusOK)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bars, err := f.FetchHistory(context.Background(), "SPX", from, to)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, 185.6, bars[0].Close)
	assert.Equal(t, 181.9, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))

	assert.Equal(t, "/v8/finance/chart/%5EGSPC", u.EscapedPath())
	assert.Equal(t, "1d", u.Query().Get("interval"))
	assert.Equal(t, "1704067200", u.Query().Get("period1"))
	assert.Equal(t, "1704499200", u.Query().Get("period2"))
}

func TestYahooFetchQuote(t *testing.T) {
	f, _ := newYahooServer(t, chartJSON, http.StatusOK)

	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 191.5, q.Price)
	assert.Equal(t, 189.0, q.PreviousClose)
	assert.Equal(t, 199.6, q.High52w)
	assert.Equal(t, "USD", q.Currency)
}

func TestYahooErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"http status", `oops`, http.StatusTooManyRequests},
		{"api error", `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, http.StatusOK},
		{"empty result", `{"chart":{"result":[],"error":null}}`, http.StatusOK},
		{"bad json", `{`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, _ := newYahooServer(t, tc.body, tc.status)
			_, err := f.FetchQuote(context.Background(), "XYZ")
			assert.Error(t, err)
		})
	}
}

func TestYahooFetchQuote_MissingVersusZeroPreviousClose(t *testing.T) {
	missing := `{"chart":{"result":[{"meta":{"regularMarketPrice":10}}],"error":null}}`
	f, _ := newYahooServer(t, missing, http.StatusOK)
	_, err := f.FetchQuote(context.Background(), "XYZ")
	assert.ErrorIs(t, err, calculator.ErrMissing)

	zero := `{"chart":{"result":[{"meta":{"regularMarketPrice":10,"chartPreviousClose":0}}],"error":null}}`
	f, _ = newYahooServer(t, zero, http.StatusOK)
	q, err := f.FetchQuote(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, 10.0, q.Price)
	assert.Equal(t, 0.0, q.PreviousClose)

	noPrice := `{"chart":{"result":[{"meta":{"chartPreviousClose":9}}],"error":null}}`
	f, _ = newYahooServer(t, noPrice, http.StatusOK)
	_, err = f.FetchQuote(context.Background(), "XYZ")
	assert.ErrorIs(t, err, calculator.ErrMissing)
}
