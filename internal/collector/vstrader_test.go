package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioLens/internal/calculator"
)

func TestVsTraderFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
			assert.Equal(t, "2024-01-05", r.URL.Query().Get("to"))
			_, _ = w.Write([]byte(`[{"timestamp":1704378600,"close":12},{"timestamp":1704205800,"close":10}]`))
		case "/api/v1/quote":
			_, _ = w.Write([]byte(`{"price":12.5,"previous_close":12}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "secret", "")
	ctx := context.Background()

	bars, err := f.FetchHistory(ctx, "AAA",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 12.0, bars[1].Close)

	q, err := f.FetchQuote(ctx, "AAA")
	require.NoError(t, err)
	assert.Equal(t, 12.5, q.Price)
	assert.Equal(t, 12.0, q.PreviousClose)
}

func TestVsTraderFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "", "")
	_, err := f.FetchQuote(context.Background(), "AAA")
	assert.ErrorContains(t, err, "status 502")
}

func TestVsTraderFetchQuote_PreviousClose(t *testing.T) {
	body := `{"price":12.5}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	f := NewVsTraderFetcher(srv.URL, "", "")

	_, err := f.FetchQuote(context.Background(), "AAA")
	assert.ErrorIs(t, err, calculator.ErrMissing)

	body = `{"price":12.5,"previous_close":0}`
	q, err := f.FetchQuote(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.PreviousClose)
}
