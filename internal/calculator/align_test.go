package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioLens/internal/model"
)

func TestAlign_ForwardFillsUnionIndex(t *testing.T) {
	raw := map[string]model.PriceSeries{
		"AAA": datedSeries("AAA", pt(day(2024, 1, 1), 10), pt(day(2024, 1, 2), 11), pt(day(2024, 1, 4), 12)),
		"BBB": datedSeries("BBB", pt(day(2024, 1, 1), 20), pt(day(2024, 1, 3), 21), pt(day(2024, 1, 4), 22)),
	}

	set, err := Align(raw, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}, set.Index)
	assert.Equal(t, []float64{10, 11, 11, 12}, set.Values["AAA"])
	assert.Equal(t, []float64{20, 20, 21, 22}, set.Values["BBB"])
	assert.Empty(t, set.Dropped)
	for _, vals := range set.Values {
		assert.Len(t, vals, len(set.Index))
	}
}

func TestAlign_DropsTickerWithoutData(t *testing.T) {
	raw := map[string]model.PriceSeries{
		"AAA": {Symbol: "AAA"},
		"BBB": dailySeries("BBB", day(2024, 1, 1), 20, 21, 22),
	}

	set, err := Align(raw, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA"}, set.Dropped)
	assert.Equal(t, []string{"BBB"}, set.Tickers())
	assert.NotContains(t, set.Values, "AAA")
}

func TestAlign_RespectsRange(t *testing.T) {
	raw := map[string]model.PriceSeries{
		"AAA": dailySeries("AAA", day(2024, 1, 1), 1, 2, 3, 4, 5),
		"OLD": dailySeries("OLD", day(2023, 1, 1), 7, 8),
	}

	set, err := Align(raw, day(2024, 1, 2), day(2024, 1, 4))
	require.NoError(t, err)

	assert.Equal(t, []string{"OLD"}, set.Dropped)
	assert.Equal(t, []float64{2, 3, 4}, set.Values["AAA"])
}

func TestAlign_TrimsLeadingDatesWithoutLookAhead(t *testing.T) {
	raw := map[string]model.PriceSeries{
		"EARLY": dailySeries("EARLY", day(2024, 1, 1), 1, 2, 3, 4),
		"LATE":  dailySeries("LATE", day(2024, 1, 3), 30, 40),
	}

	set, err := Align(raw, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2024, 1, 3), day(2024, 1, 4)}, set.Index)
	assert.Equal(t, []float64{3, 4}, set.Values["EARLY"])
	assert.Equal(t, []float64{30, 40}, set.Values["LATE"])
}

func TestAlign_AllEmpty(t *testing.T) {
	raw := map[string]model.PriceSeries{"AAA": {Symbol: "AAA"}}
	_, err := Align(raw, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrAlignmentEmpty)

	_, err = Align(nil, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrAlignmentEmpty)
}

func TestAlign_Deterministic(t *testing.T) {
	raw := map[string]model.PriceSeries{
		"AAA": datedSeries("AAA", pt(day(2024, 1, 1), 10), pt(day(2024, 1, 5), 12)),
		"BBB": datedSeries("BBB", pt(day(2024, 1, 2), 20), pt(day(2024, 1, 3), 21)),
		"CCC": {Symbol: "CCC"},
	}
	first, err := Align(raw, time.Time{}, time.Time{})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Align(raw, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
