package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioLens/internal/model"
)

func TestSMA(t *testing.T) {
	v, err := SMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = SMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = SMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
	}
	rsi, err := RSI(up, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	mixed := []float64{44, 44.3, 44.1, 44.5, 43.9, 44.6, 45.1, 45.4, 45.2, 45.8, 46.1, 45.9, 46.3, 46.2, 46.5, 46.0}
	rsi, err = RSI(mixed, 14)
	require.NoError(t, err)
	assert.Greater(t, rsi, 50.0)
	assert.Less(t, rsi, 100.0)

	_, err = RSI(up[:10], 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestHighLowAndPosition(t *testing.T) {
	bars := []model.OHLCV{
		{High: 10, Low: 8},
		{High: 15, Low: 9},
		{High: 12, Low: 7},
	}
	h, l, err := HighLow(bars, 2)
	require.NoError(t, err)
	assert.Equal(t, 15.0, h)
	assert.Equal(t, 7.0, l)

	h, l, err = Range52Week(bars)
	require.NoError(t, err)
	assert.Equal(t, 15.0, h)
	assert.Equal(t, 7.0, l)

	pos, err := RangePosition(11, 15, 7)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pos, 1e-12)

	pos, err = RangePosition(20, 15, 7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)

	_, err = RangePosition(5, 5, 5)
	assert.ErrorIs(t, err, ErrDivisionUndefined)

	_, _, err = HighLow(nil, 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPercentChange(t *testing.T) {
	v, err := PercentChange(110, 100)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-12)

	_, err = PercentChange(110, 0)
	assert.ErrorIs(t, err, ErrDivisionUndefined)
}
