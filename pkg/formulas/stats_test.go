package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	rets := Returns([]float64{100, 110, 99})
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0], 1e-9)
	assert.InDelta(t, -0.10, rets[1], 1e-9)
}

func TestReturns_ShortOrDegenerateSeries(t *testing.T) {
	assert.Empty(t, Returns([]float64{100}))
	assert.Empty(t, Returns(nil))
}

func TestAnnualizedVolatility(t *testing.T) {
	// Flat returns have zero volatility at any annualization.
	assert.InDelta(t, 0.0, AnnualizedVolatility([]float64{0.01, 0.01, 0.01}), 1e-9)

	rets := []float64{0.01, -0.02, 0.015, -0.005}
	daily := StdDev(rets)
	assert.InDelta(t, daily*math.Sqrt(252), AnnualizedVolatility(rets), 1e-9)
}

func TestLookbackReturn(t *testing.T) {
	prices := []float64{100, 105, 110, 121}

	r := LookbackReturn(prices, 3)
	require.NotNil(t, r)
	assert.InDelta(t, 0.21, *r, 1e-9)

	// Needs n+1 observations.
	assert.Nil(t, LookbackReturn(prices, 4))
	assert.Nil(t, LookbackReturn([]float64{0, 110}, 1))
}

func TestMaxDrawdown(t *testing.T) {
	prices := []float64{100, 120, 90, 95, 130}

	dd := MaxDrawdown(prices)
	require.NotNil(t, dd)
	assert.InDelta(t, 0.25, *dd, 1e-9)
}
