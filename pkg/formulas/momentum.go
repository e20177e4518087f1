package formulas

// LookbackReturn calculates the total return over the last n periods.
// Requires n+1 observations; returns nil when the window is not covered
// or the lagged price is non-positive.
func LookbackReturn(prices []float64, n int) *float64 {
	if n <= 0 || len(prices) < n+1 {
		return nil
	}

	base := prices[len(prices)-1-n]
	if base <= 0 {
		return nil
	}

	r := (prices[len(prices)-1] - base) / base
	return &r
}

// MaxDrawdown calculates the maximum peak-to-trough decline of a price
// series as a positive fraction (0.25 = 25% loss from peak), or nil when
// the series is too short.
func MaxDrawdown(prices []float64) *float64 {
	if len(prices) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := prices[0]

	for _, price := range prices {
		if price > peak {
			peak = price
		}
		if peak > 0 {
			drawdown := (peak - price) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return &maxDrawdown
}
