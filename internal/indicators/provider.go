package indicators

import (
	"context"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"rotor/internal/domain"
	"rotor/pkg/formulas"
)

// Provider supplies the point-in-time indicator snapshot bundle the
// engine evaluates against. Implementations must set Ready=false for
// any series that is not warmed up instead of fabricating values.
type Provider interface {
	Snapshots(ctx context.Context, symbols []string, asOf time.Time) (domain.SnapshotSet, error)
}

// BarSource supplies close-price history, oldest first, up to asOf.
type BarSource interface {
	Closes(ctx context.Context, symbol string, n int, asOf time.Time) ([]float64, error)
}

// Windows holds the indicator lookback lengths in trading days.
type Windows struct {
	Trend      int
	Momentum   int
	Volatility int
}

// required returns the minimum series length for a fully-ready snapshot.
// Momentum and volatility need lookback+1 observations for the lagged value.
func (w Windows) required() int {
	n := w.Trend
	if w.Momentum+1 > n {
		n = w.Momentum + 1
	}
	if w.Volatility+1 > n {
		n = w.Volatility + 1
	}
	return n
}

// TalibProvider computes snapshots from a BarSource using talib for the
// trend reference and momentum, and gonum-backed formulas for volatility.
type TalibProvider struct {
	src     BarSource
	windows Windows
	log     zerolog.Logger
}

// NewTalibProvider creates a snapshot provider over the given bar source.
func NewTalibProvider(src BarSource, windows Windows, log zerolog.Logger) *TalibProvider {
	return &TalibProvider{
		src:     src,
		windows: windows,
		log:     log.With().Str("component", "indicators").Logger(),
	}
}

// Snapshots produces a fresh SnapshotSet for the tick. A symbol whose
// history is short or whose latest price is non-positive gets a
// not-ready snapshot; it never aborts the set for other symbols.
func (p *TalibProvider) Snapshots(ctx context.Context, symbols []string, asOf time.Time) (domain.SnapshotSet, error) {
	need := p.windows.required()
	set := make(domain.SnapshotSet, len(symbols))

	for _, symbol := range symbols {
		closes, err := p.src.Closes(ctx, symbol, need, asOf)
		if err != nil {
			return nil, err
		}

		snap, ok := p.compute(closes)
		if !ok {
			p.log.Debug().Str("symbol", symbol).Int("bars", len(closes)).Msg("Series not ready")
		}
		set[symbol] = snap
	}

	return set, nil
}

func (p *TalibProvider) compute(closes []float64) (domain.Snapshot, bool) {
	if len(closes) < p.windows.required() {
		return domain.Snapshot{}, false
	}

	price := closes[len(closes)-1]
	if price <= 0 {
		return domain.Snapshot{}, false
	}

	sma := talib.Sma(closes, p.windows.Trend)
	trendRef := sma[len(sma)-1]

	// talib ROC is in percent; the engine works in fractions.
	roc := talib.Roc(closes, p.windows.Momentum)
	momentum := roc[len(roc)-1] / 100.0

	volWindow := closes[len(closes)-p.windows.Volatility-1:]
	volatility := formulas.AnnualizedVolatility(formulas.Returns(volWindow))

	return domain.Snapshot{
		Price:      price,
		TrendRef:   trendRef,
		Momentum:   momentum,
		Volatility: volatility,
		Ready:      true,
	}, true
}
