package sources

import (
	"context"
	"fmt"
	"time"

	"CryptoMarketBot/internal/models"
)

// CandleSource is the capability every venue adapter provides: fetch the
// single bucket ending at the given boundary, per timeframe, plus the
// current 24h ticker.
//
// Adapters query the upstream for exactly [end - width, end). A nil
// candle with a nil error means the bucket could not be filled this
// round — the venue had no data, or the call failed and was logged
// inside the adapter; callers treat both the same and retry on the next
// run. A non-nil error is reserved for context cancellation.
type CandleSource interface {
	FetchDailyKline(ctx context.Context, sym models.Symbol, endDate time.Time) (*models.Candle, error)
	FetchHourlyKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error)
	FetchFifteenMinKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error)
	FetchCurrentTicker(ctx context.Context, sym models.Symbol) (*models.TickerPrice, error)
}

// Registry resolves the adapter for a symbol's authoritative source.
// Built once at startup; lookups replace per-call-site enum branching.
type Registry struct {
	sources map[models.Source]CandleSource
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[models.Source]CandleSource)}
}

func (r *Registry) Register(id models.Source, src CandleSource) {
	r.sources[id] = src
}

// ForSymbol returns the adapter for the symbol's source. A missing
// mapping is a configuration error, not a data gap.
func (r *Registry) ForSymbol(sym models.Symbol) (CandleSource, error) {
	src, ok := r.sources[sym.SourceID]
	if !ok {
		return nil, fmt.Errorf("no candle source registered for %s (symbol %s)",
			sym.SourceID, sym.SymbolName)
	}
	return src, nil
}
