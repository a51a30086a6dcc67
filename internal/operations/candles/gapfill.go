package candles

import (
	"context"
	"fmt"
	"sort"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/sources"
	"CryptoMarketBot/internal/timeframes"

	log "github.com/sirupsen/logrus"
)

// GapFiller fills missing candle buckets: it enumerates the expected
// boundaries of a range, reads what is already persisted, fetches only
// the missing buckets from the symbol's source and writes each one back
// as an idempotent upsert.
type GapFiller struct {
	registry *sources.Registry
	repos    map[timeframes.Timeframe]*repositories.CandleRepository
}

func NewGapFiller(registry *sources.Registry, repos ...*repositories.CandleRepository) *GapFiller {
	byTF := make(map[timeframes.Timeframe]*repositories.CandleRepository, len(repos))
	for _, r := range repos {
		byTF[r.Timeframe()] = r
	}
	return &GapFiller{registry: registry, repos: byTF}
}

func (g *GapFiller) repo(tf timeframes.Timeframe) (*repositories.CandleRepository, error) {
	r, ok := g.repos[tf]
	if !ok {
		return nil, fmt.Errorf("no candle repository for timeframe %s", tf)
	}
	return r, nil
}

// FetchRange returns every candle for the aligned [start, end] range,
// merging cache hits with freshly fetched buckets, ascending by end
// date. Buckets the source could not fill stay absent, so the result
// may be shorter than the boundary count; they are retried on the next
// invocation.
func (g *GapFiller) FetchRange(ctx context.Context, sym models.Symbol, tf timeframes.Timeframe, start, end time.Time) ([]models.Candle, error) {
	repo, err := g.repo(tf)
	if err != nil {
		return nil, err
	}
	src, err := g.registry.ForSymbol(sym)
	if err != nil {
		return nil, err
	}

	start = tf.Align(start)
	end = tf.Align(end)
	bounds := tf.Boundaries(start, end)

	persisted, err := repo.GetCandles(sym.SymbolID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load cached %s candles for %s: %w", tf, sym.SymbolName, err)
	}

	working := make(map[int64]models.Candle, len(bounds))
	for _, c := range persisted {
		working[c.EndDate.UTC().Unix()] = c
	}

	missing := 0
	for _, bound := range bounds {
		if _, ok := working[bound.Unix()]; ok {
			continue
		}
		missing++

		candle, err := fetchBucket(ctx, src, sym, tf, bound)
		if err != nil {
			return nil, err
		}
		if candle == nil {
			log.Debugf("gapfill: %s bucket %s for %s left unfilled",
				tf, bound.Format(time.RFC3339), sym.SymbolName)
			continue
		}

		if err := repo.SaveCandle(sym.SymbolID, candle); err != nil {
			return nil, fmt.Errorf("save %s candle %s for %s: %w",
				tf, bound.Format(time.RFC3339), sym.SymbolName, err)
		}
		working[candle.EndDate.UTC().Unix()] = *candle
	}

	if missing > 0 {
		log.WithFields(log.Fields{
			"symbol":    sym.SymbolName,
			"timeframe": tf.String(),
			"expected":  len(bounds),
			"missing":   missing,
			"filled":    len(working) - len(persisted),
		}).Debug("gapfill: range completed")
	}

	result := make([]models.Candle, 0, len(working))
	for _, c := range working {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EndDate.Before(result[j].EndDate)
	})
	return result, nil
}

// FetchDailyCandle fetches-or-fills the single daily bucket ending at
// endDate. The returned candle always carries the storage id.
func (g *GapFiller) FetchDailyCandle(ctx context.Context, sym models.Symbol, endDate time.Time) (*models.Candle, error) {
	return g.fetchCandle(ctx, sym, timeframes.Daily, endDate)
}

func (g *GapFiller) FetchHourlyCandle(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return g.fetchCandle(ctx, sym, timeframes.Hourly, endTime)
}

func (g *GapFiller) FetchFifteenMinCandle(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return g.fetchCandle(ctx, sym, timeframes.FifteenMin, endTime)
}

func (g *GapFiller) fetchCandle(ctx context.Context, sym models.Symbol, tf timeframes.Timeframe, end time.Time) (*models.Candle, error) {
	repo, err := g.repo(tf)
	if err != nil {
		return nil, err
	}

	end = tf.Align(end)
	cached, err := repo.GetCandle(sym.SymbolID, end)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	src, err := g.registry.ForSymbol(sym)
	if err != nil {
		return nil, err
	}
	candle, err := fetchBucket(ctx, src, sym, tf, end)
	if err != nil || candle == nil {
		return nil, err
	}

	if err := repo.SaveCandle(sym.SymbolID, candle); err != nil {
		return nil, err
	}
	// Re-read so the caller gets the storage-assigned id even when the
	// row pre-existed from another run.
	return repo.GetCandle(sym.SymbolID, end)
}

func fetchBucket(ctx context.Context, src sources.CandleSource, sym models.Symbol, tf timeframes.Timeframe, end time.Time) (*models.Candle, error) {
	switch tf {
	case timeframes.Daily:
		return src.FetchDailyKline(ctx, sym, end)
	case timeframes.Hourly:
		return src.FetchHourlyKline(ctx, sym, end)
	default:
		return src.FetchFifteenMinKline(ctx, sym, end)
	}
}
