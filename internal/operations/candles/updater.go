package candles

import (
	"context"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/timeframes"

	log "github.com/sirupsen/logrus"
)

const (
	dailyLookback  = 3 * 24 * time.Hour
	hourlyLookback = 24 * time.Hour
)

// UpdateStats aggregates one updater run. Updated and Failed count
// buckets; Skipped counts symbol/timeframe pairs that were already
// current and issued zero fetch calls.
type UpdateStats struct {
	Updated int
	Skipped int
	Failed  int
}

func (s *UpdateStats) add(o UpdateStats) {
	s.Updated += o.Updated
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// Updater walks each symbol forward from its most recent persisted
// bucket to now, one bucket at a time, for the daily and hourly
// timeframes. Per-bucket iteration (instead of one range call) keeps
// progress visible in the logs and lets a symbol report partial success
// under a flaky upstream.
type Updater struct {
	gapFiller *GapFiller
	repos     map[timeframes.Timeframe]*repositories.CandleRepository
}

func NewUpdater(gapFiller *GapFiller, daily, hourly *repositories.CandleRepository) *Updater {
	return &Updater{
		gapFiller: gapFiller,
		repos: map[timeframes.Timeframe]*repositories.CandleRepository{
			timeframes.Daily:  daily,
			timeframes.Hourly: hourly,
		},
	}
}

// UpdateAll syncs every symbol for both timeframes and returns the
// aggregate counts. A bucket failure never aborts the symbol's
// remaining buckets; a symbol failure never aborts the run.
func (u *Updater) UpdateAll(ctx context.Context, symbols []models.Symbol) UpdateStats {
	var total UpdateStats
	for _, sym := range symbols {
		for _, tf := range []timeframes.Timeframe{timeframes.Daily, timeframes.Hourly} {
			if ctx.Err() != nil {
				return total
			}
			stats := u.updateSymbol(ctx, sym, tf)
			total.add(stats)
		}
	}

	log.WithFields(log.Fields{
		"updated": total.Updated,
		"skipped": total.Skipped,
		"failed":  total.Failed,
	}).Info("updater: run complete")
	return total
}

func (u *Updater) updateSymbol(ctx context.Context, sym models.Symbol, tf timeframes.Timeframe) UpdateStats {
	var stats UpdateStats

	repo := u.repos[tf]
	now := tf.Align(time.Now())

	last, err := repo.GetMaxCandleDate(sym.SymbolID)
	if err != nil {
		log.Errorf("updater: max date lookup failed for %s %s: %v", sym.SymbolName, tf, err)
		stats.Failed++
		return stats
	}

	if last != nil && !last.Before(now) {
		log.Debugf("updater: %s %s already current at %s", sym.SymbolName, tf, last.Format(time.RFC3339))
		stats.Skipped++
		return stats
	}

	var start time.Time
	if last != nil {
		start = tf.Next(*last)
	} else {
		start = tf.Align(now.Add(-lookback(tf)))
	}

	for _, bound := range tf.Boundaries(start, now) {
		if ctx.Err() != nil {
			return stats
		}

		candle, err := u.fetchBucket(ctx, sym, tf, bound)
		if err != nil || candle == nil {
			if err != nil {
				log.Errorf("updater: %s %s bucket %s failed: %v",
					sym.SymbolName, tf, bound.Format(time.RFC3339), err)
			} else {
				log.Debugf("updater: %s %s bucket %s had no data",
					sym.SymbolName, tf, bound.Format(time.RFC3339))
			}
			stats.Failed++
			continue
		}
		stats.Updated++
	}

	log.WithFields(log.Fields{
		"symbol":    sym.SymbolName,
		"timeframe": tf.String(),
		"updated":   stats.Updated,
		"failed":    stats.Failed,
	}).Debug("updater: symbol synced")
	return stats
}

func (u *Updater) fetchBucket(ctx context.Context, sym models.Symbol, tf timeframes.Timeframe, bound time.Time) (*models.Candle, error) {
	if tf == timeframes.Daily {
		return u.gapFiller.FetchDailyCandle(ctx, sym, bound)
	}
	return u.gapFiller.FetchHourlyCandle(ctx, sym, bound)
}

func lookback(tf timeframes.Timeframe) time.Duration {
	if tf == timeframes.Daily {
		return dailyLookback
	}
	return hourlyLookback
}
