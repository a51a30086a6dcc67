package cvd

import (
	"context"
	"sort"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/sources"

	log "github.com/sirupsen/logrus"
)

// Aggregator folds the Binance trade tape into hourly CVD snapshot rows.
// Each run resumes from the highest trade id already folded, so a batch
// replayed after a crash hits the repository's high-water-mark guard and
// is not counted twice.
type Aggregator struct {
	source         *sources.BinanceSource
	repo           *repositories.CVDRepository
	largeTradeUSD  float64
	batchLimit     int
	retentionHours int
}

func NewAggregator(source *sources.BinanceSource, repo *repositories.CVDRepository, largeTradeUSD float64, batchLimit, retentionHours int) *Aggregator {
	if batchLimit <= 0 {
		batchLimit = 1000
	}
	if retentionHours <= 0 {
		retentionHours = 48
	}
	return &Aggregator{
		source:         source,
		repo:           repo,
		largeTradeUSD:  largeTradeUSD,
		batchLimit:     batchLimit,
		retentionHours: retentionHours,
	}
}

// CollectSymbol pulls new trades for the symbol, folds them into hourly
// buckets, upserts the snapshots and sweeps expired ones. Returns how
// many snapshot rows were saved.
func (a *Aggregator) CollectSymbol(ctx context.Context, sym models.Symbol) (int, error) {
	since, err := a.repo.GetLastTradeID(sym.SymbolID)
	if err != nil {
		return 0, err
	}

	trades, err := a.source.FetchRecentTrades(ctx, sym, since, a.batchLimit)
	if err != nil {
		return 0, err
	}
	if len(trades) == 0 {
		log.Debugf("cvd: no new trades for %s since id %d", sym.SymbolName, since)
		return 0, nil
	}

	snaps := FoldTrades(sym.SymbolID, trades, a.largeTradeUSD)
	saved := a.repo.SaveHourlySnapshots(snaps)

	if deleted := a.repo.CleanupOldSnapshots(sym.SymbolID, a.retentionHours); deleted > 0 {
		log.Debugf("cvd: swept %d expired snapshots for %s", deleted, sym.SymbolName)
	}

	log.WithFields(log.Fields{
		"symbol": sym.SymbolName,
		"trades": len(trades),
		"hours":  len(snaps),
		"saved":  saved,
	}).Debug("cvd: symbol collected")
	return saved, nil
}

// FoldTrades groups trades into hour buckets and accumulates flow per
// bucket. A trade whose buyer was the maker was seller-initiated and
// counts as sell volume; otherwise it counts as buy volume. Trades at
// or above the large-trade threshold (quote value) are counted
// separately per side. Buckets come back ascending by hour.
func FoldTrades(symbolID uint, trades []models.Trade, largeTradeUSD float64) []models.CVDHourlySnapshot {
	byHour := make(map[time.Time]*models.CVDHourlySnapshot)
	totals := make(map[time.Time]float64)

	for _, t := range trades {
		hour := t.Time.UTC().Truncate(time.Hour)
		snap, ok := byHour[hour]
		if !ok {
			snap = &models.CVDHourlySnapshot{
				SymbolID:      symbolID,
				HourTimestamp: hour,
			}
			byHour[hour] = snap
		}

		if t.IsBuyerMaker {
			snap.SellVolume += t.Quantity
			snap.CVD -= t.Quantity
			if largeTradeUSD > 0 && t.QuoteValue >= largeTradeUSD {
				snap.LargeSellCount++
			}
		} else {
			snap.BuyVolume += t.Quantity
			snap.CVD += t.Quantity
			if largeTradeUSD > 0 && t.QuoteValue >= largeTradeUSD {
				snap.LargeBuyCount++
			}
		}

		snap.TradeCount++
		totals[hour] += t.Quantity
		if t.ID > snap.LastTradeID {
			snap.LastTradeID = t.ID
		}
	}

	snaps := make([]models.CVDHourlySnapshot, 0, len(byHour))
	for hour, snap := range byHour {
		if snap.TradeCount > 0 {
			snap.AvgTradeSize = totals[hour] / float64(snap.TradeCount)
		}
		snaps = append(snaps, *snap)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].HourTimestamp.Before(snaps[j].HourTimestamp)
	})
	return snaps
}

// ComputeIndicator assembles the wide per-symbol row from the 1h/4h/24h
// trailing windows. Returns nil when no snapshots exist in the 24h
// window at all.
func (a *Aggregator) ComputeIndicator(sym models.Symbol) (*models.CVDIndicator, error) {
	w24, err := a.repo.AggregateCVDForHours(sym.SymbolID, 24)
	if err != nil {
		return nil, err
	}
	if w24 == nil {
		return nil, nil
	}

	w1, err := a.repo.AggregateCVDForHours(sym.SymbolID, 1)
	if err != nil {
		return nil, err
	}
	w4, err := a.repo.AggregateCVDForHours(sym.SymbolID, 4)
	if err != nil {
		return nil, err
	}

	ind := &models.CVDIndicator{
		SymbolID:       sym.SymbolID,
		CVD24h:         w24.CVD,
		BuyVolume24h:   w24.BuyVolume,
		SellVolume24h:  w24.SellVolume,
		TradeCount24h:  w24.TradeCount,
		AvgTradeSize:   w24.AvgTradeSize,
		LargeBuyCount:  w24.LargeBuyCount,
		LargeSellCount: w24.LargeSellCount,
		IndicatorDate:  time.Now().UTC().Truncate(time.Hour),
	}
	if w1 != nil {
		ind.CVD1h = w1.CVD
		ind.BuyVolume1h = w1.BuyVolume
		ind.SellVolume1h = w1.SellVolume
		ind.TradeCount1h = w1.TradeCount
	}
	if w4 != nil {
		ind.CVD4h = w4.CVD
	}
	return ind, nil
}
