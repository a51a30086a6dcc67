package handlers

import (
	"context"
	"time"

	"CryptoMarketBot/internal/operations/candles"
	"CryptoMarketBot/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// CandleHandler keeps the daily and hourly candle tables current: one
// updater pass at startup, then one per interval.
type CandleHandler struct {
	updater    *candles.Updater
	symbolRepo *repositories.SymbolRepository
	interval   time.Duration
}

func NewCandleHandler(updater *candles.Updater, symbolRepo *repositories.SymbolRepository, interval time.Duration) *CandleHandler {
	return &CandleHandler{
		updater:    updater,
		symbolRepo: symbolRepo,
		interval:   interval,
	}
}

func (h *CandleHandler) Start(ctx context.Context) error {
	// Initial sync before the ticker starts
	h.run(ctx)

	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Stopping candle updates...")
				return
			case <-ticker.C:
				h.run(ctx)
			}
		}
	}()

	return nil
}

func (h *CandleHandler) run(ctx context.Context) {
	symbols, err := h.symbolRepo.FindActive()
	if err != nil {
		log.Errorf("candle handler: loading symbols failed: %v", err)
		return
	}

	stats := h.updater.UpdateAll(ctx, symbols)
	log.Infof("Candle update: %d updated, %d skipped, %d failed across %d symbols",
		stats.Updated, stats.Skipped, stats.Failed, len(symbols))
}
