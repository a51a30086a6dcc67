package handlers

import (
	"context"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/operations/cvd"
	"CryptoMarketBot/internal/operations/orderbook"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/sources"

	log "github.com/sirupsen/logrus"
)

const depthLevels = 100

// FlowHandler runs the order-flow job: pull new trades per symbol into
// the CVD hourly snapshots, refresh the wide CVD row, and take one
// order book snapshot. Trade tape and depth come from Binance only, so
// symbols on other sources are skipped here.
type FlowHandler struct {
	aggregator *cvd.Aggregator
	source     *sources.BinanceSource
	cvdRepo    *repositories.CVDRepository
	bookRepo   *repositories.OrderBookRepository
	symbolRepo *repositories.SymbolRepository
	interval   time.Duration
}

func NewFlowHandler(aggregator *cvd.Aggregator, source *sources.BinanceSource,
	cvdRepo *repositories.CVDRepository, bookRepo *repositories.OrderBookRepository,
	symbolRepo *repositories.SymbolRepository, interval time.Duration) *FlowHandler {
	return &FlowHandler{
		aggregator: aggregator,
		source:     source,
		cvdRepo:    cvdRepo,
		bookRepo:   bookRepo,
		symbolRepo: symbolRepo,
		interval:   interval,
	}
}

func (h *FlowHandler) Start(ctx context.Context) error {
	h.run(ctx)

	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Stopping flow collection...")
				return
			case <-ticker.C:
				h.run(ctx)
			}
		}
	}()

	return nil
}

func (h *FlowHandler) run(ctx context.Context) {
	symbols, err := h.symbolRepo.FindActive()
	if err != nil {
		log.Errorf("flow handler: loading symbols failed: %v", err)
		return
	}

	for _, sym := range symbols {
		if ctx.Err() != nil {
			return
		}
		if sym.SourceID != models.SourceBinance {
			continue
		}
		h.collectSymbol(ctx, sym)
	}
}

func (h *FlowHandler) collectSymbol(ctx context.Context, sym models.Symbol) {
	if _, err := h.aggregator.CollectSymbol(ctx, sym); err != nil {
		log.Errorf("flow handler: trade collection failed for %s: %v", sym.SymbolName, err)
	} else if ind, err := h.aggregator.ComputeIndicator(sym); err != nil {
		log.Errorf("flow handler: indicator failed for %s: %v", sym.SymbolName, err)
	} else if ind != nil {
		if err := h.cvdRepo.SaveIndicator(ind); err != nil {
			log.Errorf("flow handler: saving indicator failed for %s: %v", sym.SymbolName, err)
		}
	}

	book, err := h.source.FetchOrderBook(ctx, sym, depthLevels)
	if err != nil || book == nil {
		return
	}
	metrics := orderbook.ComputeMetrics(sym.SymbolID, book)
	if metrics == nil {
		return
	}
	if err := h.bookRepo.SaveMetrics(metrics); err != nil {
		log.Errorf("flow handler: saving book metrics failed for %s: %v", sym.SymbolName, err)
	}
}
