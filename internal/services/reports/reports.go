package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/indicators"
	"CryptoMarketBot/internal/services/pricecache"
	"CryptoMarketBot/internal/services/sources"

	log "github.com/sirupsen/logrus"
)

const (
	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignal    = 9
	bbandsPeriod  = 20
	bbandsStdDevs = 2.0
	historyDays   = 60
)

// SymbolReport is one symbol's assembled market snapshot.
type SymbolReport struct {
	Symbol    models.Symbol
	Last      float64
	Change24h float64
	RSI       float64
	MACD      *indicators.MACDPoint
	BBands    *indicators.BBandsPoint
	CVD24h    *models.CVDWindow
	CVD4h     *models.CVDWindow
	Book      *models.OrderBookMetrics
}

// Builder assembles per-symbol reports from the persisted candles,
// flow snapshots and order book metrics, plus the current ticker via
// the TTL cache.
type Builder struct {
	dailyRepo *repositories.CandleRepository
	cvdRepo   *repositories.CVDRepository
	bookRepo  *repositories.OrderBookRepository
	registry  *sources.Registry
	cache     *pricecache.Cache
	rsi       *indicators.RSIService
	macd      *indicators.MACDService
	bbands    *indicators.BBandsService
}

func NewBuilder(dailyRepo *repositories.CandleRepository, cvdRepo *repositories.CVDRepository,
	bookRepo *repositories.OrderBookRepository, registry *sources.Registry, cache *pricecache.Cache) *Builder {
	return &Builder{
		dailyRepo: dailyRepo,
		cvdRepo:   cvdRepo,
		bookRepo:  bookRepo,
		registry:  registry,
		cache:     cache,
		rsi:       indicators.NewRSIService(),
		macd:      indicators.NewMACDService(),
		bbands:    indicators.NewBBandsService(),
	}
}

// Build assembles the report for one symbol. Missing pieces (thin
// candle history, no flow data, no book snapshot) are left nil/zero
// rather than failing the whole report.
func (b *Builder) Build(ctx context.Context, sym models.Symbol) (*SymbolReport, error) {
	now := time.Now().UTC()
	candles, err := b.dailyRepo.GetCandles(sym.SymbolID, now.AddDate(0, 0, -historyDays), now)
	if err != nil {
		return nil, fmt.Errorf("load daily candles for %s: %w", sym.SymbolName, err)
	}

	report := &SymbolReport{Symbol: sym}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	if len(closes) > 0 {
		report.Last = closes[len(closes)-1]
	}
	if len(closes) > 1 {
		prev := closes[len(closes)-2]
		if prev != 0 {
			report.Change24h = (report.Last - prev) / prev * 100
		}
	}

	if ticker := b.currentTicker(ctx, sym); ticker != nil {
		report.Last = ticker.Last
	}

	report.RSI = b.rsi.Latest(closes, rsiPeriod)
	report.MACD = b.macd.Latest(closes, macdFast, macdSlow, macdSignal)
	report.BBands = b.bbands.Latest(closes, bbandsPeriod, bbandsStdDevs)

	if report.CVD24h, err = b.cvdRepo.AggregateCVDForHours(sym.SymbolID, 24); err != nil {
		return nil, err
	}
	if report.CVD4h, err = b.cvdRepo.AggregateCVDForHours(sym.SymbolID, 4); err != nil {
		return nil, err
	}
	if report.Book, err = b.bookRepo.GetLatestMetrics(sym.SymbolID); err != nil {
		return nil, err
	}
	return report, nil
}

func (b *Builder) currentTicker(ctx context.Context, sym models.Symbol) *models.TickerPrice {
	if ticker, ok := b.cache.Get(sym.SymbolID, sym.SourceID); ok {
		return ticker
	}

	src, err := b.registry.ForSymbol(sym)
	if err != nil {
		log.Errorf("reports: %v", err)
		return nil
	}
	ticker, err := src.FetchCurrentTicker(ctx, sym)
	if err != nil || ticker == nil {
		return nil
	}
	b.cache.Set(sym.SymbolID, sym.SourceID, ticker)
	return ticker
}

// Format renders the report as the plain-text block sent to the chat.
func (r *SymbolReport) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s)\n", r.Symbol.SymbolName, r.Symbol.FullName)
	fmt.Fprintf(&sb, "Price: %.4f (%+.2f%% 24h)\n", r.Last, r.Change24h)

	if r.RSI > 0 {
		fmt.Fprintf(&sb, "RSI(14): %.1f\n", r.RSI)
	}
	if r.MACD != nil {
		fmt.Fprintf(&sb, "MACD: %.4f signal %.4f hist %.4f\n", r.MACD.MACD, r.MACD.Signal, r.MACD.Histogram)
	}
	if r.BBands != nil {
		fmt.Fprintf(&sb, "BB position: %.0f%% of band\n", r.BBands.Position*100)
	}
	if r.CVD24h != nil {
		fmt.Fprintf(&sb, "CVD 24h: %+.2f (buy %.2f / sell %.2f, %d trades)\n",
			r.CVD24h.CVD, r.CVD24h.BuyVolume, r.CVD24h.SellVolume, r.CVD24h.TradeCount)
		fmt.Fprintf(&sb, "Large trades 24h: %d buys / %d sells\n",
			r.CVD24h.LargeBuyCount, r.CVD24h.LargeSellCount)
	}
	if r.CVD4h != nil {
		fmt.Fprintf(&sb, "CVD 4h: %+.2f\n", r.CVD4h.CVD)
	}
	if r.Book != nil {
		fmt.Fprintf(&sb, "Book: bid %.4f / ask %.4f spread %.3f%% ratio %.2f\n",
			r.Book.BestBid, r.Book.BestAsk, r.Book.SpreadPct, r.Book.BidAskRatio)
		if r.Book.LargestBidWall > 0 {
			fmt.Fprintf(&sb, "Walls: bid %.2f @ %.4f, ask %.2f @ %.4f\n",
				r.Book.LargestBidWall, r.Book.LargestBidWallPrice,
				r.Book.LargestAskWall, r.Book.LargestAskWallPrice)
		}
	}
	return sb.String()
}
