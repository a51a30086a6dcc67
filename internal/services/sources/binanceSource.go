package sources

import (
	"context"
	"strconv"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/operations/binance"
	"CryptoMarketBot/internal/timeframes"

	log "github.com/sirupsen/logrus"
)

// BinanceSource normalizes Binance spot payloads into the common candle
// and ticker shapes. It also carries the Binance-only capabilities used
// by the flow job: order book depth and recent trades.
type BinanceSource struct {
	client *binance.BinanceClient
}

func NewBinanceSource(client *binance.BinanceClient) *BinanceSource {
	return &BinanceSource{client: client}
}

func (s *BinanceSource) FetchDailyKline(ctx context.Context, sym models.Symbol, endDate time.Time) (*models.Candle, error) {
	return s.fetchKline(ctx, sym, timeframes.Daily, endDate)
}

func (s *BinanceSource) FetchHourlyKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return s.fetchKline(ctx, sym, timeframes.Hourly, endTime)
}

func (s *BinanceSource) FetchFifteenMinKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return s.fetchKline(ctx, sym, timeframes.FifteenMin, endTime)
}

func (s *BinanceSource) fetchKline(ctx context.Context, sym models.Symbol, tf timeframes.Timeframe, end time.Time) (*models.Candle, error) {
	end = tf.Align(end)
	start := end.Add(-tf.Width())
	startMs := start.UnixMilli()

	klines, err := s.client.GetKlines(ctx, sym.BinancePair(), tf.BinanceInterval(),
		startMs, end.UnixMilli()-1)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("binance: kline fetch failed for %s %s ending %s: %v",
			sym.BinancePair(), tf, end.Format(time.RFC3339), err)
		return nil, nil
	}

	for _, k := range klines {
		if k.OpenTime != startMs {
			continue
		}
		closeValue := parseFloat(k.Close)
		return &models.Candle{
			SymbolID: sym.SymbolID,
			SourceID: models.SourceBinance,
			EndDate:  end,
			Open:     parseFloat(k.Open),
			High:     parseFloat(k.High),
			Low:      parseFloat(k.Low),
			Close:    closeValue,
			Last:     closeValue,
			Volume:   parseFloat(k.Volume),
			VolQuote: parseFloat(k.QuoteAssetVolume),
		}, nil
	}

	log.Debugf("binance: no %s kline for %s ending %s", tf, sym.BinancePair(), end.Format(time.RFC3339))
	return nil, nil
}

func (s *BinanceSource) FetchCurrentTicker(ctx context.Context, sym models.Symbol) (*models.TickerPrice, error) {
	stats, err := s.client.GetTicker24h(ctx, sym.BinancePair())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("binance: 24h ticker fetch failed for %s: %v", sym.BinancePair(), err)
		return nil, nil
	}

	return &models.TickerPrice{
		Symbol:   sym.SymbolName,
		SourceID: models.SourceBinance,
		Low:      parseFloat(stats.LowPrice),
		High:     parseFloat(stats.HighPrice),
		Last:     parseFloat(stats.LastPrice),
		Volume:   parseFloat(stats.Volume),
		VolQuote: parseFloat(stats.QuoteVolume),
	}, nil
}

// FetchOrderBook returns the normalized depth snapshot, or nil when the
// fetch failed.
func (s *BinanceSource) FetchOrderBook(ctx context.Context, sym models.Symbol, depth int) (*models.OrderBookDepth, error) {
	resp, err := s.client.GetDepth(ctx, sym.BinancePair(), depth)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("binance: depth fetch failed for %s: %v", sym.BinancePair(), err)
		return nil, nil
	}

	book := &models.OrderBookDepth{
		Symbol: sym.SymbolName,
		Time:   time.Now().UTC(),
	}
	for _, b := range resp.Bids {
		book.Bids = append(book.Bids, models.OrderBookLevel{
			Price:    parseFloat(b.Price),
			Quantity: parseFloat(b.Quantity),
		})
	}
	for _, a := range resp.Asks {
		book.Asks = append(book.Asks, models.OrderBookLevel{
			Price:    parseFloat(a.Price),
			Quantity: parseFloat(a.Quantity),
		})
	}
	return book, nil
}

// FetchRecentTrades returns trades with id strictly greater than
// sinceTradeID, oldest first, normalized into the common trade shape.
func (s *BinanceSource) FetchRecentTrades(ctx context.Context, sym models.Symbol, sinceTradeID int64, limit int) ([]models.Trade, error) {
	fromID := int64(0)
	if sinceTradeID > 0 {
		fromID = sinceTradeID + 1
	}

	raw, err := s.client.GetTradesFrom(ctx, sym.BinancePair(), fromID, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("binance: trades fetch failed for %s: %v", sym.BinancePair(), err)
		return nil, nil
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, t := range raw {
		if t.ID <= sinceTradeID {
			continue
		}
		price := parseFloat(t.Price)
		qty := parseFloat(t.Quantity)
		quote := parseFloat(t.QuoteQuantity)
		if quote == 0 {
			quote = price * qty
		}
		trades = append(trades, models.Trade{
			ID:           t.ID,
			Price:        price,
			Quantity:     qty,
			QuoteValue:   quote,
			Time:         time.UnixMilli(t.Time).UTC(),
			IsBuyerMaker: t.IsBuyerMaker,
		})
	}
	return trades, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Debugf("error parsing float %q: %v", s, err)
		return 0
	}
	return f
}
