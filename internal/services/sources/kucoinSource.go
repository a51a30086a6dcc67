package sources

import (
	"context"
	"strconv"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/operations/kucoin"
	"CryptoMarketBot/internal/timeframes"

	log "github.com/sirupsen/logrus"
)

// KucoinSource normalizes Kucoin REST payloads into the common shapes.
type KucoinSource struct {
	client *kucoin.KucoinClient
}

func NewKucoinSource(client *kucoin.KucoinClient) *KucoinSource {
	return &KucoinSource{client: client}
}

func (s *KucoinSource) FetchDailyKline(ctx context.Context, sym models.Symbol, endDate time.Time) (*models.Candle, error) {
	return s.fetchKline(ctx, sym, timeframes.Daily, endDate)
}

func (s *KucoinSource) FetchHourlyKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return s.fetchKline(ctx, sym, timeframes.Hourly, endTime)
}

func (s *KucoinSource) FetchFifteenMinKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return s.fetchKline(ctx, sym, timeframes.FifteenMin, endTime)
}

func (s *KucoinSource) fetchKline(ctx context.Context, sym models.Symbol, tf timeframes.Timeframe, end time.Time) (*models.Candle, error) {
	end = tf.Align(end)
	start := end.Add(-tf.Width())

	klines, err := s.client.GetKlines(ctx, sym.KucoinPair(), tf.KucoinType(),
		start.Unix(), end.Unix())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("kucoin: kline fetch failed for %s %s ending %s: %v",
			sym.KucoinPair(), tf, end.Format(time.RFC3339), err)
		return nil, nil
	}

	// Kucoin keys candles by bucket start time, newest first.
	for _, k := range klines {
		if !k.StartAt.Equal(start) {
			continue
		}
		return &models.Candle{
			SymbolID: sym.SymbolID,
			SourceID: models.SourceKucoin,
			EndDate:  end,
			Open:     k.Open,
			High:     k.High,
			Low:      k.Low,
			Close:    k.Close,
			Last:     k.Close,
			Volume:   k.Volume,
			VolQuote: k.Turnover,
		}, nil
	}

	log.Debugf("kucoin: no %s kline for %s ending %s", tf, sym.KucoinPair(), end.Format(time.RFC3339))
	return nil, nil
}

func (s *KucoinSource) FetchCurrentTicker(ctx context.Context, sym models.Symbol) (*models.TickerPrice, error) {
	stats, err := s.client.GetStats(ctx, sym.KucoinPair())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("kucoin: stats fetch failed for %s: %v", sym.KucoinPair(), err)
		return nil, nil
	}

	return &models.TickerPrice{
		Symbol:   sym.SymbolName,
		SourceID: models.SourceKucoin,
		Low:      parseStat(stats.Low),
		High:     parseStat(stats.High),
		Last:     parseStat(stats.Last),
		Volume:   parseStat(stats.Vol),
		VolQuote: parseStat(stats.VolValue),
	}, nil
}

func parseStat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
