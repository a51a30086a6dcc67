package sources

import (
	"context"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/operations/coingecko"

	log "github.com/sirupsen/logrus"
)

// CoinGeckoSource is a price source only: the aggregator has no kline
// endpoint shaped like the exchange ones, so the candle methods always
// report no data and symbols assigned to it get ticker coverage alone.
type CoinGeckoSource struct {
	client *coingecko.CoinGeckoClient
}

func NewCoinGeckoSource(client *coingecko.CoinGeckoClient) *CoinGeckoSource {
	return &CoinGeckoSource{client: client}
}

func (s *CoinGeckoSource) FetchDailyKline(ctx context.Context, sym models.Symbol, endDate time.Time) (*models.Candle, error) {
	return nil, nil
}

func (s *CoinGeckoSource) FetchHourlyKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return nil, nil
}

func (s *CoinGeckoSource) FetchFifteenMinKline(ctx context.Context, sym models.Symbol, endTime time.Time) (*models.Candle, error) {
	return nil, nil
}

func (s *CoinGeckoSource) FetchCurrentTicker(ctx context.Context, sym models.Symbol) (*models.TickerPrice, error) {
	price, err := s.client.GetSimplePrice(ctx, sym.CoinGeckoID())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Errorf("coingecko: price fetch failed for %s: %v", sym.CoinGeckoID(), err)
		return nil, nil
	}
	if price == nil {
		log.Debugf("coingecko: no price for %s", sym.CoinGeckoID())
		return nil, nil
	}

	return &models.TickerPrice{
		Symbol:   sym.SymbolName,
		SourceID: models.SourceCoinGecko,
		Last:     price.USD,
		VolQuote: price.USDVolume24h,
	}, nil
}
