package binance

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"
)

type BinanceClient struct {
	client      *binance.Client
	rateLimiter *rate.Limiter
	httpClient  *http.Client
}

func NewBinanceClient(apiKey, secretKey string) *BinanceClient {
	// Create custom HTTP client with timeouts
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Create spot client with custom HTTP client
	spotClient := binance.NewClient(apiKey, secretKey)
	spotClient.HTTPClient = httpClient

	// Create rate limiter: 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceClient{
		client:      spotClient,
		rateLimiter: limiter,
		httpClient:  httpClient,
	}
}

// GetKlines fetches klines for the [startTime, endTime] window in
// epoch milliseconds, retrying with exponential backoff.
func (c *BinanceClient) GetKlines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]*binance.Kline, error) {
	var klines []*binance.Kline
	maxRetries := 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait for rate limiter
		err := c.rateLimiter.Wait(ctx)
		if err != nil {
			return nil, err
		}

		// Make API call
		klines, err = c.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startTime).
			EndTime(endTime).
			Do(ctx)

		if err == nil {
			return klines, nil
		}

		// If this was the last attempt, return the error
		if attempt == maxRetries {
			return nil, err
		}

		// Calculate backoff duration with exponential increase
		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff

		// Wait before retrying
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
			continue
		}
	}

	return klines, nil
}

// GetTicker24h fetches the rolling 24h price change statistics.
func (c *BinanceClient) GetTicker24h(ctx context.Context, symbol string) (*binance.PriceChangeStats, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	stats, err := c.client.NewListPriceChangeStatsService().
		Symbol(symbol).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("no 24h stats returned for %s", symbol)
	}
	return stats[0], nil
}

// GetDepth fetches the order book up to the given number of levels per side.
func (c *BinanceClient) GetDepth(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	return c.client.NewDepthService().
		Symbol(symbol).
		Limit(limit).
		Do(ctx)
}

// GetTradesFrom fetches up to limit trades starting after fromID. With
// fromID zero the venue returns the most recent trades.
func (c *BinanceClient) GetTradesFrom(ctx context.Context, symbol string, fromID int64, limit int) ([]*binance.Trade, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc := c.client.NewHistoricalTradesService().Symbol(symbol).Limit(limit)
	if fromID > 0 {
		svc = svc.FromID(fromID)
	}
	return svc.Do(ctx)
}
