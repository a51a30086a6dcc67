package orderbook

import (
	"testing"
	"time"

	"CryptoMarketBot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBook() *models.OrderBookDepth {
	// Mid = 100. The 2% bands are [98, 100] for bids, [100, 102] for asks.
	return &models.OrderBookDepth{
		Time: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
		Bids: []models.OrderBookLevel{
			{Price: 99.5, Quantity: 2},
			{Price: 99.0, Quantity: 10}, // bid wall
			{Price: 98.5, Quantity: 3},
			{Price: 97.0, Quantity: 50}, // outside the band
		},
		Asks: []models.OrderBookLevel{
			{Price: 100.5, Quantity: 1},
			{Price: 101.0, Quantity: 4}, // ask wall
			{Price: 101.5, Quantity: 2},
			{Price: 103.0, Quantity: 80}, // outside the band
		},
	}
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(3, fixtureBook())
	require.NotNil(t, m)

	assert.Equal(t, uint(3), m.SymbolID)
	assert.InDelta(t, 99.5, m.BestBid, 1e-9)
	assert.InDelta(t, 2.0, m.BestBidQty, 1e-9)
	assert.InDelta(t, 100.5, m.BestAsk, 1e-9)
	assert.InDelta(t, 1.0, m.BestAskQty, 1e-9)
	assert.InDelta(t, 1.0, m.SpreadPct, 1e-9)

	assert.InDelta(t, 15.0, m.BidVolume2Pct, 1e-9)
	assert.InDelta(t, 7.0, m.AskVolume2Pct, 1e-9)
	assert.InDelta(t, 15.0/7.0, m.BidAskRatio, 1e-9)

	assert.InDelta(t, 10.0, m.LargestBidWall, 1e-9)
	assert.InDelta(t, 99.0, m.LargestBidWallPrice, 1e-9)
	assert.InDelta(t, 4.0, m.LargestAskWall, 1e-9)
	assert.InDelta(t, 101.0, m.LargestAskWallPrice, 1e-9)

	assert.True(t, m.IndicatorDate.Equal(time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)))
}

func TestComputeMetricsEmptySide(t *testing.T) {
	book := fixtureBook()
	book.Asks = nil
	assert.Nil(t, ComputeMetrics(1, book))

	book = fixtureBook()
	book.Bids = nil
	assert.Nil(t, ComputeMetrics(1, book))

	assert.Nil(t, ComputeMetrics(1, nil))
}

func TestComputeMetricsZeroAskDepthLeavesRatioZero(t *testing.T) {
	// No ask quantity within the band; the ratio must not divide by zero.
	book := &models.OrderBookDepth{
		Bids: []models.OrderBookLevel{{Price: 99.5, Quantity: 5}},
		Asks: []models.OrderBookLevel{{Price: 100.5, Quantity: 0}},
	}
	m := ComputeMetrics(1, book)
	require.NotNil(t, m)
	assert.InDelta(t, 5.0, m.BidVolume2Pct, 1e-9)
	assert.Zero(t, m.AskVolume2Pct)
	assert.Zero(t, m.BidAskRatio)
}
