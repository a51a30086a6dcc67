package orderbook

import (
	"CryptoMarketBot/internal/models"
)

// ComputeMetrics reduces a depth snapshot to the persisted order book
// metrics: top of book, spread, depth volume within 2% of mid on each
// side, bid/ask volume ratio, and the largest resting order (wall) per
// side with its price. Returns nil when either side of the book is
// empty.
func ComputeMetrics(symbolID uint, book *models.OrderBookDepth) *models.OrderBookMetrics {
	if book == nil || len(book.Bids) == 0 || len(book.Asks) == 0 {
		return nil
	}

	bestBid := book.Bids[0]
	bestAsk := book.Asks[0]
	mid := (bestBid.Price + bestAsk.Price) / 2
	if mid <= 0 {
		return nil
	}

	m := &models.OrderBookMetrics{
		SymbolID:      symbolID,
		BestBid:       bestBid.Price,
		BestBidQty:    bestBid.Quantity,
		BestAsk:       bestAsk.Price,
		BestAskQty:    bestAsk.Quantity,
		SpreadPct:     (bestAsk.Price - bestBid.Price) / mid * 100,
		IndicatorDate: book.Time,
	}

	bidFloor := mid * 0.98
	for _, level := range book.Bids {
		if level.Price < bidFloor {
			break
		}
		m.BidVolume2Pct += level.Quantity
		if level.Quantity > m.LargestBidWall {
			m.LargestBidWall = level.Quantity
			m.LargestBidWallPrice = level.Price
		}
	}

	askCeil := mid * 1.02
	for _, level := range book.Asks {
		if level.Price > askCeil {
			break
		}
		m.AskVolume2Pct += level.Quantity
		if level.Quantity > m.LargestAskWall {
			m.LargestAskWall = level.Quantity
			m.LargestAskWallPrice = level.Price
		}
	}

	if m.AskVolume2Pct > 0 {
		m.BidAskRatio = m.BidVolume2Pct / m.AskVolume2Pct
	}
	return m
}
