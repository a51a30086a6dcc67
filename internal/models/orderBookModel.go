package models

import "time"

// OrderBookMetrics is one depth snapshot per (symbol, indicator date).
// Saves replace the whole row, they are not additive.
type OrderBookMetrics struct {
	Id                  uint      `gorm:"primaryKey;column:id"`
	SymbolID            uint      `gorm:"column:symbol_id;not null;index"`
	BestBid             float64   `gorm:"column:best_bid"`
	BestBidQty          float64   `gorm:"column:best_bid_qty"`
	BestAsk             float64   `gorm:"column:best_ask"`
	BestAskQty          float64   `gorm:"column:best_ask_qty"`
	SpreadPct           float64   `gorm:"column:spread_pct"`
	BidVolume2Pct       float64   `gorm:"column:bid_volume_2pct"`
	AskVolume2Pct       float64   `gorm:"column:ask_volume_2pct"`
	BidAskRatio         float64   `gorm:"column:bid_ask_ratio"`
	LargestBidWall      float64   `gorm:"column:largest_bid_wall"`
	LargestBidWallPrice float64   `gorm:"column:largest_bid_wall_price"`
	LargestAskWall      float64   `gorm:"column:largest_ask_wall"`
	LargestAskWallPrice float64   `gorm:"column:largest_ask_wall_price"`
	IndicatorDate       time.Time `gorm:"column:indicator_date;not null"`
}

func (OrderBookMetrics) TableName() string {
	return "order_book_metrics"
}

// OrderBookLevel is one resting price level from the depth endpoint.
type OrderBookLevel struct {
	Price    float64
	Quantity float64
}

// OrderBookDepth is the raw normalized depth snapshot before metric
// computation. Bids descend, asks ascend, as delivered by the venue.
type OrderBookDepth struct {
	Symbol string
	Bids   []OrderBookLevel
	Asks   []OrderBookLevel
	Time   time.Time
}
