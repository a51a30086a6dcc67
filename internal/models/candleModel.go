package models

import (
	"time"
)

// Candle is one OHLCV bar for one symbol, one source, one timeframe,
// ending at EndDate. The same shape is persisted into the daily, hourly
// and fifteen-minute tables; the repository picks the table.
type Candle struct {
	Id       uint       `gorm:"primaryKey;column:id"`
	SymbolID uint       `gorm:"column:symbol_id;not null;index"`
	SourceID Source     `gorm:"column:source_id;not null"`
	OpenTime *time.Time `gorm:"column:open_time"`
	EndDate  time.Time  `gorm:"column:end_date;not null;index"`
	Open     float64    `gorm:"column:open"` // zero when the venue gave no open (ticker-derived)
	High     float64    `gorm:"column:high"`
	Low      float64    `gorm:"column:low"`
	Close    float64    `gorm:"column:close"`
	Last     float64    `gorm:"column:last"`
	Volume   float64    `gorm:"column:volume"`
	VolQuote float64    `gorm:"column:volume_quote"`
}

const (
	DailyCandleTable      = "daily_candles"
	HourlyCandleTable     = "hourly_candles"
	FifteenMinCandleTable = "fifteen_min_candles"
)

// TickerPrice is an ephemeral 24h snapshot. Never persisted; cached
// in-process per (symbol, source) with a TTL.
type TickerPrice struct {
	Symbol   string
	SourceID Source
	Low      float64
	High     float64
	Last     float64
	Volume   float64
	VolQuote float64
}

// Trade is one normalized trade from the recent-trades endpoint.
type Trade struct {
	ID           int64
	Price        float64
	Quantity     float64
	QuoteValue   float64
	Time         time.Time
	IsBuyerMaker bool
}
