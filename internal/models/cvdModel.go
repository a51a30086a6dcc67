package models

import "time"

// CVDHourlySnapshot accumulates order-flow for one (symbol, hour bucket).
// LastTradeID is a high-water mark: an upsert whose incoming id is not
// strictly greater than the stored one must be a no-op.
type CVDHourlySnapshot struct {
	Id             uint      `gorm:"primaryKey;column:id"`
	SymbolID       uint      `gorm:"column:symbol_id;not null;index"`
	HourTimestamp  time.Time `gorm:"column:hour_timestamp;not null"`
	CVD            float64   `gorm:"column:cvd"`
	BuyVolume      float64   `gorm:"column:buy_volume"`
	SellVolume     float64   `gorm:"column:sell_volume"`
	TradeCount     int64     `gorm:"column:trade_count"`
	LargeBuyCount  int64     `gorm:"column:large_buy_count"`
	LargeSellCount int64     `gorm:"column:large_sell_count"`
	AvgTradeSize   float64   `gorm:"column:avg_trade_size"`
	LastTradeID    int64     `gorm:"column:last_trade_id"`
}

func (CVDHourlySnapshot) TableName() string {
	return "cvd_hourly_snapshots"
}

// CVDWindow is the read-side sum over a trailing window of hourly snapshots.
type CVDWindow struct {
	CVD            float64
	BuyVolume      float64
	SellVolume     float64
	TradeCount     int64
	LargeBuyCount  int64
	LargeSellCount int64
	AvgTradeSize   float64
	Hours          int
}

// CVDIndicator is the wide per-symbol row assembled from the hourly
// snapshots for the 1h/4h/24h trailing windows.
type CVDIndicator struct {
	Id             uint      `gorm:"primaryKey;column:id"`
	SymbolID       uint      `gorm:"column:symbol_id;not null;index"`
	CVD1h          float64   `gorm:"column:cvd_1h"`
	CVD4h          float64   `gorm:"column:cvd_4h"`
	CVD24h         float64   `gorm:"column:cvd_24h"`
	BuyVolume1h    float64   `gorm:"column:buy_volume_1h"`
	SellVolume1h   float64   `gorm:"column:sell_volume_1h"`
	BuyVolume24h   float64   `gorm:"column:buy_volume_24h"`
	SellVolume24h  float64   `gorm:"column:sell_volume_24h"`
	TradeCount1h   int64     `gorm:"column:trade_count_1h"`
	TradeCount24h  int64     `gorm:"column:trade_count_24h"`
	AvgTradeSize   float64   `gorm:"column:avg_trade_size"`
	LargeBuyCount  int64     `gorm:"column:large_buy_count"`
	LargeSellCount int64     `gorm:"column:large_sell_count"`
	IndicatorDate  time.Time `gorm:"column:indicator_date;not null"`
}

func (CVDIndicator) TableName() string {
	return "cumulative_volume_delta"
}
