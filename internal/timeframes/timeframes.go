package timeframes

import (
	"time"

	"CryptoMarketBot/internal/models"
)

// Timeframe is one of the three supported bucket granularities. A bucket
// is identified by its end timestamp; all alignment is done in UTC.
type Timeframe int

const (
	Daily Timeframe = iota
	Hourly
	FifteenMin
)

func All() []Timeframe {
	return []Timeframe{Daily, Hourly, FifteenMin}
}

func (tf Timeframe) String() string {
	switch tf {
	case Daily:
		return "daily"
	case Hourly:
		return "hourly"
	case FifteenMin:
		return "fifteen_min"
	}
	return "unknown"
}

// Width is the fixed bucket width.
func (tf Timeframe) Width() time.Duration {
	switch tf {
	case Daily:
		return 24 * time.Hour
	case Hourly:
		return time.Hour
	default:
		return 15 * time.Minute
	}
}

// Align truncates t down to the bucket boundary. Naive timestamps are
// treated as UTC, never as local time.
func (tf Timeframe) Align(t time.Time) time.Time {
	t = t.UTC()
	switch tf {
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Hourly:
		return t.Truncate(time.Hour)
	default:
		return t.Truncate(15 * time.Minute)
	}
}

// Next returns the boundary one bucket after t.
func (tf Timeframe) Next(t time.Time) time.Time {
	if tf == Daily {
		return tf.Align(t).AddDate(0, 0, 1)
	}
	return tf.Align(t).Add(tf.Width())
}

// Boundaries enumerates the ordered expected bucket boundaries from start
// to end inclusive, both aligned first.
func (tf Timeframe) Boundaries(start, end time.Time) []time.Time {
	start = tf.Align(start)
	end = tf.Align(end)

	var bounds []time.Time
	for t := start; !t.After(end); t = tf.Next(t) {
		bounds = append(bounds, t)
	}
	return bounds
}

// TableName maps the timeframe to its candle table.
func (tf Timeframe) TableName() string {
	switch tf {
	case Daily:
		return models.DailyCandleTable
	case Hourly:
		return models.HourlyCandleTable
	default:
		return models.FifteenMinCandleTable
	}
}

// BinanceInterval is the kline interval string used by the Binance API.
func (tf Timeframe) BinanceInterval() string {
	switch tf {
	case Daily:
		return "1d"
	case Hourly:
		return "1h"
	default:
		return "15m"
	}
}

// KucoinType is the candle type string used by the Kucoin API.
func (tf Timeframe) KucoinType() string {
	switch tf {
	case Daily:
		return "1day"
	case Hourly:
		return "1hour"
	default:
		return "15min"
	}
}
