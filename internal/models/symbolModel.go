package models

import "strings"

// Source identifies which venue is authoritative for a symbol's data.
type Source int

const (
	SourceBinance   Source = 1
	SourceKucoin    Source = 2
	SourceCoinGecko Source = 3
)

func (s Source) String() string {
	switch s {
	case SourceBinance:
		return "binance"
	case SourceKucoin:
		return "kucoin"
	case SourceCoinGecko:
		return "coingecko"
	}
	return "unknown"
}

// Symbol is a tradable asset. Seeded administratively, read-only at runtime.
type Symbol struct {
	SymbolID   uint   `gorm:"primaryKey"`
	SymbolName string `gorm:"uniqueIndex;not null"`
	FullName   string
	SourceID   Source `gorm:"not null"`
	IsActive   bool   `gorm:"default:true"`
}

func (Symbol) TableName() string {
	return "symbols"
}

// BinancePair returns the venue pair name, e.g. "BTCUSDT".
func (s Symbol) BinancePair() string {
	return s.SymbolName + "USDT"
}

// KucoinPair returns the venue pair name, e.g. "BTC-USDT".
func (s Symbol) KucoinPair() string {
	return s.SymbolName + "-USDT"
}

// CoinGeckoID returns the coin id used by the simple-price endpoint.
func (s Symbol) CoinGeckoID() string {
	return strings.ReplaceAll(strings.ToLower(s.FullName), " ", "-")
}
