package config

import "time"

type config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	Jobs     JobsConfig
	CVD      CVDConfig
	Symbols  []SymbolConfig
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

// DatabaseConfig selects the storage backend once at startup.
// Driver is "sqlite" or "sqlserver"; DSN is the file path for sqlite
// and a full connection string for sqlserver.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

type JobsConfig struct {
	UpdateInterval time.Duration
	FlowInterval   time.Duration
	ReportInterval time.Duration
}

type CVDConfig struct {
	RetentionHours  int
	LargeTradeUSD   float64
	TradeBatchLimit int
}

// SymbolConfig seeds one row of the symbols table.
type SymbolConfig struct {
	Name     string
	FullName string
	SourceID int
}
