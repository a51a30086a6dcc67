package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func Load() (*config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite"
	}
	if driver != "sqlite" && driver != "sqlserver" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or sqlserver)", driver)
	}

	return &config{
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Driver: driver,
			DSN:    getDSN(driver),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
			Enabled:  os.Getenv("TELEGRAM_BOT_TOKEN") != "" && os.Getenv("TELEGRAM_CHAT_ID") != "",
		},
		Jobs: JobsConfig{
			UpdateInterval: envToDuration("UPDATE_INTERVAL", 15*time.Minute),
			FlowInterval:   envToDuration("FLOW_INTERVAL", 5*time.Minute),
			ReportInterval: envToDuration("REPORT_INTERVAL", time.Hour),
		},
		CVD: CVDConfig{
			RetentionHours:  envToIntDefault("CVD_RETENTION_HOURS", 48),
			LargeTradeUSD:   envToFloatDefault("CVD_LARGE_TRADE_USD", 50000),
			TradeBatchLimit: envToIntDefault("CVD_TRADE_BATCH_LIMIT", 1000),
		},
		Symbols: getSymbols(),
	}, nil
}

func getDSN(driver string) string {
	if driver == "sqlite" {
		if path := os.Getenv("DB_PATH"); path != "" {
			return path
		}
		return "market.db"
	}
	return os.Getenv("DB_DSN")
}

// helper env(string) to int
func EnvtoInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func envToIntDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func envToFloatDefault(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func envToDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// helper to get symbols; format NAME:FullName:sourceID, comma separated
func getSymbols() []SymbolConfig {
	raw := os.Getenv("SYMBOLS")
	if raw == "" {
		return []SymbolConfig{
			{Name: "BTC", FullName: "Bitcoin", SourceID: 1},
			{Name: "ETH", FullName: "Ethereum", SourceID: 1},
		}
	}

	var symbols []SymbolConfig
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			continue
		}
		symbols = append(symbols, SymbolConfig{
			Name:     parts[0],
			FullName: parts[1],
			SourceID: EnvtoInt(parts[2]),
		})
	}
	return symbols
}
