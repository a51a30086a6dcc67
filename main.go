package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CryptoMarketBot/config"
	"CryptoMarketBot/internal/handlers"
	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/notifications"
	"CryptoMarketBot/internal/operations/binance"
	"CryptoMarketBot/internal/operations/candles"
	"CryptoMarketBot/internal/operations/coingecko"
	"CryptoMarketBot/internal/operations/cvd"
	"CryptoMarketBot/internal/operations/kucoin"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/pricecache"
	"CryptoMarketBot/internal/services/reports"
	"CryptoMarketBot/internal/services/sources"
	"CryptoMarketBot/internal/timeframes"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// Setup database; the dialect is chosen here, once
	db := setupDatabase(cfg.Database)

	if err := repositories.Migrate(db, cfg.Database.Driver); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	// Initialize repositories
	symbolRepo := repositories.NewSymbolRepository(db)
	dailyRepo := repositories.NewCandleRepository(db, timeframes.Daily)
	hourlyRepo := repositories.NewCandleRepository(db, timeframes.Hourly)
	fifteenRepo := repositories.NewCandleRepository(db, timeframes.FifteenMin)
	cvdRepo := repositories.NewCVDRepository(db)
	bookRepo := repositories.NewOrderBookRepository(db)

	// Seed symbols from config
	if err := symbolRepo.Seed(seedSymbols(cfg.Symbols)); err != nil {
		log.Fatal("Failed to seed symbols: ", err)
	}

	// Initialize venue clients and the source registry
	binanceSource := sources.NewBinanceSource(
		binance.NewBinanceClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey))
	kucoinSource := sources.NewKucoinSource(kucoin.NewKucoinClient())
	coingeckoSource := sources.NewCoinGeckoSource(coingecko.NewCoinGeckoClient())

	registry := sources.NewRegistry()
	registry.Register(models.SourceBinance, binanceSource)
	registry.Register(models.SourceKucoin, kucoinSource)
	registry.Register(models.SourceCoinGecko, coingeckoSource)

	// Core operations
	gapFiller := candles.NewGapFiller(registry, dailyRepo, hourlyRepo, fifteenRepo)
	updater := candles.NewUpdater(gapFiller, dailyRepo, hourlyRepo)
	aggregator := cvd.NewAggregator(binanceSource, cvdRepo,
		cfg.CVD.LargeTradeUSD, cfg.CVD.TradeBatchLimit, cfg.CVD.RetentionHours)

	priceCache := pricecache.New(pricecache.DefaultTTL)
	builder := reports.NewBuilder(dailyRepo, cvdRepo, bookRepo, registry, priceCache)

	var telegram *notifications.TelegramClient
	if cfg.Telegram.Enabled {
		telegram = notifications.NewTelegramClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	} else {
		log.Println("Telegram disabled, reports will not be delivered")
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the jobs
	candleHandler := handlers.NewCandleHandler(updater, symbolRepo, cfg.Jobs.UpdateInterval)
	flowHandler := handlers.NewFlowHandler(aggregator, binanceSource, cvdRepo, bookRepo, symbolRepo, cfg.Jobs.FlowInterval)
	reportHandler := handlers.NewReportHandler(builder, telegram, symbolRepo, cfg.Jobs.ReportInterval)

	if err := candleHandler.Start(ctx); err != nil {
		log.Fatal("Failed to start candle handler: ", err)
	}
	if err := flowHandler.Start(ctx); err != nil {
		log.Fatal("Failed to start flow handler: ", err)
	}
	if err := reportHandler.Start(ctx); err != nil {
		log.Fatal("Failed to start report handler: ", err)
	}

	log.Println("Market data collection started...")

	// Handle shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Shutting down...")
	cancel()
	time.Sleep(time.Second * 2) // Give time for cleanup
	log.Println("Shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	var dialector gorm.Dialector
	if dbConfig.Driver == "sqlserver" {
		dialector = sqlserver.Open(dbConfig.DSN)
	} else {
		dialector = sqlite.Open(dbConfig.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	return db
}

func seedSymbols(symbols []config.SymbolConfig) []models.Symbol {
	seeded := make([]models.Symbol, 0, len(symbols))
	for _, s := range symbols {
		seeded = append(seeded, models.Symbol{
			SymbolName: s.Name,
			FullName:   s.FullName,
			SourceID:   models.Source(s.SourceID),
			IsActive:   true,
		})
	}
	return seeded
}
