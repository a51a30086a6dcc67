package repositories

import (
	"fmt"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/timeframes"

	"gorm.io/gorm"
)

// Migrate creates the schema and the natural unique keys the upserts
// rely on. The driver flag was resolved once at startup; it only matters
// here for the index-guard DDL, everything else goes through the
// dialect-neutral migrator.
func Migrate(db *gorm.DB, driver string) error {
	if err := db.AutoMigrate(
		&models.Symbol{},
		&models.CVDHourlySnapshot{},
		&models.CVDIndicator{},
		&models.OrderBookMetrics{},
	); err != nil {
		return fmt.Errorf("migrate base tables: %w", err)
	}

	for _, tf := range timeframes.All() {
		if err := db.Table(tf.TableName()).AutoMigrate(&models.Candle{}); err != nil {
			return fmt.Errorf("migrate %s: %w", tf.TableName(), err)
		}
	}

	uniques := []struct {
		table   string
		name    string
		columns string
	}{
		{models.DailyCandleTable, "uix_daily_candles_symbol_end", "symbol_id, end_date"},
		{models.HourlyCandleTable, "uix_hourly_candles_symbol_end", "symbol_id, end_date"},
		{models.FifteenMinCandleTable, "uix_fifteen_min_candles_symbol_end", "symbol_id, end_date"},
		{"cvd_hourly_snapshots", "uix_cvd_snapshots_symbol_hour", "symbol_id, hour_timestamp"},
		{"cumulative_volume_delta", "uix_cvd_symbol_date", "symbol_id, indicator_date"},
		{"order_book_metrics", "uix_order_book_symbol_date", "symbol_id, indicator_date"},
	}

	for _, u := range uniques {
		if err := db.Exec(uniqueIndexDDL(driver, u.table, u.name, u.columns)).Error; err != nil {
			return fmt.Errorf("create index %s: %w", u.name, err)
		}
	}
	return nil
}

func uniqueIndexDDL(driver, table, name, columns string) string {
	if driver == "sqlserver" {
		return fmt.Sprintf(
			"IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = '%s' AND object_id = OBJECT_ID('%s')) CREATE UNIQUE INDEX %s ON %s (%s)",
			name, table, name, table, columns)
	}
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)", name, table, columns)
}
