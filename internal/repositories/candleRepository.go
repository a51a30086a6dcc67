package repositories

import (
	"errors"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/timeframes"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CandleRepository stores candles for one timeframe table. The backend
// dialect (sqlite or sqlserver) was chosen once when db was opened; the
// upsert clause below compiles to INSERT OR REPLACE-style conflict
// handling on sqlite and to MERGE on sqlserver.
type CandleRepository struct {
	db *gorm.DB
	tf timeframes.Timeframe
}

// NewCandleRepository creates a repository bound to the timeframe's table.
func NewCandleRepository(db *gorm.DB, tf timeframes.Timeframe) *CandleRepository {
	return &CandleRepository{db: db, tf: tf}
}

func (r *CandleRepository) Timeframe() timeframes.Timeframe {
	return r.tf
}

func (r *CandleRepository) table() *gorm.DB {
	return r.db.Table(r.tf.TableName())
}

// GetCandle does a point lookup by exact bucket boundary.
func (r *CandleRepository) GetCandle(symbolID uint, endDate time.Time) (*models.Candle, error) {
	var candle models.Candle
	err := r.table().
		Where("symbol_id = ? AND end_date = ?", symbolID, r.tf.Align(endDate)).
		Take(&candle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &candle, nil
}

// GetCandles returns the inclusive range ascending by end_date.
func (r *CandleRepository) GetCandles(symbolID uint, start, end time.Time) ([]models.Candle, error) {
	var candles []models.Candle
	err := r.table().
		Where("symbol_id = ? AND end_date BETWEEN ? AND ?",
			symbolID, r.tf.Align(start), r.tf.Align(end)).
		Order("end_date ASC").
		Find(&candles).Error
	return candles, err
}

// GetAllCandles returns every persisted candle for the symbol, ascending.
func (r *CandleRepository) GetAllCandles(symbolID uint) ([]models.Candle, error) {
	var candles []models.Candle
	err := r.table().
		Where("symbol_id = ?", symbolID).
		Order("end_date ASC").
		Find(&candles).Error
	return candles, err
}

// GetMinCandleDate returns the earliest persisted bucket across all
// symbols in the table, or nil when the table is empty. Used to bound
// backfill depth.
func (r *CandleRepository) GetMinCandleDate() (*time.Time, error) {
	var candle models.Candle
	err := r.table().Order("end_date ASC").Take(&candle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := candle.EndDate.UTC()
	return &d, nil
}

// GetMaxCandleDate returns the most recent persisted bucket boundary for
// the symbol, or nil when no data exists yet.
func (r *CandleRepository) GetMaxCandleDate(symbolID uint) (*time.Time, error) {
	var candle models.Candle
	err := r.table().
		Where("symbol_id = ?", symbolID).
		Order("end_date DESC").
		Take(&candle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := candle.EndDate.UTC()
	return &d, nil
}

// SaveCandle upserts one candle keyed on (symbol_id, end_date); a second
// save of the same bucket updates in place, the new values win. For the
// hourly table open_time is recomputed from end_date on every save, the
// caller's value is not trusted. Each call commits independently.
func (r *CandleRepository) SaveCandle(symbolID uint, candle *models.Candle) error {
	if candle == nil {
		return errors.New("candle cannot be nil")
	}

	candle.SymbolID = symbolID
	candle.EndDate = r.tf.Align(candle.EndDate)
	if r.tf == timeframes.Hourly {
		openTime := candle.EndDate.Add(-time.Hour)
		candle.OpenTime = &openTime
	}

	return r.table().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol_id"}, {Name: "end_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_id", "open_time", "open", "high", "low", "close",
			"last", "volume", "volume_quote",
		}),
	}).Create(candle).Error
}
