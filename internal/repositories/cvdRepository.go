package repositories

import (
	"errors"
	"time"

	"CryptoMarketBot/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CVDRepository struct {
	db *gorm.DB
}

func NewCVDRepository(db *gorm.DB) *CVDRepository {
	return &CVDRepository{db: db}
}

// SaveHourlySnapshot folds one trade-batch snapshot into the row for
// (symbol_id, hour_timestamp). Inserts when absent. When present, the
// numeric totals are added and avg_trade_size/last_trade_id overwritten,
// but only if the incoming last_trade_id is strictly greater than the
// stored one; otherwise the call is a no-op so a replayed batch cannot
// be counted twice. The additive path is a single conditional UPDATE,
// which keeps concurrent folds row-atomic.
func (r *CVDRepository) SaveHourlySnapshot(snap *models.CVDHourlySnapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	snap.HourTimestamp = snap.HourTimestamp.UTC().Truncate(time.Hour)

	applied, err := r.applyAdditive(snap)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	// No row was updated: either the key is absent or the incoming id is
	// stale. Stale updates are a silent no-op.
	existing, err := r.getSnapshot(snap.SymbolID, snap.HourTimestamp)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Debugf("cvd: stale snapshot for symbol %d hour %s (incoming id %d <= stored %d), skipping",
			snap.SymbolID, snap.HourTimestamp.Format(time.RFC3339), snap.LastTradeID, existing.LastTradeID)
		return nil
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol_id"}, {Name: "hour_timestamp"}},
		DoNothing: true,
	}).Create(snap)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Lost the insert race to a concurrent fold; retry the additive path.
	if _, err := r.applyAdditive(snap); err != nil {
		return err
	}
	return nil
}

func (r *CVDRepository) applyAdditive(snap *models.CVDHourlySnapshot) (bool, error) {
	res := r.db.Exec(`UPDATE cvd_hourly_snapshots
		SET cvd = cvd + ?,
		    buy_volume = buy_volume + ?,
		    sell_volume = sell_volume + ?,
		    trade_count = trade_count + ?,
		    large_buy_count = large_buy_count + ?,
		    large_sell_count = large_sell_count + ?,
		    avg_trade_size = ?,
		    last_trade_id = ?
		WHERE symbol_id = ? AND hour_timestamp = ? AND last_trade_id < ?`,
		snap.CVD, snap.BuyVolume, snap.SellVolume, snap.TradeCount,
		snap.LargeBuyCount, snap.LargeSellCount, snap.AvgTradeSize, snap.LastTradeID,
		snap.SymbolID, snap.HourTimestamp, snap.LastTradeID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CVDRepository) getSnapshot(symbolID uint, hour time.Time) (*models.CVDHourlySnapshot, error) {
	var snap models.CVDHourlySnapshot
	err := r.db.Where("symbol_id = ? AND hour_timestamp = ?", symbolID, hour).Take(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveHourlySnapshots applies the snapshots one at a time, logging and
// continuing on individual failures. Returns how many were saved.
func (r *CVDRepository) SaveHourlySnapshots(snaps []models.CVDHourlySnapshot) int {
	saved := 0
	for i := range snaps {
		if err := r.SaveHourlySnapshot(&snaps[i]); err != nil {
			log.Errorf("cvd: failed to save snapshot for symbol %d hour %s: %v",
				snaps[i].SymbolID, snaps[i].HourTimestamp.Format(time.RFC3339), err)
			continue
		}
		saved++
	}
	return saved
}

// AggregateCVDForHours sums the hourly snapshots for the trailing window
// and averages avg_trade_size. Returns nil when zero rows matched, so
// "no data" stays distinguishable from all-zero flow.
func (r *CVDRepository) AggregateCVDForHours(symbolID uint, hours int) (*models.CVDWindow, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var row struct {
		RowCount       int64
		CVD            float64
		BuyVolume      float64
		SellVolume     float64
		TradeCount     int64
		LargeBuyCount  int64
		LargeSellCount int64
		AvgTradeSize   float64
	}
	err := r.db.Model(&models.CVDHourlySnapshot{}).
		Select(`COUNT(*) as row_count,
			COALESCE(SUM(cvd), 0) as cvd,
			COALESCE(SUM(buy_volume), 0) as buy_volume,
			COALESCE(SUM(sell_volume), 0) as sell_volume,
			COALESCE(SUM(trade_count), 0) as trade_count,
			COALESCE(SUM(large_buy_count), 0) as large_buy_count,
			COALESCE(SUM(large_sell_count), 0) as large_sell_count,
			COALESCE(AVG(avg_trade_size), 0) as avg_trade_size`).
		Where("symbol_id = ? AND hour_timestamp >= ?", symbolID, cutoff).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.RowCount == 0 {
		return nil, nil
	}

	return &models.CVDWindow{
		CVD:            row.CVD,
		BuyVolume:      row.BuyVolume,
		SellVolume:     row.SellVolume,
		TradeCount:     row.TradeCount,
		LargeBuyCount:  row.LargeBuyCount,
		LargeSellCount: row.LargeSellCount,
		AvgTradeSize:   row.AvgTradeSize,
		Hours:          hours,
	}, nil
}

// GetLastTradeID returns the highest trade id folded into any snapshot
// for the symbol, or 0 when none exist. The aggregator resumes pulling
// trades from here.
func (r *CVDRepository) GetLastTradeID(symbolID uint) (int64, error) {
	var snap models.CVDHourlySnapshot
	err := r.db.Where("symbol_id = ?", symbolID).
		Order("last_trade_id DESC").
		Take(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return snap.LastTradeID, nil
}

// CleanupOldSnapshots removes snapshots older than the retention window.
// Best-effort: failures are logged and reported as zero deletions.
func (r *CVDRepository) CleanupOldSnapshots(symbolID uint, keepHours int) int {
	cutoff := time.Now().UTC().Add(-time.Duration(keepHours) * time.Hour)
	res := r.db.Where("symbol_id = ? AND hour_timestamp < ?", symbolID, cutoff).
		Delete(&models.CVDHourlySnapshot{})
	if res.Error != nil {
		log.Errorf("cvd: cleanup failed for symbol %d: %v", symbolID, res.Error)
		return 0
	}
	return int(res.RowsAffected)
}

// SaveIndicator upserts the wide per-symbol row, replacing all fields
// for the (symbol_id, indicator_date) key.
func (r *CVDRepository) SaveIndicator(ind *models.CVDIndicator) error {
	if ind == nil {
		return errors.New("indicator cannot be nil")
	}
	ind.IndicatorDate = ind.IndicatorDate.UTC().Truncate(time.Hour)

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol_id"}, {Name: "indicator_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cvd_1h", "cvd_4h", "cvd_24h",
			"buy_volume_1h", "sell_volume_1h", "buy_volume_24h", "sell_volume_24h",
			"trade_count_1h", "trade_count_24h",
			"avg_trade_size", "large_buy_count", "large_sell_count",
		}),
	}).Create(ind).Error
}
