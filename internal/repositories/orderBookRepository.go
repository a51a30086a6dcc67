package repositories

import (
	"errors"
	"time"

	"CryptoMarketBot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderBookRepository struct {
	db *gorm.DB
}

func NewOrderBookRepository(db *gorm.DB) *OrderBookRepository {
	return &OrderBookRepository{db: db}
}

// SaveMetrics upserts one depth snapshot, replacing the whole row for
// the (symbol_id, indicator_date) key.
func (r *OrderBookRepository) SaveMetrics(m *models.OrderBookMetrics) error {
	if m == nil {
		return errors.New("metrics cannot be nil")
	}
	m.IndicatorDate = m.IndicatorDate.UTC().Truncate(time.Minute)

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol_id"}, {Name: "indicator_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"best_bid", "best_bid_qty", "best_ask", "best_ask_qty",
			"spread_pct", "bid_volume_2pct", "ask_volume_2pct", "bid_ask_ratio",
			"largest_bid_wall", "largest_bid_wall_price",
			"largest_ask_wall", "largest_ask_wall_price",
		}),
	}).Create(m).Error
}

// GetLatestMetrics returns the most recent snapshot for the symbol, or
// nil when none exist.
func (r *OrderBookRepository) GetLatestMetrics(symbolID uint) (*models.OrderBookMetrics, error) {
	var m models.OrderBookMetrics
	err := r.db.Where("symbol_id = ?", symbolID).
		Order("indicator_date DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
