package repositories

import (
	"errors"

	"CryptoMarketBot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SymbolRepository struct {
	db *gorm.DB
}

func NewSymbolRepository(db *gorm.DB) *SymbolRepository {
	return &SymbolRepository{db: db}
}

// Seed inserts the configured symbols, leaving existing rows untouched.
func (r *SymbolRepository) Seed(symbols []models.Symbol) error {
	for i := range symbols {
		err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol_name"}},
			DoNothing: true,
		}).Create(&symbols[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// FindActive returns all symbols currently enabled for ingestion.
func (r *SymbolRepository) FindActive() ([]models.Symbol, error) {
	var symbols []models.Symbol
	err := r.db.Where("is_active = ?", true).Order("symbol_id ASC").Find(&symbols).Error
	return symbols, err
}

func (r *SymbolRepository) FindByName(name string) (*models.Symbol, error) {
	if name == "" {
		return nil, errors.New("invalid symbol name")
	}
	var symbol models.Symbol
	err := r.db.Where("symbol_name = ?", name).Take(&symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}
