package repositories

import (
	"testing"
	"time"

	"CryptoMarketBot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot(symbolID uint, hour time.Time, lastTradeID int64) *models.CVDHourlySnapshot {
	return &models.CVDHourlySnapshot{
		SymbolID:      symbolID,
		HourTimestamp: hour,
		CVD:           5,
		BuyVolume:     10,
		SellVolume:    5,
		TradeCount:    10,
		LargeBuyCount: 1,
		AvgTradeSize:  1.5,
		LastTradeID:   lastTradeID,
	}
}

func TestSaveHourlySnapshotInsertThenAdd(t *testing.T) {
	repo := NewCVDRepository(openTestDB(t))
	hour := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := newSnapshot(1, hour, 100)
	first.BuyVolume = 10
	require.NoError(t, repo.SaveHourlySnapshot(first))

	update := newSnapshot(1, hour, 150)
	update.BuyVolume = 5
	require.NoError(t, repo.SaveHourlySnapshot(update))

	stored, err := repo.getSnapshot(1, hour)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 15.0, stored.BuyVolume, "volumes add, they do not replace")
	assert.Equal(t, int64(150), stored.LastTradeID)
}

func TestSaveHourlySnapshotStaleTradeIDIsNoOp(t *testing.T) {
	repo := NewCVDRepository(openTestDB(t))
	hour := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := newSnapshot(1, hour, 5)
	first.TradeCount = 10
	require.NoError(t, repo.SaveHourlySnapshot(first))

	// Incoming id 3 is not strictly greater than 5: nothing changes.
	stale := newSnapshot(1, hour, 3)
	stale.TradeCount = 4
	require.NoError(t, repo.SaveHourlySnapshot(stale))

	stored, err := repo.getSnapshot(1, hour)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.TradeCount)
	assert.Equal(t, int64(5), stored.LastTradeID)

	// Equal id is just as stale.
	equal := newSnapshot(1, hour, 5)
	equal.TradeCount = 4
	require.NoError(t, repo.SaveHourlySnapshot(equal))

	stored, err = repo.getSnapshot(1, hour)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.TradeCount)

	// Strictly greater id applies additively and moves the mark.
	newer := newSnapshot(1, hour, 8)
	newer.TradeCount = 4
	require.NoError(t, repo.SaveHourlySnapshot(newer))

	stored, err = repo.getSnapshot(1, hour)
	require.NoError(t, err)
	assert.Equal(t, int64(14), stored.TradeCount)
	assert.Equal(t, int64(8), stored.LastTradeID)
}

func TestAggregateCVDForHours(t *testing.T) {
	repo := NewCVDRepository(openTestDB(t))

	window, err := repo.AggregateCVDForHours(1, 24)
	require.NoError(t, err)
	assert.Nil(t, window, "no rows means no window, not a zero window")

	now := time.Now().UTC().Truncate(time.Hour)
	recent := newSnapshot(1, now.Add(-time.Hour), 100)
	recent.CVD = 3
	recent.AvgTradeSize = 2
	require.NoError(t, repo.SaveHourlySnapshot(recent))

	older := newSnapshot(1, now.Add(-5*time.Hour), 90)
	older.CVD = -1
	older.AvgTradeSize = 4
	require.NoError(t, repo.SaveHourlySnapshot(older))

	outside := newSnapshot(1, now.Add(-30*time.Hour), 10)
	require.NoError(t, repo.SaveHourlySnapshot(outside))

	window, err = repo.AggregateCVDForHours(1, 24)
	require.NoError(t, err)
	require.NotNil(t, window)
	assert.Equal(t, 2.0, window.CVD, "sums only rows inside the window")
	assert.Equal(t, 20.0, window.BuyVolume)
	assert.Equal(t, int64(20), window.TradeCount)
	assert.Equal(t, 3.0, window.AvgTradeSize, "avg trade size is averaged, not summed")

	// A 4h window excludes the 5h-old row.
	window, err = repo.AggregateCVDForHours(1, 4)
	require.NoError(t, err)
	require.NotNil(t, window)
	assert.Equal(t, 3.0, window.CVD)
}

func TestCleanupOldSnapshots(t *testing.T) {
	repo := NewCVDRepository(openTestDB(t))
	now := time.Now().UTC().Truncate(time.Hour)

	require.NoError(t, repo.SaveHourlySnapshot(newSnapshot(1, now.Add(-time.Hour), 100)))
	require.NoError(t, repo.SaveHourlySnapshot(newSnapshot(1, now.Add(-100*time.Hour), 50)))
	require.NoError(t, repo.SaveHourlySnapshot(newSnapshot(2, now.Add(-100*time.Hour), 60)))

	deleted := repo.CleanupOldSnapshots(1, 48)
	assert.Equal(t, 1, deleted)

	// The other symbol's expired row is untouched by this symbol's sweep.
	stored, err := repo.getSnapshot(2, now.Add(-100*time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, stored)

	kept, err := repo.getSnapshot(1, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestGetLastTradeID(t *testing.T) {
	repo := NewCVDRepository(openTestDB(t))

	id, err := repo.GetLastTradeID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	now := time.Now().UTC().Truncate(time.Hour)
	require.NoError(t, repo.SaveHourlySnapshot(newSnapshot(1, now.Add(-2*time.Hour), 100)))
	require.NoError(t, repo.SaveHourlySnapshot(newSnapshot(1, now.Add(-time.Hour), 250)))

	id, err = repo.GetLastTradeID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), id)
}

func TestSaveIndicatorUpsert(t *testing.T) {
	repo := NewCVDRepository(openTestDB(t))
	date := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveIndicator(&models.CVDIndicator{
		SymbolID: 1, CVD24h: 10, IndicatorDate: date,
	}))
	require.NoError(t, repo.SaveIndicator(&models.CVDIndicator{
		SymbolID: 1, CVD24h: 20, IndicatorDate: date,
	}))

	var rows []models.CVDIndicator
	require.NoError(t, repo.db.Where("symbol_id = ?", 1).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 20.0, rows[0].CVD24h, "indicator upsert replaces the row")
}
