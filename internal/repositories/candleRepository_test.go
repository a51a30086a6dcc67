package repositories

import (
	"testing"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/timeframes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCandle(endDate time.Time, close float64) *models.Candle {
	return &models.Candle{
		SourceID: models.SourceBinance,
		EndDate:  endDate,
		Open:     close - 1,
		High:     close + 2,
		Low:      close - 2,
		Close:    close,
		Last:     close,
		Volume:   10,
		VolQuote: 10 * close,
	}
}

func TestSaveCandleIdempotentUpsert(t *testing.T) {
	repo := NewCandleRepository(openTestDB(t), timeframes.Daily)
	endDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveCandle(1, newCandle(endDate, 100)))
	require.NoError(t, repo.SaveCandle(1, newCandle(endDate, 105)))

	all, err := repo.GetAllCandles(1)
	require.NoError(t, err)
	require.Len(t, all, 1, "re-saving the same bucket must not create a second row")
	assert.Equal(t, 105.0, all[0].Close, "the second save's values win")
}

func TestSaveCandleHourlyDerivesOpenTime(t *testing.T) {
	repo := NewCandleRepository(openTestDB(t), timeframes.Hourly)
	endDate := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)

	candle := newCandle(endDate, 100)
	bogus := endDate.Add(-45 * time.Minute) // caller-supplied open time is not trusted
	candle.OpenTime = &bogus
	require.NoError(t, repo.SaveCandle(1, candle))

	stored, err := repo.GetCandle(1, endDate)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.OpenTime)
	assert.True(t, stored.OpenTime.UTC().Equal(endDate.Add(-time.Hour)),
		"open_time must be end_date minus one hour, got %s", stored.OpenTime)
}

func TestGetCandleAbsentReturnsNil(t *testing.T) {
	repo := NewCandleRepository(openTestDB(t), timeframes.Daily)

	candle, err := repo.GetCandle(1, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, candle)
}

func TestGetCandlesRangeAscending(t *testing.T) {
	repo := NewCandleRepository(openTestDB(t), timeframes.Hourly)
	base := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	// Insert out of order; the range query must come back ascending.
	for _, h := range []int{3, 1, 2, 5} {
		require.NoError(t, repo.SaveCandle(1, newCandle(base.Add(time.Duration(h)*time.Hour), float64(100+h))))
	}
	// Another symbol's rows must not leak in.
	require.NoError(t, repo.SaveCandle(2, newCandle(base.Add(2*time.Hour), 999)))

	candles, err := repo.GetCandles(1, base.Add(time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, candles, 3)
	for i, want := range []float64{101, 102, 103} {
		assert.Equal(t, want, candles[i].Close)
	}
}

func TestGetMinAndMaxCandleDate(t *testing.T) {
	repo := NewCandleRepository(openTestDB(t), timeframes.Daily)

	minDate, err := repo.GetMinCandleDate()
	require.NoError(t, err)
	assert.Nil(t, minDate, "empty table has no min date")

	first := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	last := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveCandle(1, newCandle(last, 110)))
	require.NoError(t, repo.SaveCandle(1, newCandle(first, 100)))
	require.NoError(t, repo.SaveCandle(2, newCandle(first.AddDate(0, 0, 1), 50)))

	minDate, err = repo.GetMinCandleDate()
	require.NoError(t, err)
	require.NotNil(t, minDate)
	assert.True(t, minDate.Equal(first), "min spans all symbols")

	maxDate, err := repo.GetMaxCandleDate(1)
	require.NoError(t, err)
	require.NotNil(t, maxDate)
	assert.True(t, maxDate.Equal(last))

	maxDate, err = repo.GetMaxCandleDate(3)
	require.NoError(t, err)
	assert.Nil(t, maxDate, "symbol without rows has no max date")
}

func TestCandleTablesAreIndependent(t *testing.T) {
	db := openTestDB(t)
	daily := NewCandleRepository(db, timeframes.Daily)
	hourly := NewCandleRepository(db, timeframes.Hourly)
	endDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, daily.SaveCandle(1, newCandle(endDate, 100)))

	candles, err := hourly.GetAllCandles(1)
	require.NoError(t, err)
	assert.Empty(t, candles)
}
