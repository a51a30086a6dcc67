package candles

import (
	"context"
	"testing"
	"time"

	"CryptoMarketBot/internal/models"
	"CryptoMarketBot/internal/repositories"
	"CryptoMarketBot/internal/services/sources"
	"CryptoMarketBot/internal/timeframes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repositories.Migrate(db, "sqlite"))
	return db
}

// fakeSource serves deterministic candles: close = base + hours since
// epoch of the bucket end. Buckets listed in unavailable yield no data.
type fakeSource struct {
	fetchCalls  int
	unavailable map[int64]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{unavailable: make(map[int64]bool)}
}

func (f *fakeSource) fetch(sym models.Symbol, tf timeframes.Timeframe, end time.Time) (*models.Candle, error) {
	f.fetchCalls++
	end = tf.Align(end)
	if f.unavailable[end.Unix()] {
		return nil, nil
	}
	close := fixtureClose(end)
	return &models.Candle{
		SymbolID: sym.SymbolID,
		SourceID: models.SourceBinance,
		EndDate:  end,
		Open:     close - 1,
		High:     close + 1,
		Low:      close - 2,
		Close:    close,
		Last:     close,
		Volume:   1,
		VolQuote: close,
	}, nil
}

func fixtureClose(end time.Time) float64 {
	return 1000 + float64(end.Unix()/3600%100)
}

func (f *fakeSource) FetchDailyKline(ctx context.Context, sym models.Symbol, end time.Time) (*models.Candle, error) {
	return f.fetch(sym, timeframes.Daily, end)
}

func (f *fakeSource) FetchHourlyKline(ctx context.Context, sym models.Symbol, end time.Time) (*models.Candle, error) {
	return f.fetch(sym, timeframes.Hourly, end)
}

func (f *fakeSource) FetchFifteenMinKline(ctx context.Context, sym models.Symbol, end time.Time) (*models.Candle, error) {
	return f.fetch(sym, timeframes.FifteenMin, end)
}

func (f *fakeSource) FetchCurrentTicker(ctx context.Context, sym models.Symbol) (*models.TickerPrice, error) {
	return nil, nil
}

func testSymbol() models.Symbol {
	return models.Symbol{SymbolID: 1, SymbolName: "BTC", FullName: "Bitcoin", SourceID: models.SourceBinance}
}

func newTestGapFiller(t *testing.T, fake *fakeSource) (*GapFiller, *repositories.CandleRepository, *repositories.CandleRepository) {
	t.Helper()
	db := openTestDB(t)

	registry := sources.NewRegistry()
	registry.Register(models.SourceBinance, fake)

	daily := repositories.NewCandleRepository(db, timeframes.Daily)
	hourly := repositories.NewCandleRepository(db, timeframes.Hourly)
	fifteen := repositories.NewCandleRepository(db, timeframes.FifteenMin)
	return NewGapFiller(registry, daily, hourly, fifteen), daily, hourly
}

func TestFetchRangeDenseBackfill(t *testing.T) {
	fake := newFakeSource()
	gapFiller, _, hourlyRepo := newTestGapFiller(t, fake)
	sym := testSymbol()

	start := time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	candles, err := gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly, start, end)
	require.NoError(t, err)
	require.Len(t, candles, 5)
	assert.Equal(t, 5, fake.fetchCalls)

	persisted, err := hourlyRepo.GetAllCandles(sym.SymbolID)
	require.NoError(t, err)
	require.Len(t, persisted, 5)

	for i, c := range persisted {
		wantEnd := start.Add(time.Duration(i) * time.Hour)
		assert.True(t, c.EndDate.UTC().Equal(wantEnd), "bucket %d end date", i)
		assert.Equal(t, fixtureClose(wantEnd), c.Close, "bucket %d close", i)
		require.NotNil(t, c.OpenTime, "bucket %d open time", i)
		assert.True(t, c.OpenTime.UTC().Equal(wantEnd.Add(-time.Hour)), "bucket %d open time derivation", i)
	}
}

func TestFetchRangeSecondRunFetchesNothing(t *testing.T) {
	fake := newFakeSource()
	gapFiller, _, hourlyRepo := newTestGapFiller(t, fake)
	sym := testSymbol()

	start := time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	_, err := gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly, start, end)
	require.NoError(t, err)
	callsAfterFirst := fake.fetchCalls

	candles, err := gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly, start, end)
	require.NoError(t, err)
	require.Len(t, candles, 5)
	assert.Equal(t, callsAfterFirst, fake.fetchCalls, "everything is cached, the second run's missing set is empty")

	persisted, err := hourlyRepo.GetAllCandles(sym.SymbolID)
	require.NoError(t, err)
	assert.Len(t, persisted, 5, "re-filling must not duplicate rows")
}

func TestFetchRangePartialBackfillRetries(t *testing.T) {
	fake := newFakeSource()
	gapFiller, _, _ := newTestGapFiller(t, fake)
	sym := testSymbol()

	start := time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	gap := start.Add(2 * time.Hour)
	fake.unavailable[gap.Unix()] = true

	candles, err := gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly, start, end)
	require.NoError(t, err)
	require.Len(t, candles, 4, "the unavailable bucket stays absent")
	for _, c := range candles {
		assert.False(t, c.EndDate.UTC().Equal(gap))
	}

	// Once the upstream has the bucket, the next run fetches only it.
	delete(fake.unavailable, gap.Unix())
	callsBefore := fake.fetchCalls

	candles, err = gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly, start, end)
	require.NoError(t, err)
	assert.Len(t, candles, 5)
	assert.Equal(t, callsBefore+1, fake.fetchCalls)
}

func TestFetchRangeAlignsInputs(t *testing.T) {
	fake := newFakeSource()
	gapFiller, _, _ := newTestGapFiller(t, fake)
	sym := testSymbol()

	// Unaligned inputs snap to hour boundaries before enumeration.
	start := time.Date(2025, 1, 10, 5, 17, 3, 0, time.UTC)
	end := time.Date(2025, 1, 10, 7, 44, 0, 0, time.UTC)

	candles, err := gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly, start, end)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.True(t, candles[0].EndDate.UTC().Equal(time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC)))
	assert.True(t, candles[2].EndDate.UTC().Equal(time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)))
}

func TestFetchSingleCandleCarriesStorageID(t *testing.T) {
	fake := newFakeSource()
	gapFiller, dailyRepo, _ := newTestGapFiller(t, fake)
	sym := testSymbol()

	endDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	candle, err := gapFiller.FetchDailyCandle(context.Background(), sym, endDate)
	require.NoError(t, err)
	require.NotNil(t, candle)
	assert.NotZero(t, candle.Id, "returned candle carries the storage-assigned id")
	assert.Equal(t, 1, fake.fetchCalls)

	// A second call is served from storage without touching the source.
	again, err := gapFiller.FetchDailyCandle(context.Background(), sym, endDate)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, candle.Id, again.Id)
	assert.Equal(t, 1, fake.fetchCalls)

	persisted, err := dailyRepo.GetAllCandles(sym.SymbolID)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestFetchSingleCandleNoDataReturnsNil(t *testing.T) {
	fake := newFakeSource()
	gapFiller, _, _ := newTestGapFiller(t, fake)
	sym := testSymbol()

	endDate := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	fake.unavailable[endDate.Unix()] = true

	candle, err := gapFiller.FetchHourlyCandle(context.Background(), sym, endDate)
	require.NoError(t, err)
	assert.Nil(t, candle)
}

func TestFetchRangeUnknownSourceFails(t *testing.T) {
	fake := newFakeSource()
	gapFiller, _, _ := newTestGapFiller(t, fake)

	sym := testSymbol()
	sym.SourceID = models.SourceKucoin // not registered

	_, err := gapFiller.FetchRange(context.Background(), sym, timeframes.Hourly,
		time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC), time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Zero(t, fake.fetchCalls)
}
