package indicators

// EMAService provides Exponential Moving Average calculations over
// candle close series.
type EMAService struct{}

func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes the EMA for the whole series. Entries before the
// first full period are zero. Returns nil when the series is shorter
// than the period.
func (s *EMAService) Calculate(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}

	ema := make([]float64, len(closes))
	multiplier := 2.0 / float64(period+1)

	// Seed with the SMA of the first period
	sum := 0.0
	for _, c := range closes[:period] {
		sum += c
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < len(closes); i++ {
		ema[i] = (closes[i]-ema[i-1])*multiplier + ema[i-1]
	}
	return ema
}

// Latest returns the EMA of the last point, or zero when the series is
// too short.
func (s *EMAService) Latest(closes []float64, period int) float64 {
	ema := s.Calculate(closes, period)
	if ema == nil {
		return 0
	}
	return ema[len(ema)-1]
}
