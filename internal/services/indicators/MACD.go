package indicators

type MACDService struct {
	ema *EMAService
}

// MACDPoint is the latest MACD reading used in reports.
type MACDPoint struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

func NewMACDService() *MACDService {
	return &MACDService{ema: NewEMAService()}
}

// Latest returns the most recent MACD line, signal line and histogram.
// Standard periods are fast=12, slow=26, signal=9. Nil when the series
// is too short.
func (s *MACDService) Latest(closes []float64, fastPeriod, slowPeriod, signalPeriod int) *MACDPoint {
	minLength := slowPeriod + signalPeriod - 1
	if len(closes) < minLength || fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 {
		return nil
	}

	fastEMA := s.ema.Calculate(closes, fastPeriod)
	slowEMA := s.ema.Calculate(closes, slowPeriod)

	macdLine := make([]float64, len(closes))
	for i := slowPeriod - 1; i < len(closes); i++ {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := s.ema.Calculate(macdLine, signalPeriod)

	last := len(closes) - 1
	return &MACDPoint{
		MACD:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}
}
