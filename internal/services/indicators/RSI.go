package indicators

import "math"

type RSIService struct {
	ema *EMAService
}

func NewRSIService() *RSIService {
	return &RSIService{ema: NewEMAService()}
}

// Calculate computes the RSI series from closes. Entries before the
// first full period are zero; nil when the series is too short.
func (s *RSIService) Calculate(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = math.Abs(change)
		}
	}

	avgGain := s.ema.Calculate(gains, period)
	avgLoss := s.ema.Calculate(losses, period)

	rsi := make([]float64, len(closes))
	for i := period; i < len(closes); i++ {
		if avgLoss[i] == 0 {
			rsi[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		rsi[i] = 100 - (100 / (1 + rs))
	}
	return rsi
}

// Latest returns the most recent RSI value, or zero when the series is
// too short.
func (s *RSIService) Latest(closes []float64, period int) float64 {
	rsi := s.Calculate(closes, period)
	if rsi == nil {
		return 0
	}
	return rsi[len(rsi)-1]
}
