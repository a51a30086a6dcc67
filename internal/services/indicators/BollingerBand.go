package indicators

import "math"

type BBandsService struct{}

// BBandsPoint is the latest band reading. Position is where the close
// sits between the bands: 0 on the lower band, 1 on the upper.
type BBandsPoint struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Width    float64
	Position float64
}

func NewBBandsService() *BBandsService {
	return &BBandsService{}
}

// Latest computes the bands over the trailing period. Nil when the
// series is too short.
func (s *BBandsService) Latest(closes []float64, period int, deviations float64) *BBandsPoint {
	if period <= 0 || len(closes) < period {
		return nil
	}

	window := closes[len(closes)-period:]

	sum := 0.0
	for _, c := range window {
		sum += c
	}
	sma := sum / float64(period)

	squareSum := 0.0
	for _, c := range window {
		diff := c - sma
		squareSum += diff * diff
	}
	stdDev := math.Sqrt(squareSum / float64(period))

	p := &BBandsPoint{
		Upper:  sma + deviations*stdDev,
		Middle: sma,
		Lower:  sma - deviations*stdDev,
	}
	if p.Middle != 0 {
		p.Width = (p.Upper - p.Lower) / p.Middle
	}
	if span := p.Upper - p.Lower; span > 0 {
		p.Position = (closes[len(closes)-1] - p.Lower) / span
	}
	return p
}
