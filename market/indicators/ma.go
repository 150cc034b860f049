// Package indicators computes simple trend figures over a price series.
package indicators

import (
	"fmt"

	"github.com/rustyeddy/tradegame/market"
)

// SMA is the simple moving average of the last period closes.
func SMA(s market.Series, period int) (float64, error) {
	if err := check(s, period); err != nil {
		return 0, err
	}

	sum := 0.0
	for i := s.Len() - period; i < s.Len(); i++ {
		sum += s.Close(i)
	}
	return sum / float64(period), nil
}

// EMA is the exponential moving average of closes, seeded with the SMA of
// the first period closes.
func EMA(s market.Series, period int) (float64, error) {
	if err := check(s, period); err != nil {
		return 0, err
	}

	k := 2.0 / float64(period+1)

	ema := 0.0
	for i := 0; i < period; i++ {
		ema += s.Close(i)
	}
	ema /= float64(period)

	for i := period; i < s.Len(); i++ {
		ema = (s.Close(i)-ema)*k + ema
	}
	return ema, nil
}

// Change is the fractional move of the close over the last period days:
// 0.1 means up 10%.
func Change(s market.Series, period int) (float64, error) {
	if err := check(s, period+1); err != nil {
		return 0, err
	}
	from := s.Close(s.Len() - 1 - period)
	if from == 0 {
		return 0, fmt.Errorf("zero close %d days back", period)
	}
	return s.Last().Close/from - 1, nil
}

func check(s market.Series, period int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	if s.Len() < period {
		return fmt.Errorf("not enough candles: need %d, got %d", period, s.Len())
	}
	return nil
}
