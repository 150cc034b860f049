package market

import (
	"errors"
	"time"
)

// ErrNoData is returned when a series has no usable candles.
var ErrNoData = errors.New("no price data")

// Series is an ordered sequence of daily candles, oldest first.
// Index 0 is simulated day 1.
type Series []Candle

// Len returns the number of candles in the series.
func (s Series) Len() int { return len(s) }

// Close returns the closing price at index i.
func (s Series) Close(i int) float64 { return s[i].Close }

// First returns the oldest candle. It panics on an empty series.
func (s Series) First() Candle { return s[0] }

// Last returns the newest candle. It panics on an empty series.
func (s Series) Last() Candle { return s[len(s)-1] }

// Window returns the first n candles as a view onto s. The capacity of the
// result is capped at n so appending to it can never overwrite s.
func (s Series) Window(n int) Series {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n:n]
}

// Relative returns a rebased copy of s in which every price is expressed
// relative to the first candle's open: v' = base * v / first.Open.
func (s Series) Relative(base float64) Series {
	if len(s) == 0 || s[0].Open == 0 {
		return s
	}
	factor := base / s[0].Open
	out := make(Series, len(s))
	for i, c := range s {
		out[i] = c.rebase(factor)
	}
	return out
}

// Since returns the suffix of s starting at the first candle at or after t.
func (s Series) Since(t time.Time) Series {
	for i, c := range s {
		if !c.Time.Before(t) {
			return s[i:]
		}
	}
	return s[len(s):]
}

// LastYears keeps the trailing years of history, measured back from the
// newest candle. years <= 0 returns s unchanged.
func (s Series) LastYears(years int) Series {
	if years <= 0 || len(s) == 0 {
		return s
	}
	return s.Since(s.Last().Time.AddDate(-years, 0, 0))
}

// FromCloses builds a daily series of flat candles starting at start.
func FromCloses(start time.Time, closes ...float64) Series {
	s := make(Series, len(closes))
	for i, c := range closes {
		s[i] = FlatCandle(start.AddDate(0, 0, i), c)
	}
	return s
}
