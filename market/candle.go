package market

import "time"

// Candle represents one daily OHLC (Open, High, Low, Close) bar.
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// FlatCandle returns a candle whose OHLC all equal price.
func FlatCandle(t time.Time, price float64) Candle {
	return Candle{Time: t, Open: price, High: price, Low: price, Close: price}
}

// rebase scales every price of c by factor.
func (c Candle) rebase(factor float64) Candle {
	c.Open *= factor
	c.High *= factor
	c.Low *= factor
	c.Close *= factor
	return c
}
