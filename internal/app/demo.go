package app

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rustyeddy/tradegame/market"
)

// demoDays is ten years of calendar days, enough for any HistoryYears a
// demo game is likely to ask for.
const demoDays = 3650

var demoStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// DemoProvider serves a synthetic daily series for every roster entry. The
// walk is seeded from the instrument symbol, so a given roster always
// produces the same prices. Like the file and HTTP sources it keeps only
// the requested trailing years.
func DemoProvider(roster market.Roster) market.SeriesProvider {
	p := market.NewStaticProvider()
	for _, in := range roster.Instruments() {
		p.Set(in.Name, RandomWalk(in.Symbol, demoStart, demoDays))
	}
	return market.ProviderFunc(func(ctx context.Context, req market.FetchRequest) (market.Series, error) {
		s, err := p.Fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		return s.LastYears(req.Years), nil
	})
}

// RandomWalk returns a deterministic geometric random walk of n daily
// candles keyed by seed. Prices start between 10 and 200 and move about
// 2% a day.
func RandomWalk(seed string, start time.Time, n int) market.Series {
	h := fnv.New64a()
	h.Write([]byte(seed))
	r := rand.New(rand.NewPCG(h.Sum64(), uint64(n)))

	price := 10 + r.Float64()*190
	s := make(market.Series, n)
	for i := range s {
		open := price
		price *= math.Exp(r.NormFloat64() * 0.02)
		price = math.Round(price*100) / 100
		if price < 0.01 {
			price = 0.01
		}
		s[i] = market.Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   open,
			High:   math.Max(open, price),
			Low:    math.Min(open, price),
			Close:  price,
			Volume: float64(1000 + r.IntN(100000)),
		}
	}
	return s
}
