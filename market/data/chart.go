package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tradegame/market"
)

// DefaultChartURL is the public Yahoo Finance chart API host.
const DefaultChartURL = "https://query1.finance.yahoo.com"

// ChartProvider downloads daily candles from a Yahoo-style chart endpoint:
//
//	GET {BaseURL}/v8/finance/chart/{symbol}?range=3y&interval=1d
//
// Requests are paced by a token bucket so a large roster does not trip the
// upstream rate limit.
type ChartProvider struct {
	BaseURL string
	Roster  market.Roster
	HTTP    *http.Client

	limiter *rate.Limiter
}

// NewChartProvider returns a provider allowing perMinute requests per minute
// (<= 0 disables pacing). timeout bounds each HTTP request.
func NewChartProvider(baseURL string, roster market.Roster, perMinute int, timeout time.Duration) *ChartProvider {
	if baseURL == "" {
		baseURL = DefaultChartURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if perMinute > 0 {
		lim = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
	}
	return &ChartProvider{
		BaseURL: baseURL,
		Roster:  roster,
		HTTP:    &http.Client{Timeout: timeout},
		limiter: lim,
	}
}

func (p *ChartProvider) Fetch(ctx context.Context, req market.FetchRequest) (market.Series, error) {
	sym, err := p.Roster.Symbol(req.Instrument)
	if err != nil {
		return nil, err
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = "/v8/finance/chart/" + url.PathEscape(sym)

	rng := "max"
	if req.Years > 0 {
		rng = fmt.Sprintf("%dy", req.Years)
	}
	q := u.Query()
	q.Set("range", rng)
	q.Set("interval", "1d")
	u.RawQuery = q.Encode()

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", "tradegame/1.0")

	httpClient := p.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("chart %s http %d: %s", sym, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}

	s, err := ParseChart(body)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", sym, err)
	}
	return s.LastYears(req.Years), nil
}

// ParseChart decodes a chart API response body into a daily series.
func ParseChart(body []byte) (market.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json")
	}

	if e := gjson.GetBytes(body, "chart.error"); e.Exists() && e.Type != gjson.Null {
		return nil, fmt.Errorf("%s: %s", e.Get("code").String(), e.Get("description").String())
	}

	res := gjson.GetBytes(body, "chart.result.0")
	if !res.Exists() {
		return nil, market.ErrNoData
	}

	stamps := res.Get("timestamp").Array()
	quote := res.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	out := make(market.Series, 0, len(stamps))
	for i, ts := range stamps {
		cl, ok := at(closes, i)
		if !ok {
			continue
		}
		c := market.FlatCandle(floorDay(time.Unix(ts.Int(), 0)), cl)
		if v, ok := at(opens, i); ok {
			c.Open = v
		}
		if v, ok := at(highs, i); ok {
			c.High = v
		}
		if v, ok := at(lows, i); ok {
			c.Low = v
		}
		if v, ok := at(volumes, i); ok {
			c.Volume = v
		}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, market.ErrNoData
	}
	return out, nil
}

func at(vals []gjson.Result, i int) (float64, bool) {
	if i >= len(vals) || vals[i].Type != gjson.Number {
		return 0, false
	}
	return vals[i].Float(), true
}
