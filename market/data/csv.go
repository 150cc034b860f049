package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradegame/market"
)

// CSVProvider reads daily candles from <Dir>/<symbol>.csv.
//
// Two layouts are understood, chosen by the header row:
//
//	Date,Open,High,Low,Close,Adj Close,Volume   (Yahoo download)
//	time,open,high,low,close,volume             (canonical, see WriteCSV)
//
// Only the time and close columns are required. Rows with empty or "null"
// closes are skipped.
type CSVProvider struct {
	Dir    string
	Roster market.Roster
}

func NewCSVProvider(dir string, roster market.Roster) *CSVProvider {
	return &CSVProvider{Dir: dir, Roster: roster}
}

func (p *CSVProvider) Fetch(ctx context.Context, req market.FetchRequest) (market.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sym, err := p.Roster.Symbol(req.Instrument)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(p.Dir, sym+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv provider: %w", err)
	}
	defer f.Close()

	s, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv provider %s: %w", path, err)
	}
	return s.LastYears(req.Years), nil
}

var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return floorDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

func floorDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// ReadCSV parses a candle CSV with a header row. The result is sorted by
// time, oldest first.
func ReadCSV(r io.Reader) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, market.ErrNoData
	}
	if err != nil {
		return nil, err
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	timeCol, ok := cols["date"]
	if !ok {
		if timeCol, ok = cols["time"]; !ok {
			return nil, fmt.Errorf("missing date/time column")
		}
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, fmt.Errorf("missing close column")
	}

	var out market.Series
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= timeCol || len(row) <= closeCol {
			continue
		}

		cl, ok, err := field(row, closeCol)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		t, err := parseDay(row[timeCol])
		if err != nil {
			return nil, err
		}

		c := market.FlatCandle(t, cl)
		for name, dst := range map[string]*float64{"open": &c.Open, "high": &c.High, "low": &c.Low, "volume": &c.Volume} {
			i, present := cols[name]
			if !present {
				continue
			}
			v, ok, err := field(row, i)
			if err != nil {
				return nil, err
			}
			if ok {
				*dst = v
			}
		}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, market.ErrNoData
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// field parses a float column; ok is false for blank or null cells.
func field(row []string, i int) (v float64, ok bool, err error) {
	if i >= len(row) {
		return 0, false, nil
	}
	s := strings.TrimSpace(row[i])
	if s == "" || strings.EqualFold(s, "null") {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad number %q: %w", s, err)
	}
	return v, true, nil
}

// WriteCSV writes s in the canonical layout read back by ReadCSV.
func WriteCSV(w io.Writer, s market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range s {
		row := []string{
			c.Time.UTC().Format("2006-01-02"),
			num(c.Open), num(c.High), num(c.Low), num(c.Close), num(c.Volume),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
