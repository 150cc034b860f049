// Package repl runs a line-oriented game session against an engine.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradegame/market/indicators"
	"github.com/rustyeddy/tradegame/sim"
)

const (
	defaultHistory = 10
	defaultTrend   = 20
)

var errQuit = errors.New("quit")

// Session plays one player's game. Commands are read from In one per line
// and answered on Out.
type Session struct {
	Engine *sim.Engine
	Player string
	In     io.Reader
	Out    io.Writer

	// Report writes a game report when set. Sessions without a queryable
	// journal leave it nil.
	Report func(w io.Writer) error
}

// Run reads commands until quit, EOF or ctx is done. Command errors are
// printed and play continues.
func (s *Session) Run(ctx context.Context) error {
	sc := bufio.NewScanner(s.In)
	s.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.Exec(sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.Out, "error: %v\n", err)
		}
		s.prompt()
	}
	return sc.Err()
}

func (s *Session) prompt() {
	fmt.Fprintf(s.Out, "[day %d] > ", s.Engine.Day(s.Player))
}

// Exec runs a single command line.
func (s *Session) Exec(line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(f[0]), f[1:]

	switch cmd {
	case "status", "s":
		return s.status()
	case "price", "p":
		return s.price(args)
	case "buy", "b":
		return s.trade(sim.Buy, args)
	case "sell":
		return s.trade(sim.Sell, args)
	case "max":
		return s.maxOrder(args)
	case "go", "g":
		return s.advance(args)
	case "history", "h":
		return s.history(args)
	case "trend", "t":
		return s.trend(args)
	case "report":
		if s.Report == nil {
			return errors.New("no journal to report from")
		}
		return s.Report(s.Out)
	case "help", "?":
		s.help()
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

// instrument resolves name case-insensitively against the engine roster.
func (s *Session) instrument(name string) (string, error) {
	for _, in := range s.Engine.Instruments() {
		if strings.EqualFold(in, name) {
			return in, nil
		}
	}
	return "", fmt.Errorf("%w: %q", sim.ErrUnknownInstrument, name)
}

func (s *Session) status() error {
	v, err := s.Engine.Valuation(s.Player)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "day %d  funds %s\n", v.Day, money(v.Funds))

	holdings := s.Engine.Holdings(s.Player)
	for _, in := range s.Engine.Instruments() {
		n := holdings[in]
		if n == 0 {
			continue
		}
		p, err := s.Engine.CurrentPrice(s.Player, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "  %-12s %6d @ %10s = %s\n", in, n, quote(p), money(float64(n)*p))
	}
	fmt.Fprintf(s.Out, "stocks %s  total %s\n", money(v.StockValue), money(v.TotalValue))
	return nil
}

func (s *Session) price(args []string) error {
	names := s.Engine.Instruments()
	if len(args) > 0 {
		in, err := s.instrument(args[0])
		if err != nil {
			return err
		}
		names = []string{in}
	}
	for _, in := range names {
		p, err := s.Engine.CurrentPrice(s.Player, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "%-12s %10s\n", in, quote(p))
	}
	return nil
}

func (s *Session) trade(side sim.Side, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s INSTRUMENT QUANTITY", strings.ToLower(string(side)))
	}
	in, err := s.instrument(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: %q", sim.ErrInvalidQuantity, args[1])
	}

	if side == sim.Buy {
		err = s.Engine.Buy(s.Player, in, qty)
	} else {
		err = s.Engine.Sell(s.Player, in, qty)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "%s %d %s, funds %s, holding %d\n",
		strings.ToLower(string(side)), qty, in,
		money(s.Engine.Funds(s.Player)), s.Engine.Holding(s.Player, in))
	return nil
}

func (s *Session) maxOrder(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: max buy|sell INSTRUMENT")
	}
	side, err := sim.ParseSide(args[0])
	if err != nil {
		return err
	}
	in, err := s.instrument(args[1])
	if err != nil {
		return err
	}
	n, err := s.Engine.MaxOrder(s.Player, in, side)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "max %s %s: %d\n", strings.ToLower(string(side)), in, n)
	return nil
}

func (s *Session) advance(args []string) error {
	n := 1
	if len(args) > 0 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("bad day count %q", args[0])
		}
	}
	credited, err := s.Engine.AdvanceDays(s.Player, n)
	if err != nil {
		return err
	}
	if credited > 0 {
		fmt.Fprintf(s.Out, "salary %s\n", money(credited))
	}
	return s.status()
}

func (s *Session) history(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: history INSTRUMENT [DAYS]")
	}
	in, err := s.instrument(args[0])
	if err != nil {
		return err
	}
	n := defaultHistory
	if len(args) > 1 {
		if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
			return fmt.Errorf("bad day count %q", args[1])
		}
	}

	series, err := s.Engine.AvailableSeries(s.Player, in)
	if err != nil {
		return err
	}
	from := max(0, series.Len()-n)
	for i := from; i < series.Len(); i++ {
		c := series[i]
		fmt.Fprintf(s.Out, "%4d  %s  %10s\n", i+1, c.Time.Format("2006-01-02"), quote(c.Close))
	}
	return nil
}

func (s *Session) trend(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: trend INSTRUMENT [DAYS]")
	}
	in, err := s.instrument(args[0])
	if err != nil {
		return err
	}
	n := defaultTrend
	if len(args) > 1 {
		if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
			return fmt.Errorf("bad day count %q", args[1])
		}
	}

	series, err := s.Engine.AvailableSeries(s.Player, in)
	if err != nil {
		return err
	}
	sma, err := indicators.SMA(series, n)
	if err != nil {
		return err
	}
	ema, err := indicators.EMA(series, n)
	if err != nil {
		return err
	}
	ch, err := indicators.Change(series, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "%s %dd: sma %s  ema %s  change %+.2f%%\n", in, n, quote(sma), quote(ema), ch*100)
	return nil
}

func (s *Session) help() {
	fmt.Fprint(s.Out, `commands:
  status                 funds, holdings and total value
  price [INSTRUMENT]     today's prices
  buy INSTRUMENT N       buy N shares (cost rounds up)
  sell INSTRUMENT N      sell N shares (proceeds round down)
  max buy|sell INSTR     largest order you can place
  go [N]                 advance N days (default 1)
  history INSTR [N]      last N closes (default 10)
  trend INSTR [N]        N-day averages and change (default 20)
  report                 game report from the journal
  quit
`)
}

func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func quote(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(4)
}
