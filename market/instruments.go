// market/instruments.go
package market

import (
	"errors"
	"fmt"
)

// ErrUnknownInstrument is returned for an instrument missing from a roster
// or a provider.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Instrument maps a display name to the symbol a data provider understands.
type Instrument struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// Roster is a static instrument table. It is passed to providers at
// construction, so engines with different instrument sets can coexist.
type Roster struct {
	order   []string
	symbols map[string]string
}

// NewRoster builds a roster, rejecting empty or duplicated names.
func NewRoster(instruments ...Instrument) (Roster, error) {
	r := Roster{symbols: make(map[string]string, len(instruments))}
	for _, in := range instruments {
		if in.Name == "" {
			return Roster{}, fmt.Errorf("roster: instrument name is required")
		}
		if _, dup := r.symbols[in.Name]; dup {
			return Roster{}, fmt.Errorf("roster: duplicate instrument %q", in.Name)
		}
		sym := in.Symbol
		if sym == "" {
			sym = in.Name
		}
		r.order = append(r.order, in.Name)
		r.symbols[in.Name] = sym
	}
	return r, nil
}

// Symbol resolves an instrument name to its provider symbol.
func (r Roster) Symbol(name string) (string, error) {
	sym, ok := r.symbols[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownInstrument, name)
	}
	return sym, nil
}

// Names returns instrument names in declaration order.
func (r Roster) Names() []string {
	return append([]string(nil), r.order...)
}

// Instruments returns the table entries in declaration order.
func (r Roster) Instruments() []Instrument {
	out := make([]Instrument, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, Instrument{Name: n, Symbol: r.symbols[n]})
	}
	return out
}

// Len returns the number of instruments.
func (r Roster) Len() int { return len(r.order) }

// DefaultInstruments is the stock table the game ships with: Budapest
// dividend and accumulating names plus two US large caps.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Name: "OTP", Symbol: "OTP.BD"},
		{Name: "MOL", Symbol: "MOL.BD"},
		{Name: "Alteo", Symbol: "ALTEO.BD"},
		{Name: "Waberers", Symbol: "WABERERS.BD"},
		{Name: "Opus", Symbol: "OPUS.BD"},
		{Name: "Appeninn", Symbol: "APPENINN.BD"},
		{Name: "Microsoft", Symbol: "MSFT"},
		{Name: "Apple", Symbol: "AAPL"},
	}
}

// DefaultRoster returns a fresh roster of DefaultInstruments.
func DefaultRoster() Roster {
	r, err := NewRoster(DefaultInstruments()...)
	if err != nil {
		panic(err)
	}
	return r
}
