package market

import (
	"context"
	"fmt"
	"sync"
)

// FetchRequest asks a provider for the daily history of one instrument.
type FetchRequest struct {
	Instrument string
	Years      int
}

// SeriesProvider resolves the full price history of an instrument.
type SeriesProvider interface {
	Fetch(ctx context.Context, req FetchRequest) (Series, error)
}

// ProviderFunc adapts a function to SeriesProvider.
type ProviderFunc func(ctx context.Context, req FetchRequest) (Series, error)

func (f ProviderFunc) Fetch(ctx context.Context, req FetchRequest) (Series, error) {
	return f(ctx, req)
}

// StaticProvider serves series held in memory. It ignores Years.
type StaticProvider struct {
	mu     sync.RWMutex
	series map[string]Series
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{series: make(map[string]Series)}
}

// Set stores s for instrument, replacing any previous series.
func (p *StaticProvider) Set(instrument string, s Series) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series[instrument] = s
}

func (p *StaticProvider) Fetch(ctx context.Context, req FetchRequest) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.series[req.Instrument]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, req.Instrument)
	}
	return s, nil
}

// RelativeProvider rebases every series returned by Next so the first open
// equals Base. A zero Base passes series through untouched.
type RelativeProvider struct {
	Next SeriesProvider
	Base float64
}

func (p RelativeProvider) Fetch(ctx context.Context, req FetchRequest) (Series, error) {
	s, err := p.Next.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if p.Base == 0 {
		return s, nil
	}
	return s.Relative(p.Base), nil
}
