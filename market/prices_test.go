package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider()
	p.Set("ACME", FromCloses(day0, 1, 2))

	s, err := p.Fetch(context.Background(), FetchRequest{Instrument: "ACME", Years: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = p.Fetch(context.Background(), FetchRequest{Instrument: "NOPE"})
	assert.True(t, errors.Is(err, ErrUnknownInstrument))
}

func TestStaticProviderCanceled(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider()
	p.Set("ACME", FromCloses(day0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Fetch(ctx, FetchRequest{Instrument: "ACME"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelativeProvider(t *testing.T) {
	t.Parallel()

	var seen FetchRequest
	next := ProviderFunc(func(ctx context.Context, req FetchRequest) (Series, error) {
		seen = req
		return Series{{Time: day0, Open: 20, Close: 30}}, nil
	})

	s, err := RelativeProvider{Next: next, Base: 100}.Fetch(context.Background(), FetchRequest{Instrument: "X", Years: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, seen.Years)
	assert.InDelta(t, 150.0, s[0].Close, 1e-9)

	s, err = RelativeProvider{Next: next}.Fetch(context.Background(), FetchRequest{Instrument: "X"})
	require.NoError(t, err)
	assert.Equal(t, 30.0, s[0].Close)
}

func TestRelativeProviderPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	next := ProviderFunc(func(ctx context.Context, req FetchRequest) (Series, error) {
		return nil, boom
	})
	_, err := RelativeProvider{Next: next, Base: 100}.Fetch(context.Background(), FetchRequest{})
	assert.ErrorIs(t, err, boom)
}
