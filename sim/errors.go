package sim

import (
	"errors"

	"github.com/rustyeddy/tradegame/market"
)

var (
	// ErrDataUnavailable means the engine could not be built because a
	// price series was missing, failed to load or was too short.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrOutOfRange means a simulated day has no cached price.
	ErrOutOfRange = errors.New("day out of range")

	ErrInsufficientFunds    = errors.New("not enough funds")
	ErrInsufficientHoldings = errors.New("not enough shares")
	ErrInvalidSide          = errors.New("invalid order side")
	ErrInvalidQuantity      = errors.New("invalid quantity")

	ErrUnknownInstrument = market.ErrUnknownInstrument
)
