package market

import "errors"

// Validation failures are synchronous and happen before any state
// mutation: a rejected operation leaves the market untouched. None of
// these are retried internally.
var (
	ErrInvalidSide        = errors.New("side must be BUY or SELL")
	ErrInvalidOption      = errors.New("option must be YES or NO")
	ErrInvalidPrice       = errors.New("price must be between 0 and 1")
	ErrInvalidSize        = errors.New("size must be positive")
	ErrInvalidProbability = errors.New("probability must be between 0 and 1")
	ErrMarketResolved     = errors.New("market is already resolved")
	ErrInvalidOutcome     = errors.New("invalid resolution outcome")
)
