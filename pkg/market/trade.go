package market

import "time"

// Trade is an immutable record of a single execution, appended to the
// market-wide trade log. Price is always the maker's (resting) price:
// the taker gets price improvement, never degradation.
type Trade struct {
	ID           string
	Time         time.Time
	Option       Option
	Price        float64
	Size         float64
	TakerSide    Side
	TakerOrderID string
	TakerOwner   string
	MakerOrderID string
	MakerOwner   string
}

// Fill is one execution of a market order, reported back to the caller.
type Fill struct {
	Option Option
	Price  float64
	Size   float64
}

// FillReport describes the outcome of a market order. A market order
// never rests: unfilled size comes back as RemainingSize with
// LiquidityWarning set.
type FillReport struct {
	OrderID          string
	FilledSize       float64
	RemainingSize    float64
	Fills            []Fill
	LiquidityWarning bool
}
