package market

import (
	"fmt"
	"strings"
	"time"
)

// Side is the direction of an order.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "Unknown"
	}
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) valid() bool { return s == Buy || s == Sell }

// ParseSide converts user input ("buy"/"sell", any case) to a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// Option is one of the two outcomes of a binary market.
type Option int8

const (
	Yes Option = iota
	No
)

func (o Option) String() string {
	switch o {
	case Yes:
		return "YES"
	case No:
		return "NO"
	default:
		return "Unknown"
	}
}

func (o Option) valid() bool { return o == Yes || o == No }

// ParseOption converts user input ("yes"/"no", any case) to an Option.
func ParseOption(s string) (Option, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES":
		return Yes, nil
	case "NO":
		return No, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOption, s)
	}
}

// orderKind distinguishes limit orders from market orders inside the
// matching pass. Market orders are encoded as limit orders at an extreme
// price (1.0 for BUY, 0.0 for SELL) and walk the whole book; their
// remainder is never rested.
type orderKind int8

const (
	limitOrder orderKind = iota
	marketOrder
)

// Order is a resting or incoming order. Identity fields are fixed at
// creation; only Size mutates (it decreases on fills). An order with
// Size <= 0 never rests in a book.
type Order struct {
	ID        string
	Side      Side
	Option    Option
	Price     float64 // in [0,1]
	Size      float64
	CreatedAt time.Time
	Owner     string

	kind orderKind
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(id=%s, side=%s, option=%s, price=%.3f, size=%.2f)",
		o.ID, o.Side, o.Option, o.Price, o.Size)
}
