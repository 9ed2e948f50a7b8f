package market

import (
	"time"

	"github.com/google/uuid"
)

// crosses reports whether the incoming (taker) order can trade against
// a resting (maker) order. An incoming BUY crosses a SELL at price P
// iff its price >= P; an incoming SELL crosses a BUY at P iff its
// price <= P. Comparisons use PriceEpsilon. The predicate is the same
// for YES and NO books; each option matches independently.
func crosses(taker, maker *Order) bool {
	if priceEq(taker.Price, maker.Price) {
		return true
	}
	if taker.Side == Buy {
		return taker.Price > maker.Price
	}
	return taker.Price < maker.Price
}

// matchOrder crosses an incoming order against the opposing book,
// recording a Trade per execution. Execution price is the maker's.
// Returns the order with its reduced size if anything is left, nil if
// fully filled. The caller holds m.mu and decides what to do with the
// remainder (rest it for limit orders, report it for market orders).
//
// For a limit order the pass stops at the first non-crossing head: the
// book is priority sorted, so nothing behind the head can cross either.
// A market order instead skips the head and walks every remaining
// price level until filled or the book is exhausted.
func (m *Market) matchOrder(o *Order) *Order {
	opposing := m.book(o.Option, o.Side.Opposite())

	remaining := o.Size
	i := 0
	for remaining > 0 && i < len(opposing.orders) {
		head := opposing.orders[i]

		if !crosses(o, head) {
			if o.kind == marketOrder {
				i++
				continue
			}
			break
		}

		execSize := remaining
		if head.Size < execSize {
			execSize = head.Size
		}

		m.trades = append(m.trades, Trade{
			ID:           uuid.NewString(),
			Time:         time.Now(),
			Option:       o.Option,
			Price:        head.Price,
			Size:         execSize,
			TakerSide:    o.Side,
			TakerOrderID: o.ID,
			TakerOwner:   o.Owner,
			MakerOrderID: head.ID,
			MakerOwner:   head.Owner,
		})

		remaining -= execSize
		head.Size -= execSize

		if head.Size <= 0 {
			opposing.orders = append(opposing.orders[:i], opposing.orders[i+1:]...)
		} else {
			// Partially filled maker stays at the front.
			i++
		}
	}

	if remaining <= 0 {
		return nil
	}
	o.Size = remaining
	return o
}
