package market

import "math"

// PriceEpsilon is the absolute tolerance used for every price
// comparison. Two prices closer than this are treated as equal.
const PriceEpsilon = 1e-9

func priceEq(a, b float64) bool { return math.Abs(a-b) <= PriceEpsilon }

// PriceLevel aggregates all resting orders at one price.
type PriceLevel struct {
	Price      float64
	Size       float64
	OrderCount int
}

// orderBook holds the resting orders for one (option, side) pair in
// priority order: best price first (BUY descending, SELL ascending),
// ties broken FIFO by creation time. The head is always the best
// available price.
type orderBook struct {
	side   Side
	orders []*Order
}

func newOrderBook(side Side) *orderBook {
	return &orderBook{side: side}
}

// betterPriced reports whether price a beats price b on this book's side.
// Equal prices (within epsilon) are not better; the earlier order wins.
func (b *orderBook) betterPriced(a, p float64) bool {
	if priceEq(a, p) {
		return false
	}
	if b.side == Buy {
		return a > p
	}
	return a < p
}

// insertResting places an order into the book, preserving the sort
// invariant. If the same owner already rests at the same price, the
// sizes are merged instead of adding a second entry; orders from
// different owners at the same price stay distinct so fills keep their
// per-owner attribution.
func (b *orderBook) insertResting(o *Order) {
	for _, existing := range b.orders {
		if existing.Owner == o.Owner && priceEq(existing.Price, o.Price) {
			existing.Size += o.Size
			return
		}
	}

	// Walk past everything with better or equal priority. A new order
	// always has the latest timestamp, so it goes after equal prices.
	i := 0
	for i < len(b.orders) && !b.betterPriced(o.Price, b.orders[i].Price) {
		i++
	}
	b.orders = append(b.orders, nil)
	copy(b.orders[i+1:], b.orders[i:])
	b.orders[i] = o
}

// removeByID removes the order with the given id, if present.
func (b *orderBook) removeByID(id string) bool {
	for i, o := range b.orders {
		if o.ID == id {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return true
		}
	}
	return false
}

// best returns the head order (best price, earliest time) or nil.
func (b *orderBook) best() *Order {
	if len(b.orders) == 0 {
		return nil
	}
	return b.orders[0]
}

func (b *orderBook) empty() bool { return len(b.orders) == 0 }

// levels aggregates the book into per-price totals with order counts.
// The result inherits the book's priority order: BUY levels descend,
// SELL levels ascend.
func (b *orderBook) levels() []PriceLevel {
	var out []PriceLevel
	for _, o := range b.orders {
		if n := len(out); n > 0 && priceEq(out[n-1].Price, o.Price) {
			out[n-1].Size += o.Size
			out[n-1].OrderCount++
			continue
		}
		out = append(out, PriceLevel{Price: o.Price, Size: o.Size, OrderCount: 1})
	}
	return out
}
