package market

import (
	"fmt"
	"sync"
	"time"
)

// Market owns the four order books of one binary question (YES/NO x
// BUY/SELL), the trade log, the id generator, and the resolution state.
// Every mutating operation is serialized behind a single mutex: a
// matching pass reads and mutates the opposing book and the trade log
// and must be observed atomically. Read-only projections take the read
// lock.
type Market struct {
	mu sync.RWMutex

	question string
	expiry   time.Time

	books  [2][2]*orderBook // [Option][Side]
	trades []Trade

	nextOrderID uint64 // scoped to this market, monotonic

	probability float64 // supplied externally; the market never computes it
	resolved    bool
	outcome     Option
}

// New creates an open market for the given question. Expiry is
// metadata only; resolution is always triggered externally via Resolve.
func New(question string, expiry time.Time) *Market {
	m := &Market{
		question:    question,
		expiry:      expiry,
		nextOrderID: 1,
		probability: 0.5,
	}
	for _, opt := range []Option{Yes, No} {
		m.books[opt][Buy] = newOrderBook(Buy)
		m.books[opt][Sell] = newOrderBook(Sell)
	}
	return m
}

func (m *Market) book(opt Option, side Side) *orderBook {
	return m.books[opt][side]
}

func (m *Market) newOrderID() string {
	id := fmt.Sprintf("order_%d", m.nextOrderID)
	m.nextOrderID++
	return id
}

// validateOrder runs every check before any state changes. A failed
// placement leaves books, trade log and id counter untouched.
func (m *Market) validateOrder(side Side, option Option, price, size float64, checkPrice bool) error {
	if m.resolved {
		return ErrMarketResolved
	}
	if !side.valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidSide, side)
	}
	if !option.valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidOption, option)
	}
	if checkPrice && (price < 0 || price > 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidPrice, price)
	}
	if size <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSize, size)
	}
	return nil
}

// PlaceLimitOrder validates, matches the order against the opposing
// book, and rests whatever is left. Matching always runs before the
// remainder is merged or inserted; merging first could let a resting
// order absorb size that should have crossed.
func (m *Market) PlaceLimitOrder(side Side, option Option, price, size float64, owner string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateOrder(side, option, price, size, true); err != nil {
		return "", err
	}

	o := &Order{
		ID:        m.newOrderID(),
		Side:      side,
		Option:    option,
		Price:     price,
		Size:      size,
		CreatedAt: time.Now(),
		Owner:     owner,
		kind:      limitOrder,
	}

	if rem := m.matchOrder(o); rem != nil && rem.Size > 0 {
		m.book(option, side).insertResting(rem)
	}
	return o.ID, nil
}

// PlaceMarketOrder fills as much as the opposing book allows, walking
// price levels from best to worst. The remainder is never rested:
// unfilled size comes back in the report with a liquidity warning.
func (m *Market) PlaceMarketOrder(side Side, option Option, size float64, owner string) (*FillReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateOrder(side, option, 0, size, false); err != nil {
		return nil, err
	}

	// Extreme price guarantees the crossing predicate at every level.
	price := 1.0
	if side == Sell {
		price = 0.0
	}

	o := &Order{
		ID:        m.newOrderID(),
		Side:      side,
		Option:    option,
		Price:     price,
		Size:      size,
		CreatedAt: time.Now(),
		Owner:     owner,
		kind:      marketOrder,
	}

	tradeMark := len(m.trades)
	rem := m.matchOrder(o)

	report := &FillReport{OrderID: o.ID, FilledSize: size}
	for _, t := range m.trades[tradeMark:] {
		report.Fills = append(report.Fills, Fill{Option: option, Price: t.Price, Size: t.Size})
	}
	if rem != nil {
		report.FilledSize = size - rem.Size
		report.RemainingSize = rem.Size
		report.LiquidityWarning = rem.Size > 0
	}
	return report, nil
}

// CancelOrder removes the order from whichever book holds it. A miss
// is not an error: there is simply nothing to cancel. The trade log is
// unaffected either way.
func (m *Market) CancelOrder(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, opt := range []Option{Yes, No} {
		for _, side := range []Side{Buy, Sell} {
			if m.book(opt, side).removeByID(id) {
				return true
			}
		}
	}
	return false
}

// UpdateProbability stores an externally computed probability. The
// value is opaque to the market; the price feed collaborator derives it.
func (m *Market) UpdateProbability(p float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p < 0 || p > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidProbability, p)
	}
	m.probability = p
	return nil
}

// Resolve transitions OPEN -> RESOLVED(outcome). The transition is
// terminal: resolving twice fails, as does an outcome outside YES/NO.
func (m *Market) Resolve(outcome Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !outcome.valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidOutcome, outcome)
	}
	if m.resolved {
		return fmt.Errorf("%w: already resolved to %s", ErrInvalidOutcome, m.outcome)
	}
	m.resolved = true
	m.outcome = outcome
	return nil
}

// Resolved reports the resolution state. The outcome is only
// meaningful when the first return is true.
func (m *Market) Resolved() (bool, Option) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolved, m.outcome
}

func (m *Market) Probability() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.probability
}

func (m *Market) Question() string { return m.question }

func (m *Market) Expiry() time.Time { return m.expiry }

// MidPrice returns the average of best bid and best ask for an option,
// 0.5 when both sides are empty, and treats a missing bid as 0 and a
// missing ask as 1.
func (m *Market) MidPrice(option Option) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bids := m.book(option, Buy)
	asks := m.book(option, Sell)
	if bids.empty() && asks.empty() {
		return 0.5
	}

	bestBid := 0.0
	if o := bids.best(); o != nil {
		bestBid = o.Price
	}
	bestAsk := 1.0
	if o := asks.best(); o != nil {
		bestAsk = o.Price
	}
	return (bestBid + bestAsk) / 2
}

// Trades returns a snapshot copy of the trade log.
func (m *Market) Trades() []Trade {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Trade, len(m.trades))
	copy(out, m.trades)
	return out
}

// TradesSince returns trades recorded at or after index mark, plus the
// new log length. Used by callers that watch for fresh executions.
func (m *Market) TradesSince(mark int) ([]Trade, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mark < 0 || mark > len(m.trades) {
		mark = len(m.trades)
	}
	out := make([]Trade, len(m.trades)-mark)
	copy(out, m.trades[mark:])
	return out, len(m.trades)
}

// OptionSummary is the per-price-level projection of one option's two
// books. Buys descend by price, sells ascend; both tie-break FIFO
// upstream so levels are stable.
type OptionSummary struct {
	Buys  []PriceLevel
	Sells []PriceLevel
}

// Summary projects all four books into aggregated price levels. Pure
// read, no side effects.
func (m *Market) Summary() map[Option]OptionSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[Option]OptionSummary, 2)
	for _, opt := range []Option{Yes, No} {
		out[opt] = OptionSummary{
			Buys:  m.book(opt, Buy).levels(),
			Sells: m.book(opt, Sell).levels(),
		}
	}
	return out
}
