package app

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AnishP15/basic-binary-market/params"
	"github.com/AnishP15/basic-binary-market/pkg/feed"
	"github.com/AnishP15/basic-binary-market/pkg/market"
	"github.com/AnishP15/basic-binary-market/pkg/util"
)

// interactiveOwner identifies orders placed from the command loop.
const interactiveOwner = "user"

// Notifier receives push notifications after market or feed state
// changes. The API server implements it to fan updates out to
// WebSocket subscribers; a nil notifier disables pushes.
type Notifier interface {
	NotifyBook()
	NotifyTrades(trades []market.Trade)
	NotifyFeed(state feed.State)
}

// App wires the market core to the BTC feed collaborator and drives
// the probability/resolution loop.
type App struct {
	cfg   params.Config
	log   *zap.SugaredLogger
	clock util.Clock

	mkt *market.Market
	sim *feed.Simulator

	mu        sync.Mutex
	state     feed.State
	tradeMark int

	notifier Notifier
	quit     chan struct{}
	done     sync.WaitGroup
}

func New(cfg params.Config, clock util.Clock, logger *zap.SugaredLogger) *App {
	question := fmt.Sprintf("Will BTC reach $%s in %d hours?",
		formatUSD(cfg.Market.TargetPrice), cfg.Market.TimeframeHours)
	timeframe := time.Duration(cfg.Market.TimeframeHours) * time.Hour

	sim := feed.NewSimulator(feed.SimulatorConfig{
		URL:             cfg.Feed.URL,
		MinCallInterval: cfg.Feed.MinCallInterval,
		TargetPrice:     cfg.Market.TargetPrice,
		Timeframe:       timeframe,
		Sensitivity:     cfg.Market.Sensitivity,
	}, clock, logger)

	a := &App{
		cfg:   cfg,
		log:   logger,
		clock: clock,
		mkt:   market.New(question, clock.Now().Add(timeframe)),
		sim:   sim,
		quit:  make(chan struct{}),
	}
	a.state = sim.State()
	return a
}

func (a *App) Market() *market.Market { return a.mkt }

func (a *App) SetNotifier(n Notifier) { a.notifier = n }

// FeedState returns the last cached feed snapshot; the background tick
// refreshes it, so readers never block on the API.
func (a *App) FeedState() feed.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SeedLiquidity places the opening market-maker orders on both options
// and anchors the probability to the YES mid price.
func (a *App) SeedLiquidity() {
	type seed struct {
		side   market.Side
		option market.Option
		price  float64
		size   float64
		owner  string
	}
	seeds := []seed{
		{market.Sell, market.Yes, 0.70, 10, "mm_yes_sell_1"},
		{market.Sell, market.Yes, 0.60, 15, "mm_yes_sell_2"},
		{market.Buy, market.Yes, 0.40, 15, "mm_yes_buy_1"},
		{market.Buy, market.Yes, 0.30, 10, "mm_yes_buy_2"},
		{market.Sell, market.No, 0.70, 10, "mm_no_sell_1"},
		{market.Sell, market.No, 0.60, 15, "mm_no_sell_2"},
		{market.Buy, market.No, 0.40, 15, "mm_no_buy_1"},
		{market.Buy, market.No, 0.30, 10, "mm_no_buy_2"},
	}

	for _, s := range seeds {
		if _, err := a.mkt.PlaceLimitOrder(s.side, s.option, s.price, s.size, s.owner); err != nil {
			a.log.Warnw("seed_order_failed", "owner", s.owner, "err", err)
		}
	}

	if err := a.mkt.UpdateProbability(a.mkt.MidPrice(market.Yes)); err != nil {
		a.log.Warnw("seed_probability_failed", "err", err)
	}
	a.log.Infow("liquidity_seeded", "orders", len(seeds))
}

// Start launches the background tick loop.
func (a *App) Start() {
	a.done.Add(1)
	go a.tickLoop()
}

// Stop terminates the tick loop and waits for it to drain.
func (a *App) Stop() {
	select {
	case <-a.quit:
	default:
		close(a.quit)
	}
	a.done.Wait()
}

func (a *App) tickLoop() {
	defer a.done.Done()
	for {
		select {
		case <-a.quit:
			return
		case <-a.clock.After(a.cfg.Feed.PollInterval):
			a.Tick()
		}
	}
}

// Tick refreshes the feed, pushes the probability into the market, and
// resolves the market when the target is hit or time runs out.
func (a *App) Tick() {
	state := a.sim.Refresh()

	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	if resolved, _ := a.mkt.Resolved(); !resolved {
		if err := a.mkt.UpdateProbability(state.Probability); err != nil {
			a.log.Warnw("probability_update_failed", "err", err)
		}

		switch {
		case state.Price >= state.TargetPrice:
			if err := a.mkt.Resolve(market.Yes); err == nil {
				a.log.Infow("market_resolved", "outcome", "YES", "price", state.Price)
			}
		case state.RemainingHours <= 0:
			if err := a.mkt.Resolve(market.No); err == nil {
				a.log.Infow("market_resolved", "outcome", "NO", "price", state.Price)
			}
		}
	}

	if a.notifier != nil {
		a.notifier.NotifyFeed(state)
	}
}

// NotifyMutation pushes book and fresh-trade updates after an order
// placement or cancel.
func (a *App) NotifyMutation() {
	if a.notifier == nil {
		return
	}
	a.notifier.NotifyBook()

	a.mu.Lock()
	trades, mark := a.mkt.TradesSince(a.tradeMark)
	a.tradeMark = mark
	a.mu.Unlock()

	if len(trades) > 0 {
		a.notifier.NotifyTrades(trades)
	}
}

func formatUSD(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	out := ""
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(r)
	}
	return out
}
