package feed

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AnishP15/basic-binary-market/pkg/util"
)

// State is a snapshot of the feed and prediction at one moment.
type State struct {
	Price          float64
	TargetPrice    float64
	RemainingHours float64
	Probability    float64
	Volatility     float64
	Time           time.Time
}

// Simulator combines the price feed and the probability calculator
// behind one mutex; PriceFeed itself is not safe for concurrent use.
type Simulator struct {
	mu   sync.Mutex
	feed *PriceFeed
	calc *Calculator
}

type SimulatorConfig struct {
	URL             string
	MinCallInterval time.Duration
	TargetPrice     float64
	Timeframe       time.Duration
	Sensitivity     float64
}

func NewSimulator(cfg SimulatorConfig, clock util.Clock, logger *zap.SugaredLogger) *Simulator {
	return &Simulator{
		feed: NewPriceFeed(cfg.URL, cfg.MinCallInterval, clock, logger),
		calc: NewCalculator(cfg.TargetPrice, cfg.Timeframe, cfg.Sensitivity, clock),
	}
}

// Refresh polls the feed (or its cache) and returns the updated state.
func (s *Simulator) Refresh() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.feed.UpdatePrice()
	return s.stateLocked(price)
}

// State returns the current snapshot without touching the API.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(s.feed.Price())
}

func (s *Simulator) stateLocked(price float64) State {
	vol := s.feed.Volatility()
	return State{
		Price:          price,
		TargetPrice:    s.calc.TargetPrice(),
		RemainingHours: s.calc.RemainingHours(),
		Probability:    s.calc.Probability(price, vol),
		Volatility:     vol,
		Time:           time.Now(),
	}
}
