package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AnishP15/basic-binary-market/pkg/util"
)

const (
	// DefaultURL is a CoinGecko-style simple price endpoint.
	DefaultURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"

	defaultPrice      = 80000.0
	defaultVolatility = 0.03
	minVolatility     = 0.01

	// Spot prices outside these bounds are treated as feed glitches.
	minSanePrice = 10000.0
	maxSanePrice = 200000.0

	maxBackoff = 30 * time.Minute
)

// PriceFeed polls a BTC spot price endpoint, respecting the provider's
// rate limits: calls closer together than the minimum interval are
// answered from the cached price with synthetic noise, and HTTP 429 or
// transport failures trigger exponential backoff during which a
// volatility-driven random walk stands in for the real feed.
type PriceFeed struct {
	url    string
	client *http.Client
	clock  util.Clock
	log    *zap.SugaredLogger
	rng    *rand.Rand

	history *History

	price           float64
	volatility      float64
	lastCall        time.Time
	minCallInterval time.Duration
	backoff         time.Duration
	failures        int
}

// NewPriceFeed builds the feed and performs an initial fetch so the
// first reader sees a real (or fallback) price.
func NewPriceFeed(url string, minCallInterval time.Duration, clock util.Clock, logger *zap.SugaredLogger) *PriceFeed {
	if url == "" {
		url = DefaultURL
	}
	if minCallInterval <= 0 {
		minCallInterval = time.Minute
	}

	f := &PriceFeed{
		url:             url,
		client:          &http.Client{Timeout: 5 * time.Second},
		clock:           clock,
		log:             logger,
		rng:             rand.New(rand.NewSource(clock.Now().UnixNano())),
		history:         NewHistory(100),
		volatility:      defaultVolatility,
		minCallInterval: minCallInterval,
	}

	f.price = f.fetch()
	f.history.Add(clock.Now(), f.price)
	return f
}

// fetch returns the current price, calling the API only when the rate
// limit window allows it.
func (f *PriceFeed) fetch() float64 {
	now := f.clock.Now()

	if !f.lastCall.IsZero() && now.Sub(f.lastCall) < f.minCallInterval {
		return f.cachedWithNoise(0.001)
	}
	if f.backoff > 0 && now.Sub(f.lastCall) < f.backoff {
		return f.cachedWithNoise(0.002)
	}

	resp, err := f.client.Get(f.url)
	f.lastCall = now
	if err != nil {
		f.log.Warnw("price_fetch_failed", "err", err)
		f.enterBackoff()
		return f.fallbackPrice()
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.enterBackoff()
		return f.fallbackPrice()
	}
	if resp.StatusCode != http.StatusOK {
		f.log.Warnw("price_fetch_bad_status", "status", resp.StatusCode)
		f.enterBackoff()
		return f.fallbackPrice()
	}

	price, err := decodePrice(resp.Body)
	if err != nil {
		f.log.Warnw("price_decode_failed", "err", err)
		f.enterBackoff()
		return f.fallbackPrice()
	}

	f.failures = 0
	f.backoff = 0
	return price
}

func decodePrice(r io.Reader) (float64, error) {
	var payload struct {
		Bitcoin struct {
			USD float64 `json:"usd"`
		} `json:"bitcoin"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return 0, err
	}
	if payload.Bitcoin.USD <= 0 {
		return 0, fmt.Errorf("missing bitcoin.usd field")
	}
	return payload.Bitcoin.USD, nil
}

// enterBackoff doubles the backoff window per consecutive failure,
// capped at maxBackoff.
func (f *PriceFeed) enterBackoff() {
	f.failures++
	backoff := f.minCallInterval * (1 << (f.failures - 1))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	f.backoff = backoff
	f.log.Warnw("price_feed_backoff", "failures", f.failures, "backoff", backoff.String())
}

// cachedWithNoise returns the last price with small synthetic movement,
// keeping the display alive between real API calls.
func (f *PriceFeed) cachedWithNoise(pct float64) float64 {
	if f.price <= 0 {
		return defaultPrice
	}
	noise := (f.rng.Float64()*2 - 1) * pct * f.price
	return f.price + noise
}

// fallbackPrice generates a volatility-scaled random walk step when the
// API is unavailable, capped so a single tick never moves the price by
// more than half a percent, and clamped to sane bounds.
func (f *PriceFeed) fallbackPrice() float64 {
	if f.price <= 0 {
		return defaultPrice
	}

	volFactor := f.volatility / 24
	step := f.rng.NormFloat64() * volFactor * f.price

	limit := f.price * 0.005
	if step > limit {
		step = limit
	} else if step < -limit {
		step = -limit
	}

	next := f.price + step
	if next < f.price*0.99 {
		next = f.price * 0.99
	}
	if next < minSanePrice {
		next = minSanePrice
	} else if next > maxSanePrice {
		next = maxSanePrice
	}
	return next
}

// UpdatePrice refreshes the price from the API or cache, records it in
// the history, and re-estimates volatility once enough data exists.
func (f *PriceFeed) UpdatePrice() float64 {
	next := f.fetch()

	if next <= 0 || next > 500000 {
		f.log.Warnw("price_rejected", "price", next)
		if f.price > 0 {
			return f.price
		}
		f.price = defaultPrice
		return f.price
	}

	if next != f.price {
		f.price = next
		f.history.Add(f.clock.Now(), f.price)
		if vol, ok := f.history.Volatility(); ok {
			f.volatility = vol
		}
	}
	return f.price
}

// Price returns the last known price without touching the API.
func (f *PriceFeed) Price() float64 { return f.price }

// Volatility returns the current realized volatility estimate.
func (f *PriceFeed) Volatility() float64 { return f.volatility }
