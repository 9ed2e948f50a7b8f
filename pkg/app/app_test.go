package app

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AnishP15/basic-binary-market/params"
	"github.com/AnishP15/basic-binary-market/pkg/market"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.Now().Add(d)
	return ch
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testApp(t *testing.T, btcPrice float64, clock *fakeClock) *App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"bitcoin":{"usd":%v}}`, btcPrice)
	}))
	t.Cleanup(srv.Close)

	cfg := params.Default()
	cfg.Feed.URL = srv.URL
	cfg.Feed.MinCallInterval = time.Millisecond
	return New(cfg, clock, zap.NewNop().Sugar())
}

func TestSeedLiquidity(t *testing.T) {
	clock := newFakeClock()
	a := testApp(t, 83000, clock)
	a.SeedLiquidity()

	summary := a.Market().Summary()
	for _, opt := range []market.Option{market.Yes, market.No} {
		s := summary[opt]
		if len(s.Buys) != 2 || len(s.Sells) != 2 {
			t.Fatalf("%s books: %d buys / %d sells, want 2/2", opt, len(s.Buys), len(s.Sells))
		}
		if s.Buys[0].Price != 0.40 || s.Sells[0].Price != 0.60 {
			t.Errorf("%s inside market = %.2f/%.2f, want 0.40/0.60",
				opt, s.Buys[0].Price, s.Sells[0].Price)
		}
	}

	// Probability anchored to the YES mid.
	if got := a.Market().Probability(); got != 0.5 {
		t.Errorf("seed probability = %v, want 0.5", got)
	}
}

func TestTickResolvesYesWhenTargetHit(t *testing.T) {
	clock := newFakeClock()
	a := testApp(t, 120000, clock)

	clock.advance(time.Second)
	a.Tick()

	resolved, outcome := a.Market().Resolved()
	if !resolved || outcome != market.Yes {
		t.Fatalf("resolution = %v/%s, want YES", resolved, outcome)
	}

	// Placements rejected after resolution.
	if _, err := a.Market().PlaceLimitOrder(market.Buy, market.Yes, 0.5, 1, "x"); err == nil {
		t.Errorf("placement after auto-resolution should fail")
	}
}

func TestTickResolvesNoAtExpiry(t *testing.T) {
	clock := newFakeClock()
	a := testApp(t, 90000, clock)

	clock.advance(25 * time.Hour)
	a.Tick()

	resolved, outcome := a.Market().Resolved()
	if !resolved || outcome != market.No {
		t.Fatalf("resolution = %v/%s, want NO", resolved, outcome)
	}
}

func TestTickPushesProbability(t *testing.T) {
	clock := newFakeClock()
	a := testApp(t, 95000, clock)

	clock.advance(time.Second)
	a.Tick()

	p := a.Market().Probability()
	if p <= 0 || p >= 1 {
		t.Errorf("probability %v not pushed into market", p)
	}
	state := a.FeedState()
	if state.Probability != p {
		t.Errorf("cached state %v disagrees with market %v", state.Probability, p)
	}
}

func TestCLIPlacesAndCancelsOrders(t *testing.T) {
	clock := newFakeClock()
	a := testApp(t, 83000, clock)

	in := strings.NewReader("limit buy yes 0.45 5\ncancel order_1\nquit\n")
	var out bytes.Buffer
	a.RunCLI(in, &out)

	got := out.String()
	if !strings.Contains(got, "added to book") {
		t.Errorf("limit order confirmation missing:\n%s", got)
	}
	if !strings.Contains(got, "canceled successfully") {
		t.Errorf("cancel confirmation missing:\n%s", got)
	}
	if b := a.Market().Summary()[market.Yes]; len(b.Buys) != 0 {
		t.Errorf("book should be empty after cancel: %+v", b.Buys)
	}
}

func TestCLIRejectsBadInput(t *testing.T) {
	clock := newFakeClock()
	a := testApp(t, 83000, clock)

	in := strings.NewReader("limit buy maybe 0.45 5\nmarket up yes 5\nfrobnicate\nquit\n")
	var out bytes.Buffer
	a.RunCLI(in, &out)

	got := out.String()
	if !strings.Contains(got, "option must be YES or NO") {
		t.Errorf("invalid option not reported:\n%s", got)
	}
	if !strings.Contains(got, "side must be BUY or SELL") {
		t.Errorf("invalid side not reported:\n%s", got)
	}
	if !strings.Contains(got, "Unknown command") {
		t.Errorf("unknown command not reported:\n%s", got)
	}
}
