package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AnishP15/basic-binary-market/pkg/app"
	"github.com/AnishP15/basic-binary-market/pkg/market"
	"github.com/AnishP15/basic-binary-market/pkg/util"
	"github.com/AnishP15/basic-binary-market/params"
)

func testServer(t *testing.T) (*Server, *app.App) {
	t.Helper()

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bitcoin":{"usd":80000}}`)
	}))
	t.Cleanup(feedSrv.Close)

	cfg := params.Default()
	cfg.Feed.URL = feedSrv.URL
	cfg.Feed.MinCallInterval = time.Millisecond

	a := app.New(cfg, util.RealClock{}, zap.NewNop().Sugar())
	s := NewServer(a, zap.NewNop().Sugar())
	a.SetNotifier(s)
	return s, a
}

func doJSON(t *testing.T, s *Server, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec
}

func TestGetMarket(t *testing.T) {
	s, _ := testServer(t)

	var info MarketInfo
	rec := doJSON(t, s, "GET", "/api/v1/market", nil, &info)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if info.Question == "" {
		t.Error("question is empty")
	}
	if info.Resolved {
		t.Error("fresh market reports resolved")
	}
	if info.Probability != 0.5 {
		t.Errorf("probability = %v, want 0.5", info.Probability)
	}
}

func TestSubmitLimitOrderRests(t *testing.T) {
	s, a := testServer(t)

	var resp SubmitOrderResponse
	rec := doJSON(t, s, "POST", "/api/v1/orders", SubmitOrderRequest{
		Type: "limit", Side: "BUY", Option: "YES", Price: 0.45, Size: 5, Owner: "alice",
	}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "resting" {
		t.Errorf("status = %q, want resting", resp.Status)
	}
	if resp.OrderID == "" {
		t.Error("missing order id")
	}
	if resp.RemainingSize != 5 {
		t.Errorf("remaining = %v, want 5", resp.RemainingSize)
	}

	bids := a.Market().Summary()[market.Yes].Buys
	if len(bids) != 1 || bids[0].Price != 0.45 {
		t.Errorf("book bids = %+v, want one level at 0.45", bids)
	}
}

func TestSubmitOrdersAndMatch(t *testing.T) {
	s, a := testServer(t)

	doJSON(t, s, "POST", "/api/v1/orders", SubmitOrderRequest{
		Type: "limit", Side: "SELL", Option: "YES", Price: 0.60, Size: 10, Owner: "maker",
	}, nil)

	var resp SubmitOrderResponse
	doJSON(t, s, "POST", "/api/v1/orders", SubmitOrderRequest{
		Type: "limit", Side: "BUY", Option: "YES", Price: 0.65, Size: 4, Owner: "taker",
	}, &resp)

	if resp.Status != "filled" {
		t.Errorf("status = %q, want filled", resp.Status)
	}
	if resp.FilledSize != 4 {
		t.Errorf("filled = %v, want 4", resp.FilledSize)
	}
	if len(resp.Fills) != 1 || resp.Fills[0].Price != 0.60 {
		t.Errorf("fills = %+v, want one at maker price 0.60", resp.Fills)
	}

	var trades []TradeInfo
	doJSON(t, s, "GET", "/api/v1/trades", nil, &trades)
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	if trades[0].Price != 0.60 || trades[0].Size != 4 {
		t.Errorf("trade = %+v", trades[0])
	}

	asks := a.Market().Summary()[market.Yes].Sells
	if len(asks) != 1 || asks[0].Size != 6 {
		t.Errorf("asks = %+v, want one level with size 6", asks)
	}
}

func TestSubmitMarketOrderLowLiquidity(t *testing.T) {
	s, _ := testServer(t)

	var resp SubmitOrderResponse
	rec := doJSON(t, s, "POST", "/api/v1/orders", SubmitOrderRequest{
		Type: "market", Side: "BUY", Option: "NO", Size: 3, Owner: "taker",
	}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "partial" {
		t.Errorf("status = %q, want partial", resp.Status)
	}
	if !resp.LiquidityWarning {
		t.Error("expected liquidity warning on empty book")
	}
	if resp.RemainingSize != 3 {
		t.Errorf("remaining = %v, want 3", resp.RemainingSize)
	}
}

func TestSubmitOrderValidation(t *testing.T) {
	s, _ := testServer(t)

	tests := []struct {
		name string
		req  SubmitOrderRequest
	}{
		{"bad side", SubmitOrderRequest{Type: "limit", Side: "UP", Option: "YES", Price: 0.5, Size: 1}},
		{"bad option", SubmitOrderRequest{Type: "limit", Side: "BUY", Option: "MAYBE", Price: 0.5, Size: 1}},
		{"bad price", SubmitOrderRequest{Type: "limit", Side: "BUY", Option: "YES", Price: 1.5, Size: 1}},
		{"bad size", SubmitOrderRequest{Type: "limit", Side: "BUY", Option: "YES", Price: 0.5, Size: 0}},
		{"bad type", SubmitOrderRequest{Type: "stop", Side: "BUY", Option: "YES", Price: 0.5, Size: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, "POST", "/api/v1/orders", tt.req, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSubmitOrderAfterResolutionConflicts(t *testing.T) {
	s, a := testServer(t)

	if err := a.Market().Resolve(market.Yes); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	rec := doJSON(t, s, "POST", "/api/v1/orders", SubmitOrderRequest{
		Type: "limit", Side: "BUY", Option: "YES", Price: 0.5, Size: 1,
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}

	var info MarketInfo
	doJSON(t, s, "GET", "/api/v1/market", nil, &info)
	if !info.Resolved || info.Outcome != "YES" {
		t.Errorf("market info = %+v, want resolved YES", info)
	}
}

func TestCancelOrder(t *testing.T) {
	s, _ := testServer(t)

	var placed SubmitOrderResponse
	doJSON(t, s, "POST", "/api/v1/orders", SubmitOrderRequest{
		Type: "limit", Side: "SELL", Option: "NO", Price: 0.7, Size: 2, Owner: "alice",
	}, &placed)

	var resp CancelOrderResponse
	doJSON(t, s, "POST", "/api/v1/orders/cancel", CancelOrderRequest{OrderID: placed.OrderID}, &resp)
	if resp.Status != "cancelled" {
		t.Errorf("status = %q, want cancelled", resp.Status)
	}

	doJSON(t, s, "POST", "/api/v1/orders/cancel", CancelOrderRequest{OrderID: placed.OrderID}, &resp)
	if resp.Status != "not_found" {
		t.Errorf("second cancel status = %q, want not_found", resp.Status)
	}
}

func TestGetOrderbookAndFeed(t *testing.T) {
	s, a := testServer(t)
	a.SeedLiquidity()

	var snap OrderbookSnapshot
	doJSON(t, s, "GET", "/api/v1/orderbook", nil, &snap)
	if len(snap.Yes.Bids) != 2 || len(snap.Yes.Asks) != 2 {
		t.Errorf("yes book = %d bids / %d asks, want 2/2", len(snap.Yes.Bids), len(snap.Yes.Asks))
	}
	if snap.Yes.Asks[0].Price != 0.60 {
		t.Errorf("best ask = %v, want 0.60", snap.Yes.Asks[0].Price)
	}

	var info FeedInfo
	doJSON(t, s, "GET", "/api/v1/feed", nil, &info)
	if info.Price != 80000 {
		t.Errorf("feed price = %v, want 80000", info.Price)
	}
	if info.TargetPrice != params.Default().Market.TargetPrice {
		t.Errorf("target = %v", info.TargetPrice)
	}
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s, "GET", "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
