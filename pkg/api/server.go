package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/AnishP15/basic-binary-market/pkg/app"
	"github.com/AnishP15/basic-binary-market/pkg/feed"
	"github.com/AnishP15/basic-binary-market/pkg/market"
)

// Server handles REST API and WebSocket connections
type Server struct {
	app    *app.App
	router *mux.Router
	hub    *Hub // WebSocket hub
	log    *zap.SugaredLogger
}

// NewServer creates a new API server
func NewServer(a *app.App, log *zap.SugaredLogger) *Server {
	s := &Server{
		app:    a,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Market endpoints
	api.HandleFunc("/market", s.handleGetMarket).Methods("GET")
	api.HandleFunc("/orderbook", s.handleGetOrderbook).Methods("GET")
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/feed", s.handleGetFeed).Methods("GET")

	// Order submission
	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	// Start WebSocket hub
	go s.hub.Run()

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(s.router)

	s.log.Infow("api server starting", "addr", addr)
	return http.ListenAndServe(addr, handler)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.marketInfo())
}

func (s *Server) marketInfo() MarketInfo {
	m := s.app.Market()
	resolved, outcome := m.Resolved()

	info := MarketInfo{
		Question:    m.Question(),
		Expiry:      m.Expiry().UnixMilli(),
		Probability: m.Probability(),
		YesMid:      m.MidPrice(market.Yes),
		NoMid:       m.MidPrice(market.No),
		Resolved:    resolved,
	}
	if resolved {
		info.Outcome = outcome.String()
	}
	return info
}

func (s *Server) handleGetOrderbook(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.orderbookSnapshot())
}

func (s *Server) orderbookSnapshot() OrderbookSnapshot {
	summary := s.app.Market().Summary()
	return OrderbookSnapshot{
		Yes:       toOptionBook(summary[market.Yes]),
		No:        toOptionBook(summary[market.No]),
		Timestamp: time.Now().UnixMilli(),
	}
}

func toOptionBook(s market.OptionSummary) OptionBook {
	book := OptionBook{
		Bids: make([]PriceLevel, len(s.Buys)),
		Asks: make([]PriceLevel, len(s.Sells)),
	}
	for i, l := range s.Buys {
		book.Bids[i] = PriceLevel{Price: l.Price, Size: l.Size, OrderCount: l.OrderCount}
	}
	for i, l := range s.Sells {
		book.Asks[i] = PriceLevel{Price: l.Price, Size: l.Size, OrderCount: l.OrderCount}
	}
	return book
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.app.Market().Trades()
	respondJSON(w, toTradeInfos(trades))
}

func toTradeInfos(trades []market.Trade) []TradeInfo {
	out := make([]TradeInfo, len(trades))
	for i, t := range trades {
		out[i] = TradeInfo{
			ID:           t.ID,
			Option:       t.Option.String(),
			Price:        t.Price,
			Size:         t.Size,
			TakerSide:    t.TakerSide.String(),
			TakerOrderID: t.TakerOrderID,
			MakerOrderID: t.MakerOrderID,
			Timestamp:    t.Time.UnixMilli(),
		}
	}
	return out
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, toFeedInfo(s.app.FeedState()))
}

func toFeedInfo(st feed.State) FeedInfo {
	return FeedInfo{
		Price:          st.Price,
		TargetPrice:    st.TargetPrice,
		RemainingHours: st.RemainingHours,
		Probability:    st.Probability,
		Volatility:     st.Volatility,
		Timestamp:      st.Time.UnixMilli(),
	}
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	side, err := market.ParseSide(req.Side)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid side", err.Error())
		return
	}
	option, err := market.ParseOption(req.Option)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid option", err.Error())
		return
	}
	owner := req.Owner
	if owner == "" {
		owner = "api"
	}

	m := s.app.Market()

	switch req.Type {
	case "limit":
		_, mark := m.TradesSince(-1)
		id, err := m.PlaceLimitOrder(side, option, req.Price, req.Size, owner)
		if err != nil {
			respondMarketError(w, err)
			return
		}
		s.app.NotifyMutation()

		trades, _ := m.TradesSince(mark)
		resp := SubmitOrderResponse{Status: "resting", OrderID: id, RemainingSize: req.Size}
		for _, t := range trades {
			if t.TakerOrderID != id {
				continue
			}
			resp.FilledSize += t.Size
			resp.Fills = append(resp.Fills, FillInfo{Price: t.Price, Size: t.Size})
		}
		resp.RemainingSize = req.Size - resp.FilledSize
		if resp.RemainingSize <= 0 {
			resp.Status = "filled"
			resp.RemainingSize = 0
		} else if resp.FilledSize > 0 {
			resp.Status = "partial"
		}

		s.log.Infow("limit order submitted",
			"id", id, "side", side, "option", option,
			"price", req.Price, "size", req.Size, "filled", resp.FilledSize)
		respondJSON(w, resp)

	case "market":
		report, err := m.PlaceMarketOrder(side, option, req.Size, owner)
		if err != nil {
			respondMarketError(w, err)
			return
		}
		s.app.NotifyMutation()

		resp := SubmitOrderResponse{
			Status:           "filled",
			OrderID:          report.OrderID,
			FilledSize:       report.FilledSize,
			RemainingSize:    report.RemainingSize,
			LiquidityWarning: report.LiquidityWarning,
		}
		for _, f := range report.Fills {
			resp.Fills = append(resp.Fills, FillInfo{Price: f.Price, Size: f.Size})
		}
		if report.LiquidityWarning {
			resp.Status = "partial"
		}

		s.log.Infow("market order submitted",
			"id", report.OrderID, "side", side, "option", option,
			"size", req.Size, "filled", report.FilledSize)
		respondJSON(w, resp)

	default:
		respondError(w, http.StatusBadRequest, "invalid order type", "expected \"limit\" or \"market\"")
	}
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "missing orderId", "")
		return
	}

	if !s.app.Market().CancelOrder(req.OrderID) {
		respondJSON(w, CancelOrderResponse{Status: "not_found", OrderID: req.OrderID})
		return
	}
	s.app.NotifyMutation()

	s.log.Infow("order cancelled", "id", req.OrderID)
	respondJSON(w, CancelOrderResponse{Status: "cancelled", OrderID: req.OrderID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Notifier (push updates from the app layer)
// ==============================

// NotifyBook broadcasts the current orderbook to subscribers.
func (s *Server) NotifyBook() {
	snap := s.orderbookSnapshot()
	s.hub.BroadcastToChannel("orderbook", OrderbookUpdate{
		Type:      "orderbook",
		Yes:       snap.Yes,
		No:        snap.No,
		Timestamp: snap.Timestamp,
	})
}

// NotifyTrades broadcasts fresh executions to subscribers.
func (s *Server) NotifyTrades(trades []market.Trade) {
	if len(trades) == 0 {
		return
	}
	s.hub.BroadcastToChannel("trades", TradeUpdate{
		Type:   "trades",
		Trades: toTradeInfos(trades),
	})
}

// NotifyFeed broadcasts the latest feed snapshot to subscribers.
func (s *Server) NotifyFeed(state feed.State) {
	s.hub.BroadcastToChannel("feed", FeedUpdate{
		Type: "feed",
		Feed: toFeedInfo(state),
	})
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// respondMarketError maps core market errors onto HTTP status codes:
// a resolved market is a conflict, everything else is a bad request.
func respondMarketError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, market.ErrMarketResolved) {
		status = http.StatusConflict
	}
	respondError(w, status, "order rejected", err.Error())
}
