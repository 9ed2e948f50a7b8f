package api

// API response types for REST endpoints and WebSocket messages

// MarketInfo describes the prediction market
type MarketInfo struct {
	Question    string  `json:"question"`
	Expiry      int64   `json:"expiry"` // Unix milliseconds
	Probability float64 `json:"probability"`
	YesMid      float64 `json:"yesMid"`
	NoMid       float64 `json:"noMid"`
	Resolved    bool    `json:"resolved"`
	Outcome     string  `json:"outcome,omitempty"` // "YES" or "NO" once resolved
}

// PriceLevel is an aggregated orderbook level
type PriceLevel struct {
	Price      float64 `json:"price"`
	Size       float64 `json:"size"`
	OrderCount int     `json:"orderCount"`
}

// OptionBook holds both sides of one option's book
type OptionBook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// OrderbookSnapshot is the full YES/NO book state
type OrderbookSnapshot struct {
	Yes       OptionBook `json:"yes"`
	No        OptionBook `json:"no"`
	Timestamp int64      `json:"timestamp"` // Unix milliseconds
}

// TradeInfo is a single execution from the trade log
type TradeInfo struct {
	ID           string  `json:"id"`
	Option       string  `json:"option"`
	Price        float64 `json:"price"`
	Size         float64 `json:"size"`
	TakerSide    string  `json:"takerSide"`
	TakerOrderID string  `json:"takerOrderId"`
	MakerOrderID string  `json:"makerOrderId"`
	Timestamp    int64   `json:"timestamp"` // Unix milliseconds
}

// FeedInfo mirrors the latest feed snapshot
type FeedInfo struct {
	Price          float64 `json:"price"`
	TargetPrice    float64 `json:"targetPrice"`
	RemainingHours float64 `json:"remainingHours"`
	Probability    float64 `json:"probability"`
	Volatility     float64 `json:"volatility"`
	Timestamp      int64   `json:"timestamp"` // Unix milliseconds
}

// SubmitOrderRequest places a limit or market order
type SubmitOrderRequest struct {
	Type   string  `json:"type"` // "limit" or "market"
	Side   string  `json:"side"`
	Option string  `json:"option"`
	Price  float64 `json:"price,omitempty"` // limit orders only
	Size   float64 `json:"size"`
	Owner  string  `json:"owner"`
}

// FillInfo is one execution of a market order
type FillInfo struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// SubmitOrderResponse reports the outcome of an order submission
type SubmitOrderResponse struct {
	Status           string     `json:"status"` // "resting", "filled", "partial"
	OrderID          string     `json:"orderId,omitempty"`
	FilledSize       float64    `json:"filledSize"`
	RemainingSize    float64    `json:"remainingSize"`
	Fills            []FillInfo `json:"fills,omitempty"`
	LiquidityWarning bool       `json:"liquidityWarning,omitempty"`
}

// CancelOrderRequest cancels a resting order by id
type CancelOrderRequest struct {
	OrderID string `json:"orderId"`
}

// CancelOrderResponse acknowledges a cancel
type CancelOrderResponse struct {
	Status  string `json:"status"` // "cancelled" or "not_found"
	OrderID string `json:"orderId"`
}

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WSSubscribeRequest is the client -> server subscription message
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// OrderbookUpdate is pushed on the "orderbook" channel
type OrderbookUpdate struct {
	Type      string     `json:"type"` // "orderbook"
	Yes       OptionBook `json:"yes"`
	No        OptionBook `json:"no"`
	Timestamp int64      `json:"timestamp"`
}

// TradeUpdate is pushed on the "trades" channel
type TradeUpdate struct {
	Type   string      `json:"type"` // "trades"
	Trades []TradeInfo `json:"trades"`
}

// FeedUpdate is pushed on the "feed" channel
type FeedUpdate struct {
	Type string   `json:"type"` // "feed"
	Feed FeedInfo `json:"feed"`
}
