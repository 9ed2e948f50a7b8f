package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/AnishP15/basic-binary-market/pkg/market"
)

// renderStatus prints the market header and both order books.
func (a *App) renderStatus(w io.Writer) {
	state := a.FeedState()

	fmt.Fprintln(w, "\n========== BTC PREDICTION MARKET ==========")
	fmt.Fprintf(w, "Question: %s\n", a.mkt.Question())
	fmt.Fprintf(w, "Current BTC Price: $%.2f\n", state.Price)
	fmt.Fprintf(w, "Target: $%.2f\n", state.TargetPrice)
	fmt.Fprintf(w, "Time Remaining: %.2f hours\n", state.RemainingHours)
	fmt.Fprintf(w, "Estimated Volatility: %.4f\n", state.Volatility)
	fmt.Fprintf(w, "Probability of Reaching Target: %.2f%%\n", a.mkt.Probability()*100)

	if resolved, outcome := a.mkt.Resolved(); resolved {
		fmt.Fprintf(w, "MARKET RESOLVED: %s\n", outcome)
	}

	a.renderBooks(w)
}

func (a *App) renderBooks(w io.Writer) {
	summary := a.mkt.Summary()
	for _, opt := range []market.Option{market.Yes, market.No} {
		fmt.Fprintf(w, "\n%s Market:\n", opt)
		renderOptionBook(w, summary[opt])
	}
}

// renderOptionBook shows asks from worst to best price, the spread,
// then bids from best to worst, so the inside of the market sits in
// the middle of the display.
func renderOptionBook(w io.Writer, s market.OptionSummary) {
	if len(s.Sells) == 0 {
		fmt.Fprintln(w, "  No SELL orders")
	} else {
		for i := len(s.Sells) - 1; i >= 0; i-- {
			printLevel(w, "SELL", s.Sells[i])
		}
	}

	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 30))
	switch {
	case len(s.Buys) > 0 && len(s.Sells) > 0:
		bestBid := s.Buys[0].Price
		bestAsk := s.Sells[0].Price
		spread := bestAsk - bestBid
		mid := (bestBid + bestAsk) / 2
		fmt.Fprintf(w, "  SPREAD: %s (%.2f%%)\n", formatPrice(spread), spread/mid*100)
	default:
		fmt.Fprintln(w, "  SPREAD: N/A (No orders on both sides)")
	}

	if len(s.Buys) == 0 {
		fmt.Fprintln(w, "  No BUY orders")
		return
	}
	for _, level := range s.Buys {
		printLevel(w, "BUY", level)
	}
}

func printLevel(w io.Writer, side string, level market.PriceLevel) {
	countInfo := ""
	if level.OrderCount > 1 {
		countInfo = fmt.Sprintf(" (%d orders)", level.OrderCount)
	}
	fmt.Fprintf(w, "  %-4s %8.2f @ %s%s\n", side, level.Size, formatPrice(level.Price), countInfo)
}

// formatPrice trims trailing zeros so 0.600000 renders as 0.6.
func formatPrice(p float64) string {
	if p >= 1.0 {
		return "1.0"
	}
	s := fmt.Sprintf("%.6f", p)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "0"
	}
	return s
}
