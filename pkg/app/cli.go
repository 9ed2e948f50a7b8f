package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AnishP15/basic-binary-market/pkg/market"
)

// RunCLI drives the interactive command loop until quit or EOF. All
// rendering goes to w; structured logs stay on the zap logger so the
// display output is clean.
func (a *App) RunCLI(r io.Reader, w io.Writer) {
	fmt.Fprintln(w, "Welcome to the BTC Prediction Market Simulator!")
	fmt.Fprintln(w, "Type 'help' for available commands")

	scanner := bufio.NewScanner(r)
	for {
		a.renderStatus(w)
		fmt.Fprint(w, "\nEnter command: ")

		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(strings.ToLower(line))

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			printHelp(w)
		case "book":
			a.renderBooks(w)
		case "limit":
			a.handleLimit(w, fields)
		case "market":
			a.handleMarket(w, fields)
		case "cancel":
			a.handleCancel(w, fields)
		default:
			fmt.Fprintln(w, "Unknown command. Type 'help' for available commands.")
		}
	}
}

func (a *App) handleLimit(w io.Writer, fields []string) {
	if len(fields) != 5 {
		fmt.Fprintln(w, "Invalid limit order format. Example: limit buy yes 0.7 10")
		return
	}

	side, err := market.ParseSide(fields[1])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	option, err := market.ParseOption(fields[2])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	price, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid price %q\n", fields[3])
		return
	}
	size, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid size %q\n", fields[4])
		return
	}

	_, tradeMark := a.mkt.TradesSince(-1)
	id, err := a.mkt.PlaceLimitOrder(side, option, price, size, interactiveOwner)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	a.NotifyMutation()

	trades, _ := a.mkt.TradesSince(tradeMark)

	fmt.Fprintln(w, "\n===== ORDER EXECUTION RESULTS =====")
	if len(trades) > 0 {
		executed := 0.0
		for _, t := range trades {
			executed += t.Size
		}
		fmt.Fprintf(w, "Order %s: %s %s %.2f @ %.3f\n", id, side, option, size, price)
		fmt.Fprintf(w, "Executed: %.2f units\n", executed)
		fmt.Fprintln(w, "\nExecuted trades:")
		for _, t := range trades {
			fmt.Fprintf(w, "  %s %s %.2f @ %s\n", t.TakerSide, t.Option, t.Size, formatPrice(t.Price))
		}
		if executed < size {
			fmt.Fprintf(w, "\nRemaining %.2f units added to order book\n", size-executed)
		}
	} else {
		fmt.Fprintf(w, "Order %s added to book: %s %s %.2f @ %.3f\n", id, side, option, size, price)
		fmt.Fprintln(w, "No immediate execution")
	}

	a.renderBooks(w)
}

func (a *App) handleMarket(w io.Writer, fields []string) {
	if len(fields) != 4 {
		fmt.Fprintln(w, "Invalid market order format. Example: market sell no 5")
		return
	}

	side, err := market.ParseSide(fields[1])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	option, err := market.ParseOption(fields[2])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	size, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid size %q\n", fields[3])
		return
	}

	report, err := a.mkt.PlaceMarketOrder(side, option, size, interactiveOwner)
	if err != nil {
		fmt.Fprintf(w, "Error placing market order: %v\n", err)
		return
	}
	a.NotifyMutation()

	fmt.Fprintf(w, "\nMarket order executed: %.2f of %.2f %s %s\n",
		report.FilledSize, size, side, option)
	for _, f := range report.Fills {
		fmt.Fprintf(w, "  filled %.2f @ %s\n", f.Size, formatPrice(f.Price))
	}
	if report.LiquidityWarning {
		fmt.Fprintln(w, "Warning: Could not fill entire order - insufficient liquidity")
	}
}

func (a *App) handleCancel(w io.Writer, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(w, "Invalid cancel format. Example: cancel order_123")
		return
	}

	id := fields[1]
	if a.mkt.CancelOrder(id) {
		a.NotifyMutation()
		fmt.Fprintf(w, "Order %s canceled successfully\n", id)
	} else {
		fmt.Fprintf(w, "Order %s not found\n", id)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "\nBTC PREDICTION MARKET HELP")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintln(w, "\nBASIC COMMANDS:")
	fmt.Fprintln(w, "  help          - Show this help message")
	fmt.Fprintln(w, "  exit/quit     - Exit the simulator")
	fmt.Fprintln(w, "  book          - Display the current order book")
	fmt.Fprintln(w, "  cancel <id>   - Cancel an order by ID")
	fmt.Fprintln(w, "\nORDER PLACEMENT:")
	fmt.Fprintln(w, "  limit <side> <option> <price> <size>")
	fmt.Fprintln(w, "      - Example: limit buy yes 0.7 10")
	fmt.Fprintln(w, "  market <side> <option> <size>")
	fmt.Fprintln(w, "      - Example: market sell no 5")
	fmt.Fprintln(w, "\nOrders match with price-time priority: better prices execute")
	fmt.Fprintln(w, "first, and older orders win at the same price (FIFO). Partially")
	fmt.Fprintln(w, "executed limit orders rest in the book; market orders fill at")
	fmt.Fprintln(w, "progressively worse prices until done or liquidity runs out.")
	fmt.Fprintln(w, "\nPrices are between 0 and 1, representing the probability of the")
	fmt.Fprintln(w, "event. YES pays 1 if the event happens, NO pays 1 if it doesn't.")
}
