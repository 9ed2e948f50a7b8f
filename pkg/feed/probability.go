package feed

import (
	"math"
	"time"

	"github.com/AnishP15/basic-binary-market/pkg/util"
)

// Calculator maps the current spot price, the remaining time, and a
// volatility estimate to the probability of the price reaching the
// target before expiry, via a logistic function. The market core
// treats the result as an opaque value.
type Calculator struct {
	targetPrice float64
	timeframe   time.Duration
	sensitivity float64

	start time.Time
	clock util.Clock
}

func NewCalculator(targetPrice float64, timeframe time.Duration, sensitivity float64, clock util.Clock) *Calculator {
	if sensitivity <= 0 {
		sensitivity = 0.1
	}
	return &Calculator{
		targetPrice: targetPrice,
		timeframe:   timeframe,
		sensitivity: sensitivity,
		start:       clock.Now(),
		clock:       clock,
	}
}

func (c *Calculator) TargetPrice() float64 { return c.targetPrice }

// RemainingHours returns hours until expiry, floored at zero.
func (c *Calculator) RemainingHours() float64 {
	elapsed := c.clock.Now().Sub(c.start)
	remaining := c.timeframe - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining.Hours()
}

// Probability returns the chance of reaching the target: 1 once the
// target is hit, 0 once time runs out, and a logistic blend of
// distance, volatility, and time factor in between. Inputs are clamped
// to sane ranges so a glitchy feed cannot produce a wild estimate.
func (c *Calculator) Probability(currentPrice, volatility float64) float64 {
	if currentPrice <= 0 {
		currentPrice = defaultPrice
	}
	if volatility <= 0 {
		volatility = defaultVolatility
	}
	currentPrice = clamp(currentPrice, 1000, 500000)
	volatility = clamp(volatility, minVolatility, 0.5)

	if currentPrice >= c.targetPrice {
		return 1.0
	}
	remainingHours := c.RemainingHours()
	if remainingHours <= 0 {
		return 0.0
	}

	distancePct := (c.targetPrice - currentPrice) / currentPrice
	timeFactor := remainingHours / c.timeframe.Hours()
	volFactor := volatility * math.Sqrt(remainingHours)

	z := -distancePct/(volFactor*c.sensitivity) + timeFactor
	p := 1.0 / (1.0 + math.Exp(-z))

	return clamp(p, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
