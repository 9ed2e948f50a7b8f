package feed

import (
	"math"
	"sync"
	"time"
)

type pricePoint struct {
	Time  time.Time
	Price float64
}

// History keeps a bounded rolling window of observed spot prices and
// derives a realized volatility estimate from it.
type History struct {
	mu     sync.RWMutex
	points []pricePoint
	limit  int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 100
	}
	return &History{limit: limit}
}

// Add appends an observation, dropping the oldest once full.
func (h *History) Add(t time.Time, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points = append(h.points, pricePoint{Time: t, Price: price})
	if len(h.points) > h.limit {
		h.points = h.points[len(h.points)-h.limit:]
	}
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}

// Volatility computes the standard deviation of hourly-scaled log
// returns over the window, floored at minVolatility. The second return
// is false until enough observations exist to make the estimate
// meaningful.
func (h *History) Volatility() (float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.points) < 10 {
		return 0, false
	}

	var returns []float64
	for i := 1; i < len(h.points); i++ {
		dtHours := h.points[i].Time.Sub(h.points[i-1].Time).Hours()
		if dtHours <= 0 {
			continue
		}
		r := math.Log(h.points[i].Price/h.points[i-1].Price) / math.Sqrt(dtHours)
		returns = append(returns, r)
	}
	if len(returns) == 0 {
		return 0, false
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	vol := math.Sqrt(variance)
	if vol < minVolatility {
		vol = minVolatility
	}
	return vol, true
}
