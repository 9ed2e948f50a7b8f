package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Market struct {
	TargetPrice    float64
	TimeframeHours int
	// Sensitivity steers how sharply the logistic probability reacts
	// to the distance between spot and target.
	Sensitivity float64
}

type Feed struct {
	URL          string
	PollInterval time.Duration
	// MinCallInterval is the floor between real API calls; polls inside
	// the window are served from cache to stay under provider rate limits.
	MinCallInterval time.Duration
}

type API struct {
	Enabled bool
	Addr    string
}

type Config struct {
	Market  Market
	Feed    Feed
	API     API
	LogFile string
}

func Default() Config {
	return Config{
		Market: Market{
			TargetPrice:    100000,
			TimeframeHours: 24,
			Sensitivity:    0.15,
		},
		Feed: Feed{
			URL:             "", // empty = feed package default (CoinGecko)
			PollInterval:    5 * time.Second,
			MinCallInterval: time.Minute,
		},
		API: API{
			Enabled: false,
			Addr:    ":8080",
		},
		LogFile: "data/market-sim.log",
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if v := os.Getenv("TARGET_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Market.TargetPrice = f
		}
	}
	if v := os.Getenv("TIMEFRAME_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Market.TimeframeHours = n
		}
	}
	if v := os.Getenv("SENSITIVITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Market.Sensitivity = f
		}
	}

	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("FEED_POLL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Feed.PollInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("FEED_MIN_CALL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Feed.MinCallInterval = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("API_ENABLED"); v != "" {
		cfg.API.Enabled = v == "true"
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return cfg
}
