package main

import (
	"flag"
	"log"
	"os"

	"github.com/AnishP15/basic-binary-market/params"
	"github.com/AnishP15/basic-binary-market/pkg/api"
	"github.com/AnishP15/basic-binary-market/pkg/app"
	"github.com/AnishP15/basic-binary-market/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	// Flags override env for quick experiments
	target := flag.Float64("target", cfg.Market.TargetPrice, "BTC target price in USD")
	hours := flag.Int("hours", cfg.Market.TimeframeHours, "market timeframe in hours")
	apiAddr := flag.String("api", "", "serve REST/WebSocket API on this address (e.g. :8080)")
	flag.Parse()

	cfg.Market.TargetPrice = *target
	cfg.Market.TimeframeHours = *hours
	if *apiAddr != "" {
		cfg.API.Enabled = true
		cfg.API.Addr = *apiAddr
	}

	// Structured logs go to the file; the interactive display owns stdout
	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	a := app.New(cfg, util.RealClock{}, sugar)
	a.SeedLiquidity()

	// ---- API Server (optional) ----
	if cfg.API.Enabled {
		apiServer := api.NewServer(a, sugar)
		a.SetNotifier(apiServer)

		go func() {
			if err := apiServer.Start(cfg.API.Addr); err != nil {
				sugar.Fatalw("api_server_failed", "err", err)
			}
		}()
	}

	// Background feed/probability loop
	a.Start()
	defer a.Stop()

	sugar.Infow("market_sim_starting",
		"target_price", cfg.Market.TargetPrice,
		"timeframe_hours", cfg.Market.TimeframeHours,
		"api_enabled", cfg.API.Enabled)

	// Interactive command loop blocks until quit/EOF
	a.RunCLI(os.Stdin, os.Stdout)
}
