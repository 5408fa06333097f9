package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"StockX/internal/di"
	"StockX/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	checkOnly := flag.Bool("check", false, "validate the configuration and exit")
	flag.Parse()

	if err := run(*configPath, *checkOnly); err != nil {
		fmt.Fprintf(os.Stderr, "stockx: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, checkOnly bool) error {
	// Values already in the environment take precedence over .env.
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if checkOnly {
		fmt.Printf("config ok: env=%s prices=%s news=%s artifacts=%s recorder=%s\n",
			cfg.Environment, cfg.PriceFeed.Provider, cfg.News.Provider, cfg.Artifacts.Backend, cfg.Recorder.Backend)
		return nil
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return app.Run()
}
