package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portfolioRisk/internal/app"
	"portfolioRisk/internal/config"
	"portfolioRisk/internal/logging"
	"portfolioRisk/internal/server"
	"portfolioRisk/internal/telegram"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.New("info", true).Fatal(err)
	}
	log := logging.New(cfg.LogLevel, true)
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeCache, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()
	log.Infof("data: cache at %q, ttl %s", cfg.Data.CachePath, cfg.Data.CacheTTL)

	tg, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.WebhookURL, svc, log)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("telegram: bot initialized, webhook target %s", cfg.Telegram.WebhookURL)

	mux := server.NewHTTPMux(tg.WebhookHandler) // registers /telegram/webhook
	if err := server.ListenAndServe(ctx, ":"+cfg.Server.Port, mux, log); err != nil {
		log.Errorf("server error: %v", err)
		closeCache()
		os.Exit(1)
	}
}
