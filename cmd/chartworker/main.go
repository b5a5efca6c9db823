package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jyotish-systemv1/config"
	"jyotish-systemv1/internal/logger"
	"jyotish-systemv1/internal/worker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfgPath := flag.String("config", "", "config file (default ./jyotish.toml or ./jyotish.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[chartworker] config: %v", err)
	}
	slogger := logger.Init("chartworker", logger.ParseLevel(cfg.Log.Level))
	log.Printf("[chartworker] ephemeris=%s redis=%s concurrency=%d",
		cfg.Ephemeris.Source, cfg.Redis.Addr, cfg.Worker.Concurrency)

	svc, err := worker.NewService(cfg, slogger)
	if err != nil {
		log.Fatalf("[chartworker] init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := svc.Run(ctx); err != nil {
		log.Fatalf("[chartworker] fatal: %v", err)
	}
}
