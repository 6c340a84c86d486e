package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to optional JSON config file")
	once := flag.Bool("once", false, "Run one cycle and exit")
	flag.Parse()

	// Optional .env file; a missing one is normal.
	_ = godotenv.Load()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	setupLogging(cfg.LogLevel)
	log.WithFields(log.Fields{
		"instruments": len(cfg.Instruments),
		"interval":    cfg.PollInterval(),
		"window":      cfg.StrikeWindow,
	}).Info("starting option chain poller")

	if cfg.QuoteToken == "" {
		log.Warn("DHAN_ACCESS_TOKEN not set — upstream fetches will fail until configured")
	}

	source := NewDhanClient(cfg.QuoteBaseURL, cfg.QuoteClientID, cfg.QuoteToken)
	dests := BuildDestinations(cfg)
	poller := NewPoller(cfg, source, dests)

	if cfg.StatusPort > 0 {
		NewStatusServer(poller, cfg).Start(cfg.StatusPort)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received %s, shutting down", sig)
		poller.Stop()
	}()

	if *once {
		if err := poller.RunOnce(); err != nil {
			log.WithError(err).Error("cycle failed")
		}
		log.Info("--once flag set, exiting after single cycle")
		return
	}

	poller.Run()
	log.Info("service exiting")
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
