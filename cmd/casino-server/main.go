package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/bank"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"casino-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `short:"s" long:"seed" help:"Deck seed for reproducible shuffles (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		cfg.Server.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	// Setup logging
	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	var ledger bank.Ledger
	if cfg.Redis != nil {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ledger = bank.NewRedisLedger(client, cfg.Blackjack.StartingChips)
		logger.Info("Using Redis chip ledger", "addr", cfg.Redis.Addr)
	} else {
		ledger = bank.NewMemoryLedger(cfg.Blackjack.StartingChips)
	}

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	registry := server.NewRegistry(ledger, cfg.GameDefaults(), seed, logger)
	scheduler := server.NewDealerScheduler(
		quartz.NewReal(),
		time.Duration(cfg.Server.DealerDelayMS)*time.Millisecond,
		logger,
	)

	logger.Info("Starting casino server",
		"addr", cfg.GetServerAddress(),
		"dealerDelayMs", cfg.Server.DealerDelayMS)

	wsServer := server.NewServer(cfg.GetServerAddress(), registry, scheduler, logger)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	serverDone := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(serverDone)
		if err := wsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-c:
			logger.Info("Shutting down server...")
			return wsServer.Stop()
		case <-serverDone:
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
