// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/spdy2http/pkg/config"
	"github.com/go-core-stack/spdy2http/pkg/httpclient"
	"github.com/go-core-stack/spdy2http/pkg/metrics"
	"github.com/go-core-stack/spdy2http/pkg/proxy"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	signal.Ignore(syscall.SIGPIPE)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration")
	}

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	level := zerolog.InfoLevel
	if parsed, parseErr := zerolog.ParseLevel(cfg.LogLevel); parseErr == nil {
		level = parsed
	}
	if cfg.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Level(level)

	stats := metrics.NewCollector()

	poolLogger := log.Logger
	if cfg.CurlVerbose && level > zerolog.DebugLevel {
		poolLogger = poolLogger.Level(zerolog.DebugLevel)
	}
	pool := httpclient.New(cfg.RequestTimeout, poolLogger)
	pool.Verbose = cfg.CurlVerbose

	engine := proxy.NewEngine(cfg, pool, stats, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := stats.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("metrics listener exited")
			}
		}()
	}

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- engine.Run(ctx)
	}()

	waitForShutdown(ctx, cancel, engineErr, cfg.GracefulShutdownTimeout)
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, engineErr <-chan error, timeout time.Duration) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down spdy2http")
		cancel()
	case err := <-engineErr:
		if err != nil {
			log.Fatal().Err(err).Msg("spdy2http engine exited")
		}
		return
	}

	select {
	case <-engineErr:
	case <-time.After(timeout):
		log.Warn().Msg("graceful shutdown timed out")
	}

	log.Info().Msg("spdy2http stopped")
}
