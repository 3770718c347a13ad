package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soocke/scansurface-go/app"
	"github.com/soocke/scansurface-go/app/window"
	"github.com/soocke/scansurface-go/config"
	"github.com/soocke/scansurface-go/debug"
)

func main() {
	cfgPath := flag.String("config", "scansurface.json", "config file (.json, .yaml or .yml)")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime stats")
	headless := flag.Bool("headless", false, "run without a window and log detections")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := NewLogger(level)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Warn("config load", "path", *cfgPath, "error", err)
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if cfg.Debug {
		level.Set(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	if *headless {
		c := app.BuildContainer(cfg, logger, *cfgPath, app.ContainerOptions{})
		if err := app.RunHeadless(ctx, c, 100*time.Millisecond); err != nil {
			logger.Error("headless", "error", err)
			os.Exit(1)
		}
		return
	}

	window.New("Scan Surface", cfg, *cfgPath, logger).Start()
}
