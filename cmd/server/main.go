package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/auldridge/driftline/config"
	"github.com/auldridge/driftline/hub"
	"github.com/auldridge/driftline/server"
	"github.com/auldridge/driftline/wire"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfgFile := flag.String("config", ".env", "Path to config file")
	showHelp := flag.Bool("help", false, "Display help")
	showVersion := flag.Bool("version", false, "Display build information")
	flag.Parse()

	switch {
	case *showVersion:
		fmt.Printf("%-10s %s\n", "version:", version)
		fmt.Printf("%-10s %s\n", "commit:", commit)
		fmt.Printf("%-10s %s\n", "date:", date)
		return
	case *showHelp:
		flag.PrintDefaults()
		return
	}

	if err := godotenv.Load(*cfgFile); err != nil {
		fmt.Printf("config file (%s) not found, defaulting to env vars for app config...\n", *cfgFile)
	} else {
		fmt.Printf("loaded config file (%s)\n", *cfgFile)
	}

	var cfg config.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Printf("unable to process app config: %s\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)

	h := hub.New(wire.Commands)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chatSrv := server.New(cfg.ListenAddr, h, logger, cfg.NetworkName)
	healthSrv := server.NewHealthServer(cfg.HealthAddr, h, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(chatSrv.ListenAndServe)
	g.Go(healthSrv.ListenAndServe)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = chatSrv.Shutdown(shutdownCtx)
	_ = healthSrv.Shutdown(shutdownCtx)

	if err := g.Wait(); err != nil {
		logger.Error("server initialization failed", "err", err)
		os.Exit(1)
	}
}
