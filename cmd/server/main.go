package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	port := flag.String("port", cfg.Server.Port, "Server port")
	start := flag.String("start", cfg.Shell.StartLocation, "Start location of the web app")
	pathConfigFile := flag.String("path-config", cfg.PathConfig.AssetFile, "Bundled path configuration file (json, yaml or toml)")
	pathConfigURL := flag.String("path-config-url", cfg.PathConfig.RemoteURL, "Remote path configuration URL")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Shell.StartLocation = *start
	cfg.PathConfig.AssetFile = *pathConfigFile
	cfg.PathConfig.RemoteURL = *pathConfigURL
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
		cfg.Shell.Debug = true
	}

	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid logging configuration: %v\n", err)
			os.Exit(1)
		}
	}

	srv, err := server.NewServer(cfg, server.Options{Logger: logger})
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
