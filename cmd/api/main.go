package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/yigit/campusnet/internal/pkg/logger"
	"github.com/yigit/campusnet/internal/server"
)

// @title CampusNet API
// @version 1.0
// @description Student and faculty directory, achievements and campus feed

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}
	logger.Info().Msg("Application finished gracefully.")
}

// run starts the server and blocks until it stops
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	srv, err := server.NewServer(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	return srv.Run(ctx)
}
