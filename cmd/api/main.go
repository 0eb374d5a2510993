package main

import (
	"context"
	"os"

	"github.com/yigit/hackathon/internal/pkg/logger"
	"github.com/yigit/hackathon/internal/server"
)

// @title Hackathon Applications API
// @version 1.0
// @description Public submission and admin review API for hackathon team applications and school workshop requests
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@hackathon.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
