package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quickemail/email-triage/internal/core"
	"github.com/quickemail/email-triage/internal/di"
	"github.com/quickemail/email-triage/internal/ports"
	"github.com/quickemail/email-triage/internal/textgen"
)

func main() {
	// Load .env if present; viper picks the values up from the environment
	_ = godotenv.Load()

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	handle *textgen.Handle,
	surfaces []ports.EmailIngest,
	cache core.ResultCache,
	store core.EmailStore,
) error {
	defer logger.Sync()

	// Load the text generation backend. A failure is not fatal: the
	// service starts degraded and classifies through the fallback
	// heuristic until a reload succeeds.
	if err := handle.Load(context.Background()); err != nil {
		logger.Warn("Starting without a loaded model", zap.Error(err))
	}

	// Start the inbound surfaces
	for _, surface := range surfaces {
		if err := surface.Start(); err != nil {
			logger.Fatal("Failed to start inbound surface", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the surfaces in reverse start order
	for i := len(surfaces) - 1; i >= 0; i-- {
		if err := surfaces[i].Stop(); err != nil {
			logger.Error("Failed to stop inbound surface", zap.Error(err))
		}
	}

	// Release the text generation backend
	if err := handle.Close(); err != nil {
		logger.Error("Failed to close text generation handle", zap.Error(err))
	}

	// Stop the cache if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	// Disconnect the audit store if needed
	if closer, ok := store.(interface{ Close(ctx context.Context) error }); ok {
		if err := closer.Close(context.Background()); err != nil {
			logger.Error("Failed to close audit store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
