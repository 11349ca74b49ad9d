package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/di"
	"github.com/gradewatch/gradewatch/internal/ports"
	"go.uber.org/zap"
)

func main() {
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
	pipelineRunner ports.Runner,
	store core.SnapshotStore,
) error {
	defer logger.Sync()

	// Cancel the runner on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := pipelineRunner.Run(ctx)
	if err != nil {
		logger.Error("Runner failed", zap.Error(err))
	}

	// Close any store resources
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return err
}
