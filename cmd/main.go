package main

import (
	"context"
	"errors"
	grpcserver "flockr/infrastructure/grpc/server"
	httpserver "flockr/infrastructure/http/server"
	"flockr/internal"
	"flockr/observability"
	"flockr/services"
	"flockr/storage"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	ggrpc "google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flockr terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig(".env")
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (in-memory BadgerDB)
	store, err := storage.Open(log)
	if err != nil {
		return exitRuntime, fmt.Errorf("store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing store...")
		_ = store.Close()
	}()

	// 3. Platform
	platform := services.NewPlatform(store, services.PlatformConfig{
		JWTSecret:            config.JWTSecret,
		ResetCodeTTL:         config.ResetCodeTTL,
		PromoteChannelOwners: config.PromoteChannelOwners,
		MaxMessageLength:     config.MaxMessageLength,
		MessagesPageSize:     config.MessagesPageSize,
		ArgonMemoryKB:        config.ArgonMemoryKB,
		ArgonIterations:      config.ArgonIterations,
	}, services.NewLogMailer(log), log)

	if config.DumpStateOnExit {
		defer func() {
			if err := observability.DumpState(os.Stdout, platform); err != nil {
				log.Error("Unable to dump state", "err", err)
			}
		}()
	}

	collector, err := observability.NewCollector(platform, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("stats collector failed: %w", err)
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Listeners
	httpListener, err := net.Listen("tcp", config.HTTPAddress())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.HTTPAddress(), err)
	}
	grpcListener, err := net.Listen("tcp", config.GRPCAddress())
	if err != nil {
		_ = httpListener.Close()
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.GRPCAddress(), err)
	}

	// 6. Servers
	httpServer := httpserver.NewServer(platform, collector, log)
	healthServer := grpcserver.NewHealthServer(log,
		ggrpc.ChainUnaryInterceptor(grpc.UnaryLoggingInterceptor(log)))

	errChan := make(chan error, 2)
	go func() {
		if err := httpServer.Run(ctx, httpListener, config.ShutdownTimeout); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
			return
		}
		errChan <- nil
	}()
	go func() {
		if err := healthServer.Run(ctx, grpcListener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
			return
		}
		errChan <- nil
	}()

	// 7. Wait for Stop or Error
	remaining := 2
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errChan:
		remaining--
		stop()
	}

	// 8. Graceful shutdown: both servers drain once ctx is cancelled.
	for ; remaining > 0; remaining-- {
		runErr = errors.Join(runErr, <-errChan)
	}
	if runErr != nil {
		return exitRuntime, runErr
	}
	log.Info("Program stopped cleanly")
	return exitOK, nil
}
