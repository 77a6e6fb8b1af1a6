package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vegan-agent-be/internal/bootstrap"
	"vegan-agent-be/internal/config"
	"vegan-agent-be/internal/pkg/logger"
	"vegan-agent-be/internal/server"
	"vegan-agent-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (opt-in via OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	// 3. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("Main", "Failed to start scan event consumer", map[string]interface{}{"error": err.Error()})
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		sysLogger.Info("Main", "Shutting down", nil)
		_ = srv.Shutdown()
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
