package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"oracle-assistant-be/internal/bootstrap"
	"oracle-assistant-be/internal/config"
	"oracle-assistant-be/internal/server"
	"oracle-assistant-be/internal/tracer"
	"oracle-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration. Missing keys stop the process here, not on first use.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// 1.5 Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer, err := tracer.InitTracer(context.Background(), cfg.Tracing)
	if err != nil {
		log.Printf("[WARN] %v (tracing disabled)", err)
	}
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
	if err != nil {
		log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer container.Close()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
