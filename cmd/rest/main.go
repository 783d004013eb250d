package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/bootstrap"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/config"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/server"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/tracer"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(tracer.DefaultServiceName)
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Initialize Database
	var gormDB *gorm.DB
	if !cfg.App.MemoryStore {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	log.Println("Background: Starting Consumer Service...")
	if err := container.StartBackground(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
		return
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
