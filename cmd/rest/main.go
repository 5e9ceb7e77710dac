package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roboto-sai-be/internal/bootstrap"
	"roboto-sai-be/internal/config"
	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/server"
	"roboto-sai-be/internal/tracer"
	"roboto-sai-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(ctx, cfg)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database. Without one the server falls back to the
	// in-memory store rather than refusing to start.
	var gormDB *gorm.DB
	if cfg.App.MessageStore != constant.MessageStoreMemory && cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Printf("[WARN] Unable to connect to GORM DB, using in-memory store: %v", err)
		} else {
			gormDB = db
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
