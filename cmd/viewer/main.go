package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"bim-viewer/internal/common/config"
	"bim-viewer/internal/common/logging"
	"bim-viewer/internal/common/middleware"
	"bim-viewer/internal/viewer/handlers"
	"bim-viewer/internal/viewer/store"
	"bim-viewer/internal/viewer/views"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ============================================================
// Viewer Service
// ============================================================

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Saved-view persistence.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatalw("open sqlite", "path", cfg.DBPath, "error", err)
	}
	defer db.Close()

	viewStore := store.New(db)
	if err := viewStore.Init(context.Background()); err != nil {
		logger.Fatalw("init view store", "error", err)
	}

	// Color configuration document. A missing file just means no
	// preconfigured views.
	viewCfg := &views.Config{}
	if _, statErr := os.Stat(cfg.ViewsPath); statErr == nil {
		viewCfg, err = views.Load(cfg.ViewsPath)
		if err != nil {
			logger.Fatalw("load views config", "path", cfg.ViewsPath, "error", err)
		}
	} else {
		logger.Infow("no views config, starting without preconfigured views", "path", cfg.ViewsPath)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Viewer Service",
		BodyLimit:    64 * 1024 * 1024, // parsed models with embedded meshes get large
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Viewer Routes
	// ============================================================

	h := handlers.New(logger, viewStore, viewCfg)
	h.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Infow("starting viewer service", "addr", addr, "env", cfg.Environment)

	if err := app.Listen(addr); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
