// Command seed-categories creates the default catalog categories.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var defaultCategories = []string{
	"Hometheatre systems",
	"Bass speakers",
	"Amplifiers",
	"Home appliances",
	"Kitchen appliances",
	"Sound systems",
	"Car systems",
	"Equalizers",
}

func main() {
	if err := run(); err != nil {
		log.Printf("seed-categories: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", "seed-categories")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close(gdb)

	if err := gdb.WithContext(ctx).AutoMigrate(&models.Category{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	r := repo.New(gdb)
	for _, name := range defaultCategories {
		cat, created, err := r.GetOrCreateCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		if created {
			logger.Info("category_created", "name", cat.Name, "slug", cat.Slug)
		} else {
			logger.Info("category_exists", "name", cat.Name, "slug", cat.Slug)
		}
	}
	return nil
}
