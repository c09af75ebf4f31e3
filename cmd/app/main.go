package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/concurrency"
	"github.com/Haymooed/BallsDex-Event-Package/internal/config"
	"github.com/Haymooed/BallsDex-Event-Package/internal/crafting"
	"github.com/Haymooed/BallsDex-Event-Package/internal/craftlog"
	"github.com/Haymooed/BallsDex-Event-Package/internal/database"
	"github.com/Haymooed/BallsDex-Event-Package/internal/database/postgres"
	"github.com/Haymooed/BallsDex-Event-Package/internal/event"
	"github.com/Haymooed/BallsDex-Event-Package/internal/player"
	"github.com/Haymooed/BallsDex-Event-Package/internal/scheduler"
	"github.com/Haymooed/BallsDex-Event-Package/internal/server"
)

const (
	dbMaxConnections  = 25
	dbMaxIdleTime     = 5 * time.Minute
	dbMaxConnLifetime = 30 * time.Minute

	shutdownTimeout = 10 * time.Second

	logCleanupInterval = 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connString := cfg.GetDBConnString()

	if err := database.Migrate(ctx, connString); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, connString, database.PoolConfig{
		MaxConns:        dbMaxConnections,
		MaxConnIdleTime: dbMaxIdleTime,
		MaxConnLifetime: dbMaxConnLifetime,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	craftingRepo := postgres.NewCraftingRepository(pool)
	craftLogRepo := postgres.NewCraftLogRepository(pool)
	playerRepo := postgres.NewPlayerRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	recipeSyncRepo := postgres.NewRecipeSyncRepository(pool)

	// Sync recipe definitions from the config file into the store
	if err := syncRecipes(ctx, cfg.RecipeFile, recipeSyncRepo); err != nil {
		slog.Error("Recipe sync failed", "error", err, "file", cfg.RecipeFile)
		os.Exit(1)
	}

	// Services
	craftingService := crafting.NewService(craftingRepo, craftLogRepo, concurrency.NewLockManager())
	craftLogService := craftlog.NewService(craftLogRepo)
	playerService := player.NewService(playerRepo)
	eventService := event.NewService(eventRepo)

	// Periodic craft log retention sweep
	maintenance := scheduler.New()
	maintenance.Schedule(ctx, logCleanupInterval, craftlog.NewRetentionJob(craftLogService, cfg.CraftLogRetentionDays))
	defer maintenance.Stop()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, pool,
		craftingService, craftLogService, playerService, eventService)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}

// syncRecipes loads, validates, and upserts the recipe definitions.
// A checksum match against the last synced file skips the upserts.
func syncRecipes(ctx context.Context, path string, repo *postgres.RecipeSyncRepository) error {
	loader := crafting.NewRecipeLoader()

	cfg, err := loader.Load(path)
	if err != nil {
		return err
	}
	if err := loader.Validate(ctx, cfg, repo); err != nil {
		return err
	}

	result, err := loader.SyncToDatabase(ctx, path, cfg, repo)
	if err != nil {
		return err
	}
	if result.Skipped {
		slog.Info("Recipe definitions unchanged, sync skipped")
	} else {
		slog.Info("Recipe definitions synced", "count", result.Synced)
	}
	return nil
}
