// Command migrate copies the flat-file state into the SQL database named by
// DATABASE_URL. The restaurants table must be empty; the other tables are
// replaced.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"theknife/internal/app"
	"theknife/internal/config"
	"theknife/internal/database"
	"theknife/internal/pkg/logger"
	"theknife/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("connect", zap.Error(err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		zl.Fatal("migrate schema", zap.Error(err))
	}

	ctx := context.Background()
	src := app.FileStores(cfg, zl)
	dst := app.SQLStores(db)
	defer dst.Close()

	existing, err := dst.Catalog.Load(ctx)
	if err != nil {
		zl.Fatal("read restaurants table", zap.Error(err))
	}
	if len(existing) > 0 {
		zl.Fatal("restaurants table is not empty", zap.Int("rows", len(existing)))
	}

	restaurants, err := src.Catalog.Load(ctx)
	if err != nil {
		zl.Fatal("load catalog file", zap.Error(err))
	}
	for _, r := range restaurants {
		if err := dst.Catalog.Append(ctx, r); err != nil {
			zl.Fatal("copy restaurant", zap.String("restaurant", r.Name), zap.Error(err))
		}
	}

	owners, err := src.Owners.Load(ctx)
	if err != nil {
		zl.Fatal("load ownership file", zap.Error(err))
	}
	if err := dst.Owners.Save(ctx, owners); err != nil {
		zl.Fatal("copy ownership", zap.Error(err))
	}

	favorites, err := src.Favorites.Load(ctx)
	if err != nil {
		zl.Fatal("load favorites file", zap.Error(err))
	}
	if err := dst.Favorites.Save(ctx, favorites); err != nil {
		zl.Fatal("copy favorites", zap.Error(err))
	}

	reviews, err := src.Reviews.Load(ctx)
	if err != nil {
		zl.Fatal("load reviews file", zap.Error(err))
	}
	if err := dst.Reviews.Save(ctx, reviews); err != nil {
		zl.Fatal("copy reviews", zap.Error(err))
	}

	zl.Info("migration completed",
		zap.Int("restaurants", len(restaurants)),
		zap.Int("ownerships", len(owners)),
		zap.Int("favorites", len(favorites)),
		zap.Int("reviews", len(reviews)),
	)
}
