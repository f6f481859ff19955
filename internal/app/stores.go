package app

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"theknife/internal/config"
	"theknife/internal/database"
	"theknife/internal/modules/catalog"
	"theknife/internal/modules/review"
	"theknife/internal/pkg/assoc"
	"theknife/internal/repository"
)

// Stores are the four backing stores, all on one backend.
type Stores struct {
	Catalog   catalog.Store
	Owners    assoc.Store
	Favorites assoc.Store
	Reviews   review.Store

	db *gorm.DB
}

// OpenStores picks the backend named by cfg.StoreBackend.
func OpenStores(cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.StoreBackend {
	case config.BackendSQL:
		db, err := database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return SQLStores(db), nil
	case config.BackendFile:
		return FileStores(cfg, log), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func FileStores(cfg *config.Config, log *zap.Logger) *Stores {
	return &Stores{
		Catalog:   repository.NewRestaurantFileRepository(cfg.CatalogFile, log),
		Owners:    repository.NewOwnershipFileRepository(cfg.OwnersFile, log),
		Favorites: repository.NewFavoriteFileRepository(cfg.FavoritesFile, log),
		Reviews:   repository.NewReviewFileRepository(cfg.ReviewsFile, log),
	}
}

// SQLStores expects a migrated database.
func SQLStores(db *gorm.DB) *Stores {
	return &Stores{
		Catalog:   repository.NewRestaurantRepository(db),
		Owners:    repository.NewOwnershipRepository(db),
		Favorites: repository.NewFavoriteRepository(db),
		Reviews:   repository.NewReviewRepository(db),
		db:        db,
	}
}

func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
