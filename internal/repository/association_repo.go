package repository

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"theknife/internal/domain"
	"theknife/internal/pkg/metrics"
)

var (
	ownershipHeader = []string{"ownerId", "restaurantName"}
	favoriteHeader  = []string{"userId", "restaurantName"}
)

const (
	ownershipTable = "ownerships"
	favoriteTable  = "favorites"
)

// AssociationFileRepository stores (key, restaurant) pairs as a two-column CSV,
// rewritten in full on every save.
type AssociationFileRepository struct {
	path   string
	header []string
	log    *zap.Logger
}

func NewOwnershipFileRepository(path string, log *zap.Logger) *AssociationFileRepository {
	return &AssociationFileRepository{path: path, header: ownershipHeader, log: log}
}

func NewFavoriteFileRepository(path string, log *zap.Logger) *AssociationFileRepository {
	return &AssociationFileRepository{path: path, header: favoriteHeader, log: log}
}

func (r *AssociationFileRepository) Load(ctx context.Context) ([]domain.Association, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := readTable(r.path, r.log)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Association, 0, len(rows))
	for _, row := range rows {
		a := domain.Association{Key: field(row.fields, 0), RestaurantName: field(row.fields, 1)}
		if len(row.fields) < 2 || a.Key == "" || a.RestaurantName == "" {
			r.log.Warn("skipping malformed association row", zap.String("file", r.path), zap.Int("line", row.line))
			metrics.RowsSkipped.WithLabelValues(r.header[0]).Inc()
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Save rewrites the file. Rows are sorted so the output is stable.
func (r *AssociationFileRepository) Save(ctx context.Context, items []domain.Association) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := sortedAssociations(items)
	rows := make([][]string, 0, len(sorted))
	for _, a := range sorted {
		rows = append(rows, []string{a.Key, a.RestaurantName})
	}
	return writeTableAtomic(r.path, r.header, rows)
}

func sortedAssociations(items []domain.Association) []domain.Association {
	out := append([]domain.Association(nil), items...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].RestaurantName < out[j].RestaurantName
	})
	return out
}

// AssociationRepository is the SQL-backed association store.
type AssociationRepository struct {
	db    *gorm.DB
	table string
}

func NewOwnershipRepository(db *gorm.DB) *AssociationRepository {
	return &AssociationRepository{db: db, table: ownershipTable}
}

func NewFavoriteRepository(db *gorm.DB) *AssociationRepository {
	return &AssociationRepository{db: db, table: favoriteTable}
}

type associationModel struct {
	Key            string `gorm:"column:key_id;primaryKey"`
	RestaurantName string `gorm:"column:restaurant_name;primaryKey"`
}

func (r *AssociationRepository) Load(ctx context.Context) ([]domain.Association, error) {
	var rows []associationModel
	if err := r.db.WithContext(ctx).Table(r.table).Order("key_id, restaurant_name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Association, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Association{Key: m.Key, RestaurantName: m.RestaurantName})
	}
	return out, nil
}

// Save replaces the table contents in one transaction.
func (r *AssociationRepository) Save(ctx context.Context, items []domain.Association) error {
	rows := make([]associationModel, 0, len(items))
	for _, a := range items {
		rows = append(rows, associationModel{Key: a.Key, RestaurantName: a.RestaurantName})
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(r.table).Where("1 = 1").Delete(&associationModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Table(r.table).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 200).Error
	})
}
