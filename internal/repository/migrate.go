package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the SQL stores use.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&restaurantModel{}, &reviewModel{}); err != nil {
		return err
	}
	for _, table := range []string{ownershipTable, favoriteTable} {
		if err := db.Table(table).AutoMigrate(&associationModel{}); err != nil {
			return err
		}
	}
	return nil
}
