package migration

import (
	"Coffee-Shop-Backend/domain"
	"Coffee-Shop-Backend/entities"
	"fmt"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.Drink{}); err != nil {
		return fmt.Errorf("migrating drink table: %w", err)
	}
	return nil
}

// Fresh drops every table, recreates the schema and seeds the sample drink.
// All existing records are lost.
func Fresh(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&entities.Drink{}); err != nil {
		return fmt.Errorf("dropping drink table: %w", err)
	}
	if err := Migrate(db); err != nil {
		return err
	}
	return Seed(db)
}

func Seed(db *gorm.DB) error {
	recipe, err := domain.Recipe{{Color: "blue", Name: "water", Parts: 1}}.Serialize()
	if err != nil {
		return err
	}
	water := entities.Drink{
		Title:  "water",
		Recipe: recipe,
	}
	if err := db.Create(&water).Error; err != nil {
		return fmt.Errorf("seeding drinks: %w", err)
	}
	return nil
}
