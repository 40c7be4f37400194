package corpus

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/jinzhu/gorm/dialects/sqlite"   // SQLite driver
)

// Open connects to the corpus database and migrates the schema.
// Supported drivers are "sqlite3" and "postgres".
func Open(driver, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus database: %w", err)
	}

	if err := db.AutoMigrate(&Recipe{}, &SafetyRule{}, &Constant{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate corpus schema: %w", err)
	}

	return db, nil
}

// Recipes returns every recipe in insertion order.
func Recipes(db *gorm.DB) ([]Recipe, error) {
	var recipes []Recipe
	if err := db.Order("id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return recipes, nil
}

// SafetyRules returns every safety rule in insertion order.
func SafetyRules(db *gorm.DB) ([]SafetyRule, error) {
	var rules []SafetyRule
	if err := db.Order("id").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to load safety rules: %w", err)
	}
	return rules, nil
}

// Constants returns the lookup table in insertion order. Substring matching
// walks this order, so seeding order is the tiebreak for multiple hits.
func Constants(db *gorm.DB) ([]Constant, error) {
	var constants []Constant
	if err := db.Order("id").Find(&constants).Error; err != nil {
		return nil, fmt.Errorf("failed to load constants: %w", err)
	}
	return constants, nil
}
