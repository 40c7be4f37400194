package corpus

import (
	"fmt"
	"log"
	"os"

	"github.com/jinzhu/gorm"
	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk layout of a corpus seed. Constants use a list of
// key/value entries rather than a map so their lookup order survives the
// round trip.
type SeedFile struct {
	Recipes     []SeedRecipe   `yaml:"recipes"`
	SafetyRules []string       `yaml:"safety_rules"`
	Constants   []SeedConstant `yaml:"constants"`
}

// SeedRecipe is one recipe entry in a seed file.
type SeedRecipe struct {
	Name        string `yaml:"name"`
	Ingredients string `yaml:"ingredients"`
	Steps       string `yaml:"steps"`
}

// SeedConstant is one lookup entry in a seed file.
type SeedConstant struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Seed populates an empty corpus database from a YAML seed file. Tables
// that already hold rows are left alone, so restarts do not duplicate data.
func Seed(db *gorm.DB, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	if empty(db, &Recipe{}) {
		for _, r := range seed.Recipes {
			rec := Recipe{Name: r.Name, Ingredients: r.Ingredients, Steps: r.Steps}
			if err := db.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to seed recipe %q: %w", r.Name, err)
			}
		}
		log.Printf("Seeded %d recipes", len(seed.Recipes))
	}

	if empty(db, &SafetyRule{}) {
		for _, rule := range seed.SafetyRules {
			if err := db.Create(&SafetyRule{Rule: rule}).Error; err != nil {
				return fmt.Errorf("failed to seed safety rule: %w", err)
			}
		}
		log.Printf("Seeded %d safety rules", len(seed.SafetyRules))
	}

	if empty(db, &Constant{}) {
		for _, c := range seed.Constants {
			if err := db.Create(&Constant{Key: c.Key, Value: c.Value}).Error; err != nil {
				return fmt.Errorf("failed to seed constant %q: %w", c.Key, err)
			}
		}
		log.Printf("Seeded %d culinary constants", len(seed.Constants))
	}

	return nil
}

func empty(db *gorm.DB, model interface{}) bool {
	var count int
	db.Model(model).Count(&count)
	return count == 0
}
