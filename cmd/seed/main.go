// Seeds the shared profile store from a JSON pack of pre-generated word
// profiles, so a fresh deployment does not start with a cold store.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/grevocab/api/internal/config"
	"github.com/grevocab/api/internal/database"
	"github.com/grevocab/api/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	filePath := flag.String("file", "data/profiles.json", "Path to JSON array of word profiles")
	batchSize := flag.Int("batch", 100, "Batch size for inserts")
	overwrite := flag.Bool("overwrite", false, "Overwrite existing profiles")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	profiles, err := loadProfiles(*filePath)
	if err != nil {
		log.Fatalf("Failed to load profiles: %v", err)
	}

	log.Printf("Loaded %d profiles from %s", len(profiles), *filePath)

	inserted, skipped := 0, 0
	for i := 0; i < len(profiles); i += *batchSize {
		end := i + *batchSize
		if end > len(profiles) {
			end = len(profiles)
		}

		bi, bs := insertBatch(db, profiles[i:end], *overwrite)
		inserted += bi
		skipped += bs

		if (i / *batchSize + 1) % 10 == 0 {
			log.Printf("Progress: %d/%d profiles processed", end, len(profiles))
		}
	}

	log.Printf("Seeding complete. Inserted: %d, Skipped: %d", inserted, skipped)
}

func loadProfiles(path string) ([]model.WordProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profiles []model.WordProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func insertBatch(db *gorm.DB, profiles []model.WordProfile, overwrite bool) (inserted, skipped int) {
	for _, p := range profiles {
		if p.Word == "" || p.Definition == "" {
			log.Printf("Skipping invalid profile entry %q", p.Word)
			skipped++
			continue
		}

		data, err := json.Marshal(p)
		if err != nil {
			log.Printf("Error marshaling %s: %v", p.Word, err)
			skipped++
			continue
		}

		row := model.Word{
			Word:    strings.ToLower(p.Word),
			Profile: datatypes.JSON(data),
		}

		conflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "word"}},
			DoNothing: true,
		}
		if overwrite {
			conflict = clause.OnConflict{
				Columns:   []clause.Column{{Name: "word"}},
				DoUpdates: clause.AssignmentColumns([]string{"profile", "updated_at"}),
			}
		}

		result := db.Clauses(conflict).Create(&row)
		if result.Error != nil {
			log.Printf("Error inserting %s: %v", p.Word, result.Error)
			skipped++
			continue
		}

		if result.RowsAffected > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	return inserted, skipped
}
