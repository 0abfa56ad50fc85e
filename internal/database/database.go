package database

import (
	"github.com/grevocab/api/internal/config"
	"github.com/grevocab/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Word{},
		&model.User{},
		&model.RefreshToken{},
		&model.UserSnapshot{},
		&model.ProfileReport{},
	)
	if err != nil {
		return err
	}

	// Profile lookups are case-insensitive; back them with an expression
	// index so the normalized probe stays cheap.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_words_word_lower ON words(LOWER(word))")

	// Create unique index for users (provider, provider_id)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_provider_id ON users(provider, provider_id)")

	return nil
}
