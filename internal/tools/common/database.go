package common

import (
	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/config"
	"github.com/sandeepkv93/bazar-universal-api/internal/database"
)

// loadConfig applies envFile and then reads the validated configuration.
func loadConfig(envFile string) (*config.Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return config.Load()
}

func OpenDatabase(envFile string) (*gorm.DB, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	return database.Open(cfg)
}
