package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	Environment string
	AppId       string

	// Sync engine defaults
	FetchTimeoutSec int    // per-attempt HTTP timeout for pull fetches
	SyncSchedule    string // cron spec for the "sync all active" sweep
	SweepSchedule   string // cron spec for the retention sweep

	// Optional external SQL archive sink for the "archive" deletion strategy
	ArchiveDriver string // "postgres" or "mysql", empty disables the sink
	ArchiveDSN    string
	ArchiveTable  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-listings"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-listings"),

		FetchTimeoutSec: getEnvInt("FETCH_TIMEOUT_SEC", 30),
		SyncSchedule:    getEnv("SYNC_SCHEDULE", "@hourly"),
		SweepSchedule:   getEnv("SWEEP_SCHEDULE", "@daily"),

		ArchiveDriver: getEnv("ARCHIVE_DRIVER", ""),
		ArchiveDSN:    getEnv("ARCHIVE_DSN", ""),
		ArchiveTable:  getEnv("ARCHIVE_TABLE", "archived_properties"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
