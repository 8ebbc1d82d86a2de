package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	// Job history persistence
	HistoryDriver        string // "postgres" or "sqlite"
	SQLitePath           string
	HistoryRetentionDays int

	// OCR.Space cloud provider
	OCRSpaceAPIKey   string
	OCRSpaceEndpoint string

	// Local Tesseract engine
	TesseractPath string

	// Pipeline tuning
	DefaultLanguage string
	MinConfidence   float64
	CacheCapacity   int
	ProviderTimeout time.Duration
	MaxRetries      int
	PhonePattern    string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		HistoryDriver:        os.Getenv("HISTORY_DRIVER"),
		SQLitePath:           os.Getenv("SQLITE_PATH"),
		HistoryRetentionDays: getInt("HISTORY_RETENTION_DAYS", 90),
		OCRSpaceAPIKey:       os.Getenv("OCR_SPACE_API_KEY"),
		OCRSpaceEndpoint:     os.Getenv("OCR_SPACE_ENDPOINT"),
		TesseractPath:        os.Getenv("TESSERACT_PATH"),
		DefaultLanguage:      os.Getenv("OCR_DEFAULT_LANGUAGE"),
		MinConfidence:        getFloat("OCR_MIN_CONFIDENCE", 70),
		CacheCapacity:        getInt("OCR_CACHE_CAPACITY", 100),
		ProviderTimeout:      time.Duration(getInt("OCR_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries:           getInt("OCR_MAX_RETRIES", 3),
		PhonePattern:         os.Getenv("OCR_PHONE_PATTERN"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.HistoryDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.HistoryDriver = "postgres"
		} else {
			cfg.HistoryDriver = "sqlite"
		}
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "ocr_history.db"
	}
	if cfg.OCRSpaceEndpoint == "" {
		cfg.OCRSpaceEndpoint = "https://api.ocr.space/parse/image"
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "es"
	}

	// Constrained hosting (free-tier dynos etc.) gets more patience
	// per call to ride out slow cold starts on the remote end.
	if cfg.Env == "constrained" {
		if os.Getenv("OCR_TIMEOUT_SECONDS") == "" {
			cfg.ProviderTimeout = 120 * time.Second
		}
		if os.Getenv("OCR_MAX_RETRIES") == "" {
			cfg.MaxRetries = 5
		}
	}

	return cfg
}

func getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using default %g", key, raw, def)
		return def
	}
	return v
}
