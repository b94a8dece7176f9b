package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DatabasePath          string
	LogLevel              string
	StatementsDir         string
	StatementSource       string
	IngestWorkers         int
	StoreTimeout          time.Duration
	MaxStatementSizeBytes int64

	// Foreign exchange rate refresh (CBR export endpoint).
	FxRatesBaseURL   string
	FxRatesFromDate  string
	FxRefreshEnabled bool
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	storeTimeoutStr := getEnv("STORE_TIMEOUT", "5s")
	storeTimeout, err := time.ParseDuration(storeTimeoutStr)
	if err != nil {
		log.Printf("WARNING: Invalid STORE_TIMEOUT format '%s'. Using default 5s. Error: %v", storeTimeoutStr, err)
		storeTimeout = 5 * time.Second
	}

	maxStatementSizeStr := getEnv("MAX_STATEMENT_SIZE_BYTES", "10485760")
	maxStatementSize, err := strconv.ParseInt(maxStatementSizeStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_STATEMENT_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxStatementSizeStr, err)
		maxStatementSize = 10 * 1024 * 1024
	}

	ingestWorkers := getEnvAsInt("INGEST_WORKERS", 4)
	if ingestWorkers < 1 {
		log.Printf("WARNING: INGEST_WORKERS must be at least 1, got %d. Using 1.", ingestWorkers)
		ingestWorkers = 1
	}

	Cfg = &AppConfig{
		DatabasePath:          getEnv("DATABASE_PATH", "./investfolio.db"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		StatementsDir:         getEnv("STATEMENTS_DIR", "./statements"),
		StatementSource:       getEnv("STATEMENT_SOURCE", "psb"),
		IngestWorkers:         ingestWorkers,
		StoreTimeout:          storeTimeout,
		MaxStatementSizeBytes: maxStatementSize,

		FxRatesBaseURL:   getEnv("FX_RATES_BASE_URL", "https://www.cbr.ru/Queries/UniDbQuery/DownloadExcel/98956"),
		FxRatesFromDate:  getEnv("FX_RATES_FROM_DATE", "2010-01-01"),
		FxRefreshEnabled: getEnvAsBool("FX_REFRESH_ENABLED", false),
	}

	log.Printf("Configuration loaded: DBPath=%s, LogLevel=%s, StatementsDir=%s, Source=%s",
		Cfg.DatabasePath, Cfg.LogLevel, Cfg.StatementsDir, Cfg.StatementSource)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}
