package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"capacity-mcp/internal/backend"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultBackendURL is the capacity backend the storefront reads from.
const DefaultBackendURL = "https://radhemelamine-backend.onrender.com"

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Backend backend.Config

	// Local dataset files; when both are set they replace the backend.
	ProductCapacityFile string
	SizeCapacityFile    string

	DataPath            string
	LogDir              string
	ExportDir           string
	WebAddr             string
	EnableMermaidCharts bool
}

// UseFiles reports whether datasets come from local files instead of the backend.
func (c *AppConfig) UseFiles() bool {
	return c.ProductCapacityFile != "" && c.SizeCapacityFile != ""
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. The binary's directory wins (MCP clients launch us from anywhere)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Working directory, for go run and local development
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir), nil
}

func fromEnv(exeDir string) *AppConfig {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	exportDir := filepath.Join(dataPath, "exports")
	for _, dir := range []string{logDir, exportDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create directory")
		}
	}

	return &AppConfig{
		Backend: backend.Config{
			BaseURL:  getEnv("BACKEND_URL", DefaultBackendURL),
			Token:    getEnv("BACKEND_TOKEN", ""),
			Timeout:  time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
			CacheTTL: time.Duration(getEnvInt("BACKEND_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		ProductCapacityFile: getEnv("PRODUCT_CAPACITY_FILE", ""),
		SizeCapacityFile:    getEnv("SIZE_CAPACITY_FILE", ""),
		DataPath:            dataPath,
		LogDir:              logDir,
		ExportDir:           exportDir,
		WebAddr:             getEnv("WEB_ADDR", "127.0.0.1:8087"),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", true),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
