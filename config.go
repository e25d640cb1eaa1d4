package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the service settings. Every key can be overridden with a
// CROSSWORD_ prefixed environment variable (CROSSWORD_GRID_SIZE, ...).
type Config struct {
	Port            string
	GridSize        int
	WordsFile       string
	LogLevel        string
	LogFormat       string
	GCPProjectID    string
	GCPRegion       string
	GeminiModel     string
	ShutdownTimeout time.Duration
}

// LoadConfig reads the optional .env file named by CROSSWORD_ENV_FILE
// (default ".env") then resolves the configuration from the environment.
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("CROSSWORD_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", envFile)
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("grid_size", DefaultGridSize)
	v.SetDefault("words_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("gcp_project_id", "")
	v.SetDefault("gcp_region", defaultRegion)
	v.SetDefault("gemini_model", defaultModel)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetEnvPrefix("crossword")
	v.AutomaticEnv()
	// Unprefixed names used by hosting platforms.
	_ = v.BindEnv("port", "CROSSWORD_PORT", "PORT")
	_ = v.BindEnv("gcp_project_id", "CROSSWORD_GCP_PROJECT_ID", "GCP_PROJECT_ID")
	_ = v.BindEnv("gcp_region", "CROSSWORD_GCP_REGION", "GCP_REGION")

	cfg := &Config{
		Port:            v.GetString("port"),
		GridSize:        v.GetInt("grid_size"),
		WordsFile:       v.GetString("words_file"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		GCPProjectID:    v.GetString("gcp_project_id"),
		GCPRegion:       v.GetString("gcp_region"),
		GeminiModel:     v.GetString("gemini_model"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}
	if cfg.GridSize < minGridSize || cfg.GridSize > maxGridSize {
		return nil, errors.Errorf("grid_size must be between %d and %d, got %d", minGridSize, maxGridSize, cfg.GridSize)
	}
	return cfg, nil
}
