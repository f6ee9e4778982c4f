package config

import (
	"os"
	"strconv"
)

// Config holds the CLI's environment-driven settings. Discovery parameters
// themselves travel in engine.Config; this covers file locations and logging.
type Config struct {
	Paths PathConfig
	Run   RunConfig
	Log   LogConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	ObservationsFile string // xlsx or csv observation export
	PriorsFile       string // YAML priors catalogue; empty means built-in
	GraphFile        string // JSON graph snapshot output/input
	ReportFile       string // markdown or html report output
}

// RunConfig holds discovery overrides
type RunConfig struct {
	Alpha           float64
	MinObservations int
	MaxParents      int
	Concurrency     int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults.
func Load() *Config {
	cfg := &Config{
		Paths: PathConfig{
			ObservationsFile: getEnv("CAUSEMAP_OBSERVATIONS", ""),
			PriorsFile:       getEnv("CAUSEMAP_PRIORS", ""),
			GraphFile:        getEnv("CAUSEMAP_GRAPH", "graph.json"),
			ReportFile:       getEnv("CAUSEMAP_REPORT", ""),
		},
		Run: RunConfig{
			Alpha:           getEnvFloat("CAUSEMAP_ALPHA", 0.05),
			MinObservations: getEnvInt("CAUSEMAP_MIN_OBSERVATIONS", 10),
			MaxParents:      getEnvInt("CAUSEMAP_MAX_PARENTS", 3),
			Concurrency:     getEnvInt("CAUSEMAP_CONCURRENCY", 4),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
