package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	Port              string
	ScenarioBaseURL   string
	ScenarioTimeoutMs int
	OtelEndpoint      string
	ServiceName       string
	Environment       string
	Release           string
	DisableTraces     bool
	LogLevel          string
}

// Load reads environment variables and returns a populated Config with defaults.
// The scenario driver calls back into this process over the network, so
// SCENARIO_BASE_URL defaults to the address the server itself listens on.
func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8000"),
		ScenarioBaseURL:   getEnv("SCENARIO_BASE_URL", "http://localhost:8000"),
		ScenarioTimeoutMs: getEnvInt("SCENARIO_CALL_TIMEOUT_MS", 10000),
		OtelEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel-collector:4318"),
		ServiceName:       getEnv("OTEL_SERVICE_NAME", "demo-shop"),
		Environment:       getEnv("ENVIRONMENT", "production"),
		Release:           getEnv("RELEASE", "v1.0.0"),
		DisableTraces:     getEnv("OTEL_TRACES_EXPORTER", "") == "none",
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
