// Package config loads console configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig identifies the running process.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// APIConfig points the client at the remote Barruu REST API.
type APIConfig struct {
	// BaseURL is the versioned API root, e.g. http://localhost:5000/api.
	BaseURL string
	// TimeoutSeconds bounds each outgoing request.
	TimeoutSeconds int
}

// SessionConfig controls local session persistence.
type SessionConfig struct {
	// Path of the session file. Empty means $HOME/.barruu/session.json.
	Path string
	// LogoutOnNetworkError clears the session when a session refresh fails
	// because the API is unreachable. Off by default: a network blip
	// should not log the operator out.
	LogoutOnNetworkError bool
}

// LoggingConfig controls zerolog.
type LoggingConfig struct {
	Level string
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// ProfilingConfig controls Pyroscope.
type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// ShutdownConfig controls graceful shutdown pacing.
type ShutdownConfig struct {
	TimeoutSeconds            int
	ReadinessDrainDelaySeconds int
}

// Config is the full console configuration.
type Config struct {
	Service   ServiceConfig
	API       APIConfig
	Session   SessionConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "barruu-console"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("PORT", "8080"),
		},
		API: APIConfig{
			BaseURL:        getEnv("BARRUU_API_URL", "http://localhost:5000/api"),
			TimeoutSeconds: getEnvInt("BARRUU_API_TIMEOUT_SECONDS", 30),
		},
		Session: SessionConfig{
			Path:                 getEnv("BARRUU_SESSION_FILE", ""),
			LogoutOnNetworkError: getEnvBool("BARRUU_LOGOUT_ON_NETWORK_ERROR", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			TimeoutSeconds:            getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
			ReadinessDrainDelaySeconds: getEnvInt("READINESS_DRAIN_DELAY_SECONDS", 0),
		},
	}
}

// Validate rejects configurations the console cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("BARRUU_API_URL must not be empty")
	}
	if c.Service.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("BARRUU_API_TIMEOUT_SECONDS must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// GetAPITimeoutDuration returns the per-request timeout.
func (c *Config) GetAPITimeoutDuration() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// GetShutdownTimeoutDuration returns the graceful shutdown deadline.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Shutdown.TimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to fail readiness before
// shutting the HTTP server down.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.Shutdown.ReadinessDrainDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
