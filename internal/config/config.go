package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	JWTSecret      string
	SkipAuth       bool

	// WebSocket settings
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Simulation timings
	IncomingCallDelay     time.Duration
	AutoConnectDelay      time.Duration
	TransferDelay         time.Duration
	ConferenceDelay       time.Duration
	TranscriptMinInterval time.Duration
	TranscriptMaxInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		SkipAuth:       getEnv("SKIP_AUTH", "false") == "true",
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := getEnvSeconds("WS_READ_TIMEOUT", 60)
	if err != nil {
		return nil, err
	}
	config.WSReadTimeout = wsReadTimeout

	wsWriteTimeout, err := getEnvSeconds("WS_WRITE_TIMEOUT", 10)
	if err != nil {
		return nil, err
	}
	config.WSWriteTimeout = wsWriteTimeout

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Parse simulation timings
	if config.IncomingCallDelay, err = getEnvSeconds("INCOMING_CALL_DELAY", 5); err != nil {
		return nil, err
	}
	if config.AutoConnectDelay, err = getEnvSeconds("AUTO_CONNECT_DELAY", 2); err != nil {
		return nil, err
	}
	if config.TransferDelay, err = getEnvSeconds("TRANSFER_DELAY", 2); err != nil {
		return nil, err
	}
	if config.ConferenceDelay, err = getEnvSeconds("CONFERENCE_DELAY", 3); err != nil {
		return nil, err
	}
	if config.TranscriptMinInterval, err = getEnvSeconds("TRANSCRIPT_MIN_INTERVAL", 3); err != nil {
		return nil, err
	}
	if config.TranscriptMaxInterval, err = getEnvSeconds("TRANSCRIPT_MAX_INTERVAL", 8); err != nil {
		return nil, err
	}
	if config.TranscriptMaxInterval < config.TranscriptMinInterval {
		return nil, fmt.Errorf("TRANSCRIPT_MAX_INTERVAL must be >= TRANSCRIPT_MIN_INTERVAL")
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvSeconds parses an environment variable as a whole number of seconds
func getEnvSeconds(key string, defaultValue int) (time.Duration, error) {
	seconds, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(seconds) * time.Second, nil
}
