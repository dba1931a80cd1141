// Package config provides configuration for the backend and the agent.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the pipeline configuration.
type Config struct {
	// Backend server
	HTTPPort    int
	DatabaseURL string

	// Claim service
	ClaimLimit    int
	ClaimOverscan int
	StaleWindow   time.Duration

	// Agent
	BackendURL      string
	BridgeURL       string
	SellerAPIURL    string
	StateFile       string
	MarketplaceID   string
	SellerID        string
	ScanInterval    time.Duration
	PublishInterval time.Duration
	PublishTimeout  time.Duration
	MinPublishDelay time.Duration
	MaxPublishDelay time.Duration

	// Draft generation
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:     getEnv("DATABASE_URL", "file:replyflow.db?cache=shared&mode=rwc"),
		ClaimLimit:      getEnvInt("CLAIM_LIMIT", 10),
		ClaimOverscan:   getEnvInt("CLAIM_OVERSCAN", 20),
		StaleWindow:     time.Duration(getEnvInt("STALE_WINDOW_MS", 300000)) * time.Millisecond,
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:8080"),
		BridgeURL:       getEnv("BRIDGE_URL", "ws://localhost:8091/bridge"),
		SellerAPIURL:    getEnv("SELLER_API_URL", "https://seller.ozon.ru/api"),
		StateFile:       getEnv("STATE_FILE", "agent_state.json"),
		MarketplaceID:   getEnv("MARKETPLACE_ID", ""),
		SellerID:        getEnv("SELLER_ID", ""),
		ScanInterval:    time.Duration(getEnvInt("SCAN_INTERVAL_MS", 600000)) * time.Millisecond,
		PublishInterval: time.Duration(getEnvInt("PUBLISH_INTERVAL_MS", 60000)) * time.Millisecond,
		PublishTimeout:  time.Duration(getEnvInt("PUBLISH_TIMEOUT_MS", 40000)) * time.Millisecond,
		MinPublishDelay: time.Duration(getEnvInt("MIN_PUBLISH_DELAY_MS", 12000)) * time.Millisecond,
		MaxPublishDelay: time.Duration(getEnvInt("MAX_PUBLISH_DELAY_MS", 25000)) * time.Millisecond,
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
