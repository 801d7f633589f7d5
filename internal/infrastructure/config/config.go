package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	LogLevel        string
	CORSAllowOrigin string

	// Engine streaming session.
	EngineURL string
	Namespace string
	// Optional streaming endpoint handed to the engine after a car load
	// completes (System/SetCloudflareURL).
	StreamEndpointURL string
	DefaultCarID      string

	// Fixed-delay sequencing knobs. The transport exposes no per-command
	// acknowledgment, so cross-command orderings rely on these delays.
	URLHandoffDelay       time.Duration
	StopBeforeRenderDelay time.Duration
	ResequenceDelay       time.Duration
	ReadyPollInterval     time.Duration
	ReconnectDelay        time.Duration
	ReconnectMaxDelay     time.Duration

	MaxScreenshots int

	// Generative media collaborator.
	GenBaseURL        string
	GenAPIKey         string
	GenMaskTimeout    time.Duration
	GenComposeTimeout time.Duration
	GenVideoTimeout   time.Duration
	GenMaxAttempts    int
	GenBackoffBase    time.Duration
	GenBackoffCap     time.Duration
	GenPollInterval   time.Duration
	GenPollAttempts   int
	GenQuotaCooldown  time.Duration
}

func FromEnv() Config {
	return Config{
		Addr:            getEnv("ADDR", ":9080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		EngineURL:         getEnv("ENGINE_URL", ""),
		Namespace:         getEnv("ENGINE_NAMESPACE", "Configurator"),
		StreamEndpointURL: getEnv("STREAM_ENDPOINT_URL", ""),
		DefaultCarID:      getEnv("DEFAULT_CAR_ID", ""),

		URLHandoffDelay:       getEnvMs("URL_HANDOFF_DELAY_MS", 1000),
		StopBeforeRenderDelay: getEnvMs("STOP_BEFORE_RENDER_DELAY_MS", 500),
		ResequenceDelay:       getEnvMs("RESEQUENCE_DELAY_MS", 1500),
		ReadyPollInterval:     getEnvMs("READY_POLL_INTERVAL_MS", 500),
		ReconnectDelay:        getEnvMs("RECONNECT_DELAY_MS", 2000),
		ReconnectMaxDelay:     getEnvMs("RECONNECT_MAX_DELAY_MS", 30000),

		MaxScreenshots: getEnvInt("MAX_SCREENSHOTS", 100),

		GenBaseURL:        getEnv("GEN_BASE_URL", ""),
		GenAPIKey:         getEnv("GEN_API_KEY", ""),
		GenMaskTimeout:    getEnvMs("GEN_MASK_TIMEOUT_MS", 60000),
		GenComposeTimeout: getEnvMs("GEN_COMPOSE_TIMEOUT_MS", 90000),
		GenVideoTimeout:   getEnvMs("GEN_VIDEO_TIMEOUT_MS", 90000),
		GenMaxAttempts:    getEnvInt("GEN_MAX_ATTEMPTS", 3),
		GenBackoffBase:    getEnvMs("GEN_BACKOFF_BASE_MS", 5000),
		GenBackoffCap:     getEnvMs("GEN_BACKOFF_CAP_MS", 30000),
		GenPollInterval:   getEnvMs("GEN_POLL_INTERVAL_MS", 5000),
		GenPollAttempts:   getEnvInt("GEN_POLL_ATTEMPTS", 60),
		GenQuotaCooldown:  getEnvMs("GEN_QUOTA_COOLDOWN_MS", 60000),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvMs(key string, defMs int) time.Duration {
	return time.Duration(getEnvInt(key, defMs)) * time.Millisecond
}
