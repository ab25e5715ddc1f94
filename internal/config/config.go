package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             int
	APIKey           string
	LogLevel         string
	RulesFile        string
	ThinkMin         time.Duration
	ThinkMax         time.Duration
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	MetricsNamespace string
	ShutdownTimeout  time.Duration
	SlackBotToken    string
	SlackChannel     string
}

// Load reads the environment. NATS, Postgres and Slack are optional: leaving
// their settings empty disables them.
func Load() Config {
	return Config{
		Port:             envInt("SNARE_PORT", 8760),
		APIKey:           envStr("API_KEY", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		RulesFile:        envStr("SNARE_RULES_FILE", ""),
		ThinkMin:         envDuration("SNARE_THINK_MIN", 1500*time.Millisecond),
		ThinkMax:         envDuration("SNARE_THINK_MAX", 3500*time.Millisecond),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		MetricsNamespace: envStr("SNARE_METRICS_NAMESPACE", "snare"),
		ShutdownTimeout:  envDuration("SNARE_SHUTDOWN_TIMEOUT", 10*time.Second),
		SlackBotToken:    envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:     envStr("SLACK_ALERT_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("2s", "750ms").
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
