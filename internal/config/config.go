package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process environment of the analyzer. Analysis parameters live in pkg/config.
type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string // console or json
	LogFile     string

	Database struct {
		DSN          string
		MaxConns     int
		QueryTimeout time.Duration
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		CacheTTL time.Duration
		Disabled bool
	}

	Guard struct {
		CallTimeout       time.Duration
		RequestsPerSecond float64
		Burst             int
		MaxFailures       int
		OpenTimeout       time.Duration
		MaxRetries        int // 0 disables retries
	}

	Monitoring struct {
		MetricsAddr string // empty disables the metrics server
	}

	// Run-completion alerts are sent only when both are set
	Telegram struct {
		Token  string
		ChatID string
	}
}

// Load reads the configuration from the environment
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("WFO_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	cfg.Database.DSN = getEnv("WFO_DATABASE_DSN", "")
	cfg.Database.MaxConns = getEnvInt("WFO_DATABASE_MAX_CONNS", 5)
	cfg.Database.QueryTimeout = getEnvDuration("WFO_DATABASE_QUERY_TIMEOUT", 30*time.Second)

	cfg.Redis.Addr = getEnv("WFO_REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("WFO_REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("WFO_REDIS_DB", 0)
	cfg.Redis.CacheTTL = getEnvDuration("WFO_CACHE_TTL", time.Hour)
	cfg.Redis.Disabled = getEnvBool("WFO_CACHE_DISABLED", false)

	cfg.Guard.CallTimeout = getEnvDuration("WFO_CALL_TIMEOUT", 30*time.Second)
	cfg.Guard.RequestsPerSecond = getEnvFloat("WFO_RATE_LIMIT", 10)
	cfg.Guard.Burst = getEnvInt("WFO_RATE_BURST", 5)
	cfg.Guard.MaxFailures = getEnvInt("WFO_BREAKER_MAX_FAILURES", 5)
	cfg.Guard.OpenTimeout = getEnvDuration("WFO_BREAKER_OPEN_TIMEOUT", time.Minute)
	cfg.Guard.MaxRetries = getEnvInt("WFO_MAX_RETRIES", 3)

	cfg.Monitoring.MetricsAddr = getEnv("WFO_METRICS_ADDR", "")

	cfg.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", "")

	return cfg
}

// LoadEnvFile loads variables from an env file into the process environment.
// A missing file is not an error; existing variables are not overwritten.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}

	if err := godotenv.Load(path); err != nil {
		return false, err
	}
	return true, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45")
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
