package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	// mysql in production, sqlite for local runs
	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	SQLitePath string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// extraction service boundary
	AIEndpoint       string
	AIAPIKey         string
	AIPromptTemplate string
	AITimeoutSecs    int
	AIMaxRetries     int
	AIBackoffMillis  int

	// pipeline
	LeaseTTLSecs   int
	WriteRetries   int
	WorkerCount    int
	IngestQueueKey string

	// notification boundary
	NotifyChannel  string
	NotifyQueueKey string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		DBDriver:   getenv("DB_DRIVER", "mysql"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "findoc"),
		MySQLUser:  getenv("MYSQL_USER", "findoc"),
		MySQLPass:  getenv("MYSQL_PASS", "findoc"),
		SQLitePath: getenv("SQLITE_PATH", "findoc.db"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		AIEndpoint:       getenv("AI_ENDPOINT", ""),
		AIAPIKey:         getenv("AI_API_KEY", ""),
		AIPromptTemplate: getenv("AI_PROMPT_TEMPLATE_ID", "findoc-v1"),
		AITimeoutSecs:    getenvInt("AI_TIMEOUT_SECONDS", 60),
		AIMaxRetries:     getenvInt("AI_MAX_RETRIES", 2),
		AIBackoffMillis:  getenvInt("AI_BACKOFF_MILLIS", 1000),

		LeaseTTLSecs:   getenvInt("LEASE_TTL_SECONDS", 300),
		WriteRetries:   getenvInt("WRITE_RETRIES", 3),
		WorkerCount:    getenvInt("WORKER_COUNT", 4),
		IngestQueueKey: getenv("INGEST_QUEUE_KEY", "findoc:ingest"),

		NotifyChannel:  getenv("NOTIFY_CHANNEL", "findoc:events"),
		NotifyQueueKey: getenv("NOTIFY_QUEUE_KEY", "findoc:email"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.AIEndpoint == "" {
		return errors.New("missing AI_ENDPOINT")
	}
	// the lease must outlive the worst-case persistence retry window
	if c.LeaseTTLSecs < 30 {
		return errors.New("LEASE_TTL_SECONDS must be at least 30")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; multiStatements handy for migrations
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
