package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the QWatch server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Feed      FeedConfig
	Simulator SimulatorConfig
	IBMQ      IBMQConfig
	API       APIConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectAttempts int
}

type RedisConfig struct {
	URL string
}

// FeedConfig selects where the live snapshot comes from and how often it moves.
type FeedConfig struct {
	Mode            string
	TickInterval    time.Duration
	RefreshInterval time.Duration
	CacheTTL        time.Duration
}

type SimulatorConfig struct {
	SeedCount           int
	MaxJobs             int
	RandomSeed          uint64
	ArrivalProbability  float64
	StartProbability    float64
	CompleteProbability float64
}

type IBMQConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
	JobLimit int
}

// APIConfig covers the HTTP surface. RateLimitRequests are allowed per key
// and route within each RateLimitWindow.
type APIConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	AllowedOrigin     string
	BootstrapAdminKey string
}

const (
	FeedModeSimulate = "simulate"
	FeedModeRemote   = "remote"
)

// Interval returns the step interval for the configured mode.
func (f FeedConfig) Interval() time.Duration {
	if f.Mode == FeedModeRemote {
		return f.RefreshInterval
	}
	return f.TickInterval
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("QWATCH_PORT", 8080),
			Env:  envString("QWATCH_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnectAttempts: envInt("DATABASE_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Feed: FeedConfig{
			Mode:            strings.ToLower(envString("FEED_MODE", FeedModeSimulate)),
			TickInterval:    envDuration("FEED_TICK_INTERVAL", 3*time.Second),
			RefreshInterval: envDuration("FEED_REFRESH_INTERVAL", 30*time.Second),
			CacheTTL:        envDuration("SNAPSHOT_CACHE_TTL", 30*time.Second),
		},
		Simulator: SimulatorConfig{
			SeedCount:           envInt("SIM_SEED_COUNT", 25),
			MaxJobs:             envInt("SIM_MAX_JOBS", 25),
			RandomSeed:          envUint64("SIM_RANDOM_SEED", 0),
			ArrivalProbability:  envFloat("SIM_ARRIVAL_PROBABILITY", 0.3),
			StartProbability:    envFloat("SIM_START_PROBABILITY", 0.2),
			CompleteProbability: envFloat("SIM_COMPLETE_PROBABILITY", 0.1),
		},
		IBMQ: IBMQConfig{
			BaseURL:  envString("IBMQ_BASE_URL", "https://api.quantum-computing.ibm.com/runtime"),
			APIToken: os.Getenv("IBMQ_API_TOKEN"),
			Timeout:  envDuration("IBMQ_TIMEOUT", 10*time.Second),
			JobLimit: envInt("IBMQ_JOB_LIMIT", 25),
		},
		API: APIConfig{
			RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
			RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Minute),
			AllowedOrigin:     envString("CORS_ALLOWED_ORIGIN", "*"),
			BootstrapAdminKey: os.Getenv("ADMIN_BOOTSTRAP_KEY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("DATABASE_CONNECT_ATTEMPTS must be at least 1, got %d", c.Database.ConnectAttempts)
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Feed.Mode != FeedModeSimulate && c.Feed.Mode != FeedModeRemote {
		return fmt.Errorf("FEED_MODE must be one of simulate, remote; got %q", c.Feed.Mode)
	}
	if c.Feed.TickInterval <= 0 {
		return fmt.Errorf("FEED_TICK_INTERVAL must be positive, got %s", c.Feed.TickInterval)
	}
	if c.Feed.RefreshInterval <= 0 {
		return fmt.Errorf("FEED_REFRESH_INTERVAL must be positive, got %s", c.Feed.RefreshInterval)
	}
	if c.Feed.CacheTTL < 0 {
		return fmt.Errorf("SNAPSHOT_CACHE_TTL must not be negative, got %s", c.Feed.CacheTTL)
	}

	if c.Simulator.SeedCount < 1 {
		return fmt.Errorf("SIM_SEED_COUNT must be at least 1, got %d", c.Simulator.SeedCount)
	}
	if c.Simulator.MaxJobs < 1 {
		return fmt.Errorf("SIM_MAX_JOBS must be at least 1, got %d", c.Simulator.MaxJobs)
	}
	for name, p := range map[string]float64{
		"SIM_ARRIVAL_PROBABILITY":  c.Simulator.ArrivalProbability,
		"SIM_START_PROBABILITY":    c.Simulator.StartProbability,
		"SIM_COMPLETE_PROBABILITY": c.Simulator.CompleteProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, p)
		}
	}

	if !strings.HasPrefix(c.IBMQ.BaseURL, "http://") && !strings.HasPrefix(c.IBMQ.BaseURL, "https://") {
		return fmt.Errorf("IBMQ_BASE_URL must start with http:// or https://, got %q", c.IBMQ.BaseURL)
	}
	if c.IBMQ.Timeout <= 0 {
		return fmt.Errorf("IBMQ_TIMEOUT must be positive, got %s", c.IBMQ.Timeout)
	}
	if c.IBMQ.JobLimit < 1 {
		return fmt.Errorf("IBMQ_JOB_LIMIT must be at least 1, got %d", c.IBMQ.JobLimit)
	}

	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %s", c.API.RateLimitWindow)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envUint64(key string, defaultVal uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	u, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return u
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
