package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pickem-app-go/logging"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Schedule feed configuration
	Feed FeedConfig `json:"feed"`

	// Local state configuration
	Local LocalConfig `json:"local"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Application configuration
	App AppConfig `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`
}

// DatabaseConfig holds MongoDB configuration for the remote pick store
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// FeedConfig holds schedule-feed configuration
type FeedConfig struct {
	ScoreboardURL string        `json:"scoreboard_url"`
	Timeout       time.Duration `json:"timeout"`
}

// LocalConfig holds local selection store configuration
type LocalConfig struct {
	StateFile string `json:"state_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	DefaultLeague  string `json:"default_league"`
	IsDevelopment  bool   `json:"is_development"`
	MetricsEnabled bool   `json:"metrics_enabled"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't treat missing .env as an error
		logging.Warnf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	// Get server port with development override
	serverPort := getEnv("SERVER_PORT", "8080")
	if isDevelopment {
		if develPort := getEnv("DEVEL_SERVER_PORT", ""); develPort != "" {
			serverPort = develPort
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:        serverPort,
			Host:        getEnv("SERVER_HOST", "127.0.0.1"),
			Environment: environment,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pickem"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Feed: FeedConfig{
			ScoreboardURL: getEnv("SCOREBOARD_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"),
			Timeout:       getDurationEnv("FEED_TIMEOUT", 10*time.Second),
		},
		Local: LocalConfig{
			StateFile: getEnv("STATE_FILE", "./data/pickem_state.json"),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "debug"),
			Prefix:      getEnv("LOG_PREFIX", "pickem"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		App: AppConfig{
			DefaultLeague:  getEnv("DEFAULT_LEAGUE", "demo-league"),
			IsDevelopment:  isDevelopment,
			MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Feed.ScoreboardURL == "" {
		return fmt.Errorf("scoreboard URL is required")
	}
	if !strings.HasPrefix(c.Feed.ScoreboardURL, "http://") && !strings.HasPrefix(c.Feed.ScoreboardURL, "https://") {
		return fmt.Errorf("scoreboard URL must be an http(s) URL, got: %s", c.Feed.ScoreboardURL)
	}

	if c.Local.StateFile == "" {
		return fmt.Errorf("local state file path is required")
	}

	if c.App.DefaultLeague == "" {
		return fmt.Errorf("default league is required")
	}

	// Database host may be empty: the remote store is optional and the app
	// runs in local-only mode without it. When a host is set the rest of the
	// connection settings must be usable.
	if c.Database.Host != "" {
		if c.Database.Port == "" {
			return fmt.Errorf("database port is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	return nil
}

// IsRemoteStoreConfigured returns true if a MongoDB host is configured
func (c *Config) IsRemoteStoreConfigured() bool {
	return c.Database.Host != ""
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GetMongoURI returns the MongoDB connection URI
func (c *Config) GetMongoURI() string {
	if c.Database.Username != "" && c.Database.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			c.Database.Username, c.Database.Password,
			c.Database.Host, c.Database.Port,
			c.Database.Database, c.Database.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s",
		c.Database.Host, c.Database.Port, c.Database.Database)
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	logging.Infof("Database: Configured=%t, Host=%s:%s/%s (Username: %s, Auth: %t)",
		c.IsRemoteStoreConfigured(), c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Feed: URL=%s, Timeout=%s", c.Feed.ScoreboardURL, c.Feed.Timeout)
	logging.Infof("Local: StateFile=%s", c.Local.StateFile)
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("App: DefaultLeague=%s, Development=%t, Metrics=%t",
		c.App.DefaultLeague, c.App.IsDevelopment, c.App.MetricsEnabled)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
