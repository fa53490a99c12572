package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultCatalogURL       = "https://kampita-api.vercel.app/api"
	DefaultPlaceholderImage = "/images/placeholder/song.jpg"
)

type StateBackend string

const (
	StateBackendSQLite   StateBackend = "sqlite"
	StateBackendRedis    StateBackend = "redis"
	StateBackendPostgres StateBackend = "postgres"
)

type Config struct {
	DiscordToken  string
	ApplicationID string

	GuildID string
	OwnerID string

	ShardCount int

	LogLevel         string
	AutoLeaveTimeout int
	DefaultVolume    int
	MaxQueueSize     int

	CatalogURL       string
	CatalogTimeout   int
	PlaceholderImage string

	StateBackend StateBackend
	StatePath    string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	MetricsAddr string
	FFmpegPath  string
}

// Load reads the environment (and a .env file when present) and validates the
// settings the Discord bot needs.
func Load() (*Config, error) {
	cfg := Read()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read is Load without the Discord credential checks. The CLI uses it for
// catalog and state commands.
func Read() *Config {
	_ = godotenv.Load()

	return &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),

		GuildID: os.Getenv("DISCORD_GUILD_ID"),
		OwnerID: os.Getenv("OWNER_ID"),

		ShardCount: getEnvAsIntWithDefault("SHARD_COUNT", 0),

		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		AutoLeaveTimeout: getEnvAsIntWithDefault("AUTO_LEAVE_TIMEOUT", 300),
		DefaultVolume:    getEnvAsIntWithDefault("DEFAULT_VOLUME", 100),
		MaxQueueSize:     getEnvAsIntWithDefault("MAX_QUEUE_SIZE", 500),

		CatalogURL:       strings.TrimRight(getEnvWithDefault("CATALOG_API_URL", DefaultCatalogURL), "/"),
		CatalogTimeout:   getEnvAsIntWithDefault("CATALOG_TIMEOUT", 15),
		PlaceholderImage: getEnvWithDefault("PLACEHOLDER_IMAGE", DefaultPlaceholderImage),

		StateBackend: StateBackend(strings.ToLower(getEnvWithDefault("STATE_BACKEND", string(StateBackendSQLite)))),
		StatePath:    getEnvWithDefault("STATE_PATH", "kampita.db"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnvAsInt("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvAsIntWithDefault("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),

		MetricsAddr: os.Getenv("METRICS_ADDR"),
		FFmpegPath:  getEnvWithDefault("FFMPEG_PATH", "ffmpeg"),
	}
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}

	if c.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required")
	}

	return c.ValidateRuntime()
}

// ValidateRuntime checks everything that is shared by the bot and the CLI.
func (c *Config) ValidateRuntime() error {
	if c.DefaultVolume < 0 || c.DefaultVolume > 100 {
		return errors.New("DEFAULT_VOLUME must be between 0 and 100")
	}

	if c.MaxQueueSize < 1 {
		return errors.New("MAX_QUEUE_SIZE must be at least 1")
	}

	if c.CatalogTimeout < 1 {
		return errors.New("CATALOG_TIMEOUT must be at least 1 second")
	}

	switch c.StateBackend {
	case StateBackendSQLite:
		if c.StatePath == "" {
			return errors.New("STATE_PATH is required for the sqlite state backend")
		}
	case StateBackendRedis:
		if c.RedisHost == "" {
			return errors.New("REDIS_HOST is required for the redis state backend")
		}
	case StateBackendPostgres:
		if c.DBHost == "" {
			return errors.New("DB_HOST is required for the postgres state backend")
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q (want sqlite, redis or postgres)", c.StateBackend)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.GuildID != ""
}

func (c *Config) HasDatabase() bool {
	return c.DBHost != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisHost != ""
}

// InitialVolume is DEFAULT_VOLUME mapped onto the player's [0,1] range.
func (c *Config) InitialVolume() float64 {
	return float64(c.DefaultVolume) / 100
}

func (c *Config) CatalogTimeoutDuration() time.Duration {
	return time.Duration(c.CatalogTimeout) * time.Second
}

func getEnvAsInt(key string) int {
	return getEnvAsIntWithDefault(key, 0)
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) GetDBConfig() *DBConfig {
	return &DBConfig{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c *Config) GetRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
