// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/popeskul/wa-inbox/internal/models"
)

const envPrefix = "WAINBOX"

type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Database   DatabaseConfig            `mapstructure:"database"`
	Redis      RedisConfig               `mapstructure:"redis"`
	Provider   ProviderConfig            `mapstructure:"provider"`
	Cache      CacheConfig               `mapstructure:"cache"`
	Numbers    []models.ConfiguredNumber `mapstructure:"numbers"`
	Agents     AgentsConfig              `mapstructure:"agents"`
	Media      MediaConfig               `mapstructure:"media"`
	Session    SessionConfig             `mapstructure:"session"`
	Events     EventsConfig              `mapstructure:"events"`
	Middleware MiddlewareConfig          `mapstructure:"middleware"`
	Log        LogConfig                 `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ProviderConfig struct {
	BaseURL        string               `mapstructure:"base_url"`
	AccountSID     string               `mapstructure:"account_sid"`
	AuthToken      string               `mapstructure:"auth_token"`
	Timeout        int                  `mapstructure:"timeout"`
	RateLimit      float64              `mapstructure:"rate_limit"`
	RateBurst      int                  `mapstructure:"rate_burst"`
	AgentPrefixes  []string             `mapstructure:"agent_prefixes"`
	ChannelPrefix  string               `mapstructure:"channel_prefix"`
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`
	Timeout          int     `mapstructure:"timeout"`
	FailureRatio     float64 `mapstructure:"failure_ratio"`
	ConsecutiveFails uint32  `mapstructure:"consecutive_fails"`
}

type CacheConfig struct {
	Backend          string        `mapstructure:"backend"`
	KeyPrefix        string        `mapstructure:"key_prefix"`
	ConversationsTTL time.Duration `mapstructure:"conversations_ttl"`
	ParticipantsTTL  time.Duration `mapstructure:"participants_ttl"`
	MessagesTTL      time.Duration `mapstructure:"messages_ttl"`
	StaleRetention   time.Duration `mapstructure:"stale_retention"`
	PruneInterval    time.Duration `mapstructure:"prune_interval"`
}

type AgentsConfig struct {
	DefaultDepartment string   `mapstructure:"default_department"`
	DefaultSkills     []string `mapstructure:"default_skills"`
}

type MediaConfig struct {
	// ProxyURLTemplate supports {conversation_id} and {media_id} placeholders.
	ProxyURLTemplate string `mapstructure:"proxy_url_template"`
}

type SessionConfig struct {
	Window time.Duration `mapstructure:"window"`
}

type EventsConfig struct {
	NATSURL           string `mapstructure:"nats_url"`
	InvalidateSubject string `mapstructure:"invalidate_subject"`
}

type MiddlewareConfig struct {
	RateLimit      int      `mapstructure:"rate_limit"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RequestTimeout int      `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.auto_migrate", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "./migrations")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("provider.base_url", "https://conversations.twilio.com")
	v.SetDefault("provider.timeout", 10)
	v.SetDefault("provider.rate_limit", 20.0)
	v.SetDefault("provider.rate_burst", 40)
	v.SetDefault("provider.agent_prefixes", []string{"agent-", "admin"})
	v.SetDefault("provider.channel_prefix", "whatsapp:")
	v.SetDefault("provider.retry.max_retries", 3)
	v.SetDefault("provider.retry.base_delay", time.Second)
	v.SetDefault("provider.circuit_breaker.max_requests", 3)
	v.SetDefault("provider.circuit_breaker.interval", 60)
	v.SetDefault("provider.circuit_breaker.timeout", 30)
	v.SetDefault("provider.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("provider.circuit_breaker.consecutive_fails", 5)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.key_prefix", "wainbox")
	v.SetDefault("cache.conversations_ttl", 30*time.Second)
	v.SetDefault("cache.participants_ttl", 60*time.Second)
	v.SetDefault("cache.messages_ttl", 15*time.Second)
	v.SetDefault("cache.stale_retention", 30*time.Minute)
	v.SetDefault("cache.prune_interval", 5*time.Minute)
	v.SetDefault("agents.default_department", "support")
	v.SetDefault("agents.default_skills", []string{"whatsapp"})
	v.SetDefault("media.proxy_url_template", "/api/media/{conversation_id}/{media_id}")
	v.SetDefault("session.window", 24*time.Hour)
	v.SetDefault("events.invalidate_subject", "wainbox.cache.invalidate")
	v.SetDefault("middleware.rate_limit", 100)
	v.SetDefault("middleware.enable_cors", true)
	v.SetDefault("middleware.allowed_origins", []string{"*"})
	v.SetDefault("middleware.request_timeout", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads the YAML file at configPath, applies WAINBOX_* environment
// overrides and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Provider.AccountSID) == "" || strings.TrimSpace(c.Provider.AuthToken) == "" {
		errs = append(errs, errors.New("provider.account_sid and provider.auth_token are required"))
	}

	if len(c.Numbers) == 0 {
		errs = append(errs, errors.New("at least one entry in numbers is required"))
	}

	seenIDs := make(map[string]struct{}, len(c.Numbers))
	seenAddrs := make(map[string]struct{}, len(c.Numbers))
	for i, n := range c.Numbers {
		if n.ID == "" || n.RoutingAddress == "" {
			errs = append(errs, fmt.Errorf("numbers[%d]: id and routing_address are required", i))
			continue
		}
		if _, dup := seenIDs[n.ID]; dup {
			errs = append(errs, fmt.Errorf("numbers[%d]: duplicate id %q", i, n.ID))
		}
		if _, dup := seenAddrs[n.RoutingAddress]; dup {
			errs = append(errs, fmt.Errorf("numbers[%d]: duplicate routing_address %q", i, n.RoutingAddress))
		}
		seenIDs[n.ID] = struct{}{}
		seenAddrs[n.RoutingAddress] = struct{}{}
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend))
	}

	if c.Provider.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("provider.retry.max_retries must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// GetDSN returns PostgreSQL connection string.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GetURL returns the PostgreSQL connection URL used by migrations.
func (d *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// Addr returns the redis host:port pair.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
