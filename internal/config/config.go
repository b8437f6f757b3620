package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the process configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
	AllowedMethods string `yaml:"allowed_methods"`
	AllowedHeaders string `yaml:"allowed_headers"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	MongoURI   string `yaml:"mongo_uri"`
	MongoDB    string `yaml:"mongo_db"`
}

// RedisConfig is optional; an empty Addr disables caching and rate limiting
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	ReportTTLS int    `yaml:"report_ttl_seconds"`
}

// Enabled reports whether a Redis address is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// ReportTTL returns the cache lifetime of a report
func (r RedisConfig) ReportTTL() time.Duration {
	return time.Duration(r.ReportTTLS) * time.Second
}

type AuthConfig struct {
	AdminUsername     string `yaml:"admin_username"`
	AdminPassword     string `yaml:"admin_password"`
	JWTSecret         string `yaml:"jwt_secret"`
	TokenTTLHours     int    `yaml:"token_ttl_hours"`
	RequireForReports bool   `yaml:"require_for_reports"`
}

type RateLimitConfig struct {
	Assessments   int `yaml:"assessments"` // per window and client, 0 disables
	WindowSeconds int `yaml:"window_seconds"`

	// X-Forwarded-For is only read when the peer matches one of these IPs or CIDRs
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Window returns the rate limit window
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// ProxyNets parses TrustedProxies, a bare IP becomes a single-host network
func (r RateLimitConfig) ProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(r.TrustedProxies))
	for _, entry := range r.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, n, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, fmt.Errorf("config: trusted proxy %q: %w", entry, err)
			}
			nets = append(nets, n)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, fmt.Errorf("config: trusted proxy %q is not an IP or CIDR", entry)
		}
		bits := 8 * net.IPv6len
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 8*net.IPv4len
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8000"},
		CORS: CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization, X-Request-ID",
		},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "reports.db",
			MongoDB:    "cares",
		},
		Redis: RedisConfig{ReportTTLS: 24 * 60 * 60},
		AI:    DefaultAIConfig(),
		Auth: AuthConfig{
			AdminUsername: "admin",
			TokenTTLHours: 24,
		},
		RateLimit: RateLimitConfig{Assessments: 30, WindowSeconds: 60},
	}
}

// LoadDotEnv loads .env into the environment; a missing file is ignored
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the config file location from CARES_CONFIG
func Path() string {
	return getEnvOrDefault("CARES_CONFIG", "config.yml")
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("config: store.sqlite_path is required for the sqlite driver")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("config: store.mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	switch c.AI.Provider {
	case ProviderOpenRouter, ProviderGemini, ProviderOffline:
	default:
		return fmt.Errorf("config: unknown ai provider %q", c.AI.Provider)
	}
	if c.AI.TimeoutMS <= 0 {
		return errors.New("config: ai.timeout_ms must be positive")
	}
	if c.Auth.RequireForReports && (c.Auth.JWTSecret == "" || c.Auth.AdminPassword == "") {
		return errors.New("config: auth.require_for_reports needs jwt_secret and admin_password")
	}
	if c.RateLimit.Assessments < 0 || (c.RateLimit.Assessments > 0 && c.RateLimit.WindowSeconds <= 0) {
		return errors.New("config: rate_limit needs a positive window")
	}
	if _, err := c.RateLimit.ProxyNets(); err != nil {
		return err
	}
	return nil
}

func applyEnv(c *Config) {
	c.Server.Host = getEnvOrDefault("HOST", c.Server.Host)
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)

	c.CORS.AllowedOrigins = getEnvOrDefault("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
	c.CORS.AllowedMethods = getEnvOrDefault("CORS_ALLOWED_METHODS", c.CORS.AllowedMethods)
	c.CORS.AllowedHeaders = getEnvOrDefault("CORS_ALLOWED_HEADERS", c.CORS.AllowedHeaders)

	c.Store.MongoURI = getEnvOrDefault("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDB = getEnvOrDefault("MONGO_DB", c.Store.MongoDB)
	c.Store.SQLitePath = getEnvOrDefault("SQLITE_PATH", c.Store.SQLitePath)
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	} else if os.Getenv("MONGO_URI") != "" {
		c.Store.Driver = DriverMongo
	}

	// Remove redis:// prefix if present
	c.Redis.Addr = strings.TrimPrefix(getEnvOrDefault("REDIS_URI", c.Redis.Addr), "redis://")
	c.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	applyAIEnv(&c.AI)

	c.Auth.AdminUsername = getEnvOrDefault("ADMIN_USERNAME", c.Auth.AdminUsername)
	c.Auth.AdminPassword = getEnvOrDefault("ADMIN_PASSWORD", c.Auth.AdminPassword)
	c.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.RequireForReports = getEnvBool("REPORTS_REQUIRE_AUTH", c.Auth.RequireForReports)

	c.RateLimit.Assessments = getEnvInt("RATE_LIMIT_ASSESSMENTS", c.RateLimit.Assessments)
	c.RateLimit.WindowSeconds = getEnvInt("RATE_LIMIT_WINDOW_SECONDS", c.RateLimit.WindowSeconds)
	if v := os.Getenv("RATE_LIMIT_TRUSTED_PROXIES"); v != "" {
		c.RateLimit.TrustedProxies = strings.Split(v, ",")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
