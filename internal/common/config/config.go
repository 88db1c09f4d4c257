package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Log      LogConfig      `json:"log"`
	Auth     AuthConfig     `json:"auth"`
	Mail     MailConfig     `json:"mail"`
	Admin    AdminConfig    `json:"admin"`
}

// ServerConfig describes the HTTP server.
type ServerConfig struct {
	Name string `json:"name"` // service name, used for consul + tracing
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig describes the MySQL connection.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type ConsulConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`
}

// AuthConfig controls JWT verification for the API surface and the cookie
// session used by the admin panel.
type AuthConfig struct {
	Enabled       bool   `json:"enabled"`
	JWTSecret     string `json:"jwt_secret"`
	SessionSecret string `json:"session_secret"`
	Issuer        string `json:"issuer"`
	Audience      string `json:"audience"`
	TokenTTLHour  int    `json:"token_ttl_hours"`
}

// MailConfig controls the SES-backed notification mailer.
type MailConfig struct {
	Enabled bool   `json:"enabled"`
	Region  string `json:"region"`
	From    string `json:"from"`
}

// AdminConfig holds the admin-panel session heuristics.
type AdminConfig struct {
	SessionIdleMinutes int `json:"session_idle_minutes"` // idle timeout before forced re-login
	MaxSessionIPs      int `json:"max_session_ips"`      // distinct IPs allowed per session
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig reads a JSON config file. A missing file falls back to the
// development defaults rather than failing startup.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
		applyEnvOverrides(globalConfig)
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig returns the global configuration.
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// applyEnvOverrides lets deployment secrets win over the config file.
// The .env file (if any) is loaded into the environment by main.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		var port int
		if _, scanErr := fmt.Sscanf(v, "%d", &port); scanErr == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

// defaultConfig is the development-environment fallback.
func defaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Name: "motormarket",
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "motormarket",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			PoolSize: 10,
		},
		Consul: ConsulConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
		Auth: AuthConfig{
			Enabled:       true,
			JWTSecret:     "dev-secret-change-me",
			SessionSecret: "dev-session-secret",
			Issuer:        "motormarket",
			Audience:      "motormarket",
			TokenTTLHour:  24,
		},
		Mail: MailConfig{
			Enabled: false,
			Region:  "us-east-1",
			From:    "noreply@motormarket.dev",
		},
		Admin: AdminConfig{
			SessionIdleMinutes: 30,
			MaxSessionIPs:      3,
		},
	}
	applyEnvOverrides(cfg)
	return cfg
}
