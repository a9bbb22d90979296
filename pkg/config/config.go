package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Coach    CoachConfig    `mapstructure:"coach"`
	App      AppConfig      `mapstructure:"app"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

type ServerConfig struct {
	Port    int           `mapstructure:"port"`
	Mode    string        `mapstructure:"mode"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
	// AllowClientPrincipal accepts the x-ms-client-principal header injected
	// by the static web app front door.
	AllowClientPrincipal bool `mapstructure:"allow_client_principal"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CoachConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LimitsConfig bounds how often a user may request coaching.
type LimitsConfig struct {
	CoachRequests int           `mapstructure:"coach_requests"`
	CoachWindow   time.Duration `mapstructure:"coach_window"`
}

type AppConfig struct {
	Timezone         string        `mapstructure:"timezone"`
	ReminderInterval time.Duration `mapstructure:"reminder_interval"`
	StatsCacheTTL    time.Duration `mapstructure:"stats_cache_ttl"`
	MilestoneStore   string        `mapstructure:"milestone_store"` // "postgres" or "redis"
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.timeout", 5*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("auth.jwt_issuer", "betterday")
	v.SetDefault("auth.allow_client_principal", true)
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("coach.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("coach.model", "llama-3.1-8b-instant")
	v.SetDefault("coach.max_tokens", 150)
	v.SetDefault("coach.temperature", 0.8)
	v.SetDefault("coach.timeout", 15*time.Second)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.reminder_interval", 30*time.Second)
	v.SetDefault("app.stats_cache_ttl", 10*time.Minute)
	v.SetDefault("app.milestone_store", "postgres")
	v.SetDefault("limits.coach_requests", 30)
	v.SetDefault("limits.coach_window", time.Hour)
}

func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// If CONFIG_FILE environment variable is set, use it
	if envConfigFile := os.Getenv("CONFIG_FILE"); envConfigFile != "" {
		configPath = envConfigFile
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configPath != "" {
		dir := filepath.Dir(configPath)
		file := filepath.Base(configPath)
		ext := filepath.Ext(file)
		name := strings.TrimSuffix(file, ext)

		v.AddConfigPath(dir)
		v.SetConfigName(name)
	} else {
		_, filename, _, _ := runtime.Caller(0)
		pkgConfigDir := filepath.Dir(filename)
		projectRoot := filepath.Join(pkgConfigDir, "..", "..")

		v.AddConfigPath(".")
		v.AddConfigPath(pkgConfigDir)
		v.AddConfigPath(projectRoot)
		v.SetConfigName("config")
	}

	// A missing file is fine: defaults and environment cover a full setup.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyEnvOverrides(v)

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

var envVars = map[string]string{
	"server.port":                 "SERVER_PORT",
	"server.mode":                 "SERVER_MODE",
	"server.timeout":              "SERVER_TIMEOUT",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.name":               "DB_NAME",
	"database.sslmode":            "DB_SSLMODE",
	"redis.host":                  "REDIS_HOST",
	"redis.port":                  "REDIS_PORT",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"auth.jwt_secret":             "JWT_SECRET",
	"auth.jwt_issuer":             "JWT_ISSUER",
	"auth.allow_client_principal": "AUTH_ALLOW_CLIENT_PRINCIPAL",
	"logging.level":               "LOG_LEVEL",
	"logging.format":              "LOG_FORMAT",
	"coach.api_key":               "GROQ_API_KEY",
	"coach.base_url":              "COACH_BASE_URL",
	"coach.model":                 "COACH_MODEL",
	"coach.timeout":               "COACH_TIMEOUT",
	"app.timezone":                "APP_TIMEZONE",
	"app.reminder_interval":       "REMINDER_INTERVAL",
	"app.milestone_store":         "MILESTONE_STORE",
	"limits.coach_requests":       "COACH_RATE_LIMIT",
}

func applyEnvOverrides(v *viper.Viper) {
	for configKey, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		switch envVar {
		case "SERVER_PORT", "DB_PORT", "REDIS_PORT", "REDIS_DB", "COACH_RATE_LIMIT":
			if intVal, err := strconv.Atoi(value); err == nil {
				v.Set(configKey, intVal)
			}
		case "SERVER_TIMEOUT", "COACH_TIMEOUT", "REMINDER_INTERVAL":
			if d, err := time.ParseDuration(value); err == nil {
				v.Set(configKey, d)
			}
		case "AUTH_ALLOW_CLIENT_PRINCIPAL":
			if b, err := strconv.ParseBool(value); err == nil {
				v.Set(configKey, b)
			}
		default:
			v.Set(configKey, value)
		}
	}
}
