package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	LogLevel        string        `yaml:"logLevel"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type JWTConfig struct {
	// Secret is base64 encoded.
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SlackConfig struct {
	Token          string `yaml:"token"`
	InfoChannelID  string `yaml:"infoChannelId"`
	ErrorChannelID string `yaml:"errorChannelId"`
}

type MailConfig struct {
	From string `yaml:"from"`
}

type ExportConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

type Config struct {
	ServiceName string       `yaml:"serviceName"`
	Env         string       `yaml:"env"`
	Timezone    string       `yaml:"timezone"`
	DB          DBConfig     `yaml:"db"`
	Server      ServerConfig `yaml:"server"`
	JWT         JWTConfig    `yaml:"jwt"`
	Log         LogConfig    `yaml:"log"`
	Slack       SlackConfig  `yaml:"slack"`
	Mail        MailConfig   `yaml:"mail"`
	Export      ExportConfig `yaml:"export"`
}

// ParameterSource fetches a YAML document by name, e.g. from SSM.
type ParameterSource func(ctx context.Context, name string) ([]byte, error)

// development only; production refuses to start with it
const devSecret = "ZGV2ZWxvcG1lbnQtc2VjcmV0LWNoYW5nZS1tZQ=="

// Load reads .env (optional), the environment, then overlays CONFIG_FILE and
// CONFIG_SSM_PARAM when set. Later sources win for the keys they contain.
func Load(ctx context.Context, params ParameterSource) (*Config, error) {
	_ = godotenv.Load()

	cfg := FromEnv()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.Overlay(b); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if name := getEnv("CONFIG_SSM_PARAM", ""); name != "" && params != nil {
		b, err := params(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load parameter %s: %w", name, err)
		}
		if err := cfg.Overlay(b); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func FromEnv() *Config {
	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "timetracker"),
		Env:         getEnv("APP_ENV", "development"),
		Timezone:    getEnv("TZ_NAME", "UTC"),
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DSN", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 30),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8090"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", devSecret),
			TTL:    getEnvAsDuration("JWT_TTL", 12*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Slack: SlackConfig{
			Token:          getEnv("SLACK_TOKEN", ""),
			InfoChannelID:  getEnv("SLACK_INFO_CHANNEL_ID", ""),
			ErrorChannelID: getEnv("SLACK_ERROR_CHANNEL_ID", ""),
		},
		Mail: MailConfig{
			From: getEnv("MAIL_FROM", ""),
		},
		Export: ExportConfig{
			Bucket: getEnv("EXPORT_BUCKET", ""),
			Prefix: getEnv("EXPORT_PREFIX", "exports/"),
		},
	}
}

// Overlay applies the keys present in a YAML document on top of c.
func (c *Config) Overlay(doc []byte) error {
	if len(doc) == 0 {
		return nil
	}
	return yaml.Unmarshal(doc, c)
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if _, err := c.SigningKey(); err != nil {
		return err
	}
	if c.IsProduction() && c.JWT.Secret == devSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SigningKey decodes the base64 JWT secret.
func (c *Config) SigningKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET is not valid base64: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	return key, nil
}

// LogFields describes the configuration without secrets.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("server_addr", c.Server.Addr),
		zap.Bool("slack", c.Slack.Token != ""),
		zap.Bool("mail", c.Mail.From != ""),
		zap.String("export_bucket", c.Export.Bucket),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
