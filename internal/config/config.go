package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName        string        `mapstructure:"SERVICE_NAME" validate:"required"`
	HTTPPort           string        `mapstructure:"HTTP_PORT" validate:"required,numeric"`
	HTTPRequestTimeout time.Duration `mapstructure:"HTTP_REQUEST_TIMEOUT" validate:"gt=0"`

	MongoURI            string        `mapstructure:"MONGODB_URI" validate:"required"`
	MongoDatabase       string        `mapstructure:"DATABASE_NAME" validate:"required"`
	MongoConnectTimeout time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT" validate:"gt=0"`

	MarketplaceAPIKey string `mapstructure:"MARKETPLACE_API_KEY"`
	MarketplaceAPIURL string `mapstructure:"MARKETPLACE_API_URL" validate:"omitempty,url"`

	NATSURL string `mapstructure:"NATS_URL" validate:"omitempty,url"`

	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT" validate:"omitempty,min=1,max=65535"`
	SMTPUsername    string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword    string `mapstructure:"SMTP_PASSWORD"`
	SMTPSenderEmail string `mapstructure:"SMTP_SENDER_EMAIL" validate:"omitempty,email"`

	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogLevel      string `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error fatal panic"`
	LogFormat     string `mapstructure:"LOG_FORMAT" validate:"omitempty,oneof=json console text"`
	LogOutputFile string `mapstructure:"LOG_OUTPUT_FILE"`
}

var keys = []string{
	"SERVICE_NAME", "HTTP_PORT", "HTTP_REQUEST_TIMEOUT",
	"MONGODB_URI", "DATABASE_NAME", "MONGO_CONNECT_TIMEOUT",
	"MARKETPLACE_API_KEY", "MARKETPLACE_API_URL",
	"NATS_URL",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_SENDER_EMAIL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT_FILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "car-listing-service")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("HTTP_REQUEST_TIMEOUT", "15s")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/")
	v.SetDefault("DATABASE_NAME", "vm_auto_db")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("MARKETPLACE_API_KEY", "")
	v.SetDefault("MARKETPLACE_API_URL", "https://api.autoplac.pl")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER_EMAIL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stdout")
}

// LoadConfig reads configuration from the environment. A .env file, if any, is expected
// to have been loaded into the environment by the caller.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.SMTPHost != "" && c.SMTPSenderEmail == "" {
		return fmt.Errorf("invalid configuration: SMTP_SENDER_EMAIL is required when SMTP_HOST is set")
	}
	return nil
}

// Logger returns the settings for the service logger.
func (c *Config) Logger() *logger.LoggerConfig {
	return &logger.LoggerConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		OutputFile: c.LogOutputFile,
	}
}

// MarketplaceEnabled reports whether a marketplace API key is configured.
func (c *Config) MarketplaceEnabled() bool { return c.MarketplaceAPIKey != "" }

// SMTPEnabled reports whether outgoing mail is configured.
func (c *Config) SMTPEnabled() bool { return c.SMTPHost != "" }
