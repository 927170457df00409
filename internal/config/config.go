package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the process configuration loaded from environment variables.
// SMTP settings are parsed separately by the mailer package.
type Config struct {
	Port        string        `env:"PORT"             envDefault:"4000"`
	MongoURI    string        `env:"MONGO_URI"`
	MongoDB     string        `env:"MONGO_DATABASE"   envDefault:"lms"`
	FrontendURL string        `env:"FRONTEND_URL"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER"       envDefault:"lms-api"`
	JWTAudience string        `env:"JWT_AUDIENCE"     envDefault:"lms-client"`
	JWTExpires  time.Duration `env:"JWT_EXPIRES_IN"   envDefault:"360h"`

	Media MediaConfig
	Chat  ChatConfig

	ResetPasswordURL string `env:"APP_PASSWORD_RESET_URL"`
}

// MediaConfig holds credentials for the external media host.
type MediaConfig struct {
	Endpoint  string `env:"MEDIA_ENDPOINT"`
	AccessKey string `env:"MEDIA_ACCESS_KEY"`
	SecretKey string `env:"MEDIA_SECRET_KEY"`
	Bucket    string `env:"MEDIA_BUCKET"    envDefault:"lms-media"`
	UseSSL    bool   `env:"MEDIA_USE_SSL"   envDefault:"true"`
}

// ChatConfig holds credentials for the chat-completion API.
type ChatConfig struct {
	APIURL string `env:"CHAT_API_URL" envDefault:"https://api.mistral.ai/v1/chat/completions"`
	APIKey string `env:"CHAT_API_KEY"`
	Model  string `env:"CHAT_MODEL"   envDefault:"mistral-small"`
}

// New parses the configuration from environment variables. Missing critical
// values are fatal.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks that every critical value is present.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("missing FRONTEND_URL environment variable")
	}
	if c.Media.Endpoint == "" {
		return fmt.Errorf("missing MEDIA_ENDPOINT environment variable")
	}
	if c.Media.AccessKey == "" {
		return fmt.Errorf("missing MEDIA_ACCESS_KEY environment variable")
	}
	if c.Media.SecretKey == "" {
		return fmt.Errorf("missing MEDIA_SECRET_KEY environment variable")
	}
	if c.Chat.APIKey == "" {
		return fmt.Errorf("missing CHAT_API_KEY environment variable")
	}

	return nil
}
