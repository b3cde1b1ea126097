package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string  `mapstructure:"PORT"`
	DatabaseType                  string  `mapstructure:"DATABASE_TYPE"`
	DatabasePath                  string  `mapstructure:"DATABASE_PATH"`
	DatabaseURL                   string  `mapstructure:"DATABASE_URL"`
	JWTSecret                     string  `mapstructure:"JWT_SECRET"`
	AuthClientID                  string  `mapstructure:"AUTH_CLIENT_ID"`
	AuthClientSecret              string  `mapstructure:"AUTH_CLIENT_SECRET"`
	AuthAuthorizeURL              string  `mapstructure:"AUTH_AUTHORIZE_URL"`
	AuthTokenURL                  string  `mapstructure:"AUTH_TOKEN_URL"`
	AuthUserInfoURL               string  `mapstructure:"AUTH_USERINFO_URL"`
	AuthRedirectURL               string  `mapstructure:"AUTH_REDIRECT_URL"`
	FrontendURL                   string  `mapstructure:"FRONTEND_URL"`
	Timezone                      string  `mapstructure:"TIMEZONE"`
	NearbyRadiusKm                float64 `mapstructure:"NEARBY_RADIUS_KM"`
	DiscordBotToken               string  `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string  `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	SESRegion                     string  `mapstructure:"SES_REGION"`
	SESFromEmail                  string  `mapstructure:"SES_FROM_EMAIL"`
	SESFromName                   string  `mapstructure:"SES_FROM_NAME"`
	LogLevel                      string  `mapstructure:"LOG_LEVEL"`
	LogFormat                     string  `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"PORT", "DATABASE_TYPE", "DATABASE_PATH", "DATABASE_URL", "JWT_SECRET",
	"AUTH_CLIENT_ID", "AUTH_CLIENT_SECRET", "AUTH_AUTHORIZE_URL", "AUTH_TOKEN_URL",
	"AUTH_USERINFO_URL", "AUTH_REDIRECT_URL", "FRONTEND_URL", "TIMEZONE", "NEARBY_RADIUS_KM",
	"DISCORD_BOT_TOKEN", "DISCORD_NOTIFICATIONS_CHANNEL_ID",
	"SES_REGION", "SES_FROM_EMAIL", "SES_FROM_NAME", "LOG_LEVEL", "LOG_FORMAT",
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DATABASE_PATH", "goplaynow.db")
	v.SetDefault("AUTH_REDIRECT_URL", "http://127.0.0.1:8080/auth/callback")
	v.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000/")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("NEARBY_RADIUS_KM", 25.0)
	v.SetDefault("SES_REGION", "us-east-1")
	v.SetDefault("SES_FROM_NAME", "GoPlayNow")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for sqlite")
		}
	case "postgres", "postgresql":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE: %s", c.DatabaseType)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.NearbyRadiusKm <= 0 {
		return errors.New("NEARBY_RADIUS_KM must be > 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}
	return nil
}

// Location is the zone playdate dates and clock times are entered in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) OAuthEnabled() bool {
	return c.AuthClientID != "" && c.AuthAuthorizeURL != "" && c.AuthTokenURL != ""
}
