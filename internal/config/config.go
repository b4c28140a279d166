package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "MEMORIAL"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultDatabasePath   = "memorial.db"
	defaultLogLevel       = "info"
	defaultTokenTTL       = 60
	defaultMediaBucket    = "gallery-media"
	defaultMediaRegion    = "eu-west-1"
	defaultPaystackAPIURL = "https://api.paystack.co"
	defaultCurrency       = "GHS"
	defaultDonationGoal   = 20000
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress       string
	DatabasePath      string
	LogLevel          string
	SigningSecret     string
	TokenTTLMinutes   int
	AdminEmail        string
	AdminPasswordHash string
	MediaBucket       string
	MediaRegion       string
	MediaBaseURL      string
	PaystackSecretKey string
	PaystackAPIURL    string
	DonationCurrency  string
	DonationGoal      float64
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTL)
	configViper.SetDefault("media.bucket", defaultMediaBucket)
	configViper.SetDefault("media.region", defaultMediaRegion)
	configViper.SetDefault("paystack.api_url", defaultPaystackAPIURL)
	configViper.SetDefault("donations.currency", defaultCurrency)
	configViper.SetDefault("donations.goal", defaultDonationGoal)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		DatabasePath:      configViper.GetString("database.path"),
		LogLevel:          configViper.GetString("log.level"),
		SigningSecret:     configViper.GetString("auth.signing_secret"),
		TokenTTLMinutes:   configViper.GetInt("auth.token_ttl_minutes"),
		AdminEmail:        configViper.GetString("auth.admin_email"),
		AdminPasswordHash: configViper.GetString("auth.admin_password_hash"),
		MediaBucket:       configViper.GetString("media.bucket"),
		MediaRegion:       configViper.GetString("media.region"),
		MediaBaseURL:      configViper.GetString("media.base_url"),
		PaystackSecretKey: configViper.GetString("paystack.secret_key"),
		PaystackAPIURL:    configViper.GetString("paystack.api_url"),
		DonationCurrency:  configViper.GetString("donations.currency"),
		DonationGoal:      configViper.GetFloat64("donations.goal"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.AdminEmail) == "" {
		return fmt.Errorf("auth.admin_email is required")
	}
	if strings.TrimSpace(c.AdminPasswordHash) == "" {
		return fmt.Errorf("auth.admin_password_hash is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if c.DonationGoal < 0 {
		return fmt.Errorf("donations.goal must not be negative")
	}
	return nil
}
