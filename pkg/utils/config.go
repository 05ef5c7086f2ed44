package utils

import (
	"errors"
	"os"

	"github.com/spf13/viper"

	"github.com/oyvindfi/bjorkvang/internal/domain"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Email    EmailConfig
	Vipps    VippsConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	Environment string // "development" or "production"
	// PublicBaseURL is the externally reachable base used in email links
	// and payment return URLs.
	PublicBaseURL string
	// AllowedOrigins is the CORS allow-list.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type EmailConfig struct {
	APIURL      string
	APIToken    string
	FromAddress string
	BoardTo     string
}

type VippsConfig struct {
	BaseURL              string
	ClientID             string
	ClientSecret         string
	SubscriptionKey      string
	MerchantSerialNumber string
}

type AdminConfig struct {
	// Password is either a bcrypt hash ($2...) or a plain shared secret.
	Password string
}

func (c *Config) Production() bool {
	return c.App.Environment == "production"
}

// UseDatabase reports whether an external document store is configured.
// When false the in-memory store is used instead.
func (c *Config) UseDatabase() bool {
	return c.Database.Host != "" && c.Database.Name != ""
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "bjorkvang-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PLUNK_API_URL", "https://api.useplunk.com/v1/send")
	viper.SetDefault("VIPPS_BASE_URL", "https://apitest.vipps.no")
	viper.SetDefault("ALLOWED_ORIGINS", []string{
		"https://xn--bjrkvang-64a.no",
		"https://bjorkvang.no",
		"http://localhost:5500",
		"http://127.0.0.1:5500",
	})

	// A missing .env file is fine; the environment can carry everything.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			Environment:    viper.GetString("ENVIRONMENT"),
			PublicBaseURL:  viper.GetString("PUBLIC_BASE_URL"),
			AllowedOrigins: viper.GetStringSlice("ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Email: EmailConfig{
			APIURL:      viper.GetString("PLUNK_API_URL"),
			APIToken:    viper.GetString("PLUNK_API_TOKEN"),
			FromAddress: viper.GetString("DEFAULT_FROM_ADDRESS"),
			BoardTo:     viper.GetString("BOARD_TO_ADDRESS"),
		},
		Vipps: VippsConfig{
			BaseURL:              viper.GetString("VIPPS_BASE_URL"),
			ClientID:             viper.GetString("VIPPS_CLIENT_ID"),
			ClientSecret:         viper.GetString("VIPPS_CLIENT_SECRET"),
			SubscriptionKey:      viper.GetString("VIPPS_SUBSCRIPTION_KEY"),
			MerchantSerialNumber: viper.GetString("VIPPS_MERCHANT_SERIAL_NUMBER"),
		},
		Admin: AdminConfig{
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate fails construction when a production flag is set and secrets are
// absent. Development degrades: memory store and log-only mailer take over.
func (c *Config) validate() error {
	if !c.Production() {
		return nil
	}

	required := map[string]string{
		"PLUNK_API_TOKEN":      c.Email.APIToken,
		"DEFAULT_FROM_ADDRESS": c.Email.FromAddress,
		"BOARD_TO_ADDRESS":     c.Email.BoardTo,
		"ADMIN_PASSWORD":       c.Admin.Password,
		"DB_HOST":              c.Database.Host,
		"DB_NAME":              c.Database.Name,
	}
	for setting, value := range required {
		if value == "" {
			return domain.ConfigurationError{Setting: setting}
		}
	}
	return nil
}
