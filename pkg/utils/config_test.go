package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oyvindfi/bjorkvang/internal/domain"
)

func completeConfig() *Config {
	return &Config{
		App: AppConfig{Environment: "production"},
		Database: DatabaseConfig{
			Host: "localhost",
			Name: "bjorkvang",
		},
		Email: EmailConfig{
			APIToken:    "token",
			FromAddress: "post@bjorkvang.no",
			BoardTo:     "styret@bjorkvang.no",
		},
		Admin: AdminConfig{Password: "secret"},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("complete production config passes", func(t *testing.T) {
		require.NoError(t, completeConfig().validate())
	})

	t.Run("production fails fast on each missing secret", func(t *testing.T) {
		for name, strip := range map[string]func(*Config){
			"plunk token":    func(c *Config) { c.Email.APIToken = "" },
			"from address":   func(c *Config) { c.Email.FromAddress = "" },
			"board address":  func(c *Config) { c.Email.BoardTo = "" },
			"admin password": func(c *Config) { c.Admin.Password = "" },
			"db host":        func(c *Config) { c.Database.Host = "" },
			"db name":        func(c *Config) { c.Database.Name = "" },
		} {
			t.Run(name, func(t *testing.T) {
				cfg := completeConfig()
				strip(cfg)
				err := cfg.validate()
				require.True(t, domain.IsConfiguration(err), "want configuration error, got %v", err)
			})
		}
	})

	t.Run("development degrades instead of failing", func(t *testing.T) {
		cfg := &Config{App: AppConfig{Environment: "development"}}
		require.NoError(t, cfg.validate())
		require.False(t, cfg.UseDatabase())
		require.False(t, cfg.Production())
	})
}
