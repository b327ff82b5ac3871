package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/portal"
)

// LoadPortalConfig loads Portal da Transparência client configuration.
// It follows this precedence:
// 1. Viper configuration (from config file or SALDO_ env vars)
// 2. The PORTAL_TRANSPARENCIA_API_KEY environment variable
// 3. Default values
func LoadPortalConfig() (*portal.Config, error) {
	cfg := portal.DefaultConfig()

	// Load from Viper first
	if v := viper.GetString("portal.api_key"); v != "" {
		cfg.APIKey = v
	}
	if v := viper.GetString("portal.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetString("portal.recipient"); v != "" {
		cfg.Recipient = v
	}
	if v := viper.GetInt("portal.page_size"); v != 0 {
		cfg.PageSize = v
	}
	if v := viper.GetInt("portal.sort_order"); v != 0 {
		cfg.SortOrder = v
	}
	if v := viper.GetDuration("portal.page_delay"); v != 0 {
		cfg.PageDelay = v
	}
	if v := viper.GetDuration("portal.sequence_delay"); v != 0 {
		cfg.SequenceDelay = v
	}
	if v := viper.GetDuration("portal.timeout"); v != 0 {
		cfg.Timeout = v
	}

	// The extraction scripts have always read the key from this variable,
	// so honor it as a fallback.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("PORTAL_TRANSPARENCIA_API_KEY")
	}

	if cfg.APIKey == "" {
		return nil, common.NewUserError(
			"Portal da Transparência API key not configured. Set portal.api_key in the config file or export PORTAL_TRANSPARENCIA_API_KEY (keys are issued at https://api.portaldatransparencia.gov.br)",
			common.ErrMissingConfig,
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
