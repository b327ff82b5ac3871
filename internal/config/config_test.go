package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/portal"
)

// resetConfig clears Viper's global state and the environment variables
// the loaders consult. Tests here cannot run in parallel.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for _, key := range []string{
		"PORTAL_TRANSPARENCIA_API_KEY",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SALDO_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty path", path: "", want: ""},
		{name: "plain path untouched", path: "/tmp/saldos.csv", want: "/tmp/saldos.csv"},
		{name: "tilde prefix", path: "~/saldos", want: filepath.Join(home, "saldos")},
		{name: "bare tilde", path: "~", want: home},
		{name: "environment variable", path: "$SALDO_TEST_DIR/out", want: "/var/data/out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestLoadPortalConfig_EnvFallback(t *testing.T) {
	resetConfig(t)
	t.Setenv("PORTAL_TRANSPARENCIA_API_KEY", "env-key")

	cfg, err := LoadPortalConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, portal.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, portal.DefaultRecipient, cfg.Recipient)
	assert.Equal(t, portal.DefaultPageSize, cfg.PageSize)
}

func TestLoadPortalConfig_ViperOverrides(t *testing.T) {
	resetConfig(t)
	t.Setenv("PORTAL_TRANSPARENCIA_API_KEY", "env-key")

	viper.Set("portal.api_key", "viper-key")
	viper.Set("portal.recipient", "00394460005887")
	viper.Set("portal.page_delay", "250ms")
	viper.Set("portal.timeout", "30s")

	cfg, err := LoadPortalConfig()
	require.NoError(t, err)

	assert.Equal(t, "viper-key", cfg.APIKey, "config file key takes precedence over the environment")
	assert.Equal(t, "00394460005887", cfg.Recipient)
	assert.Equal(t, 250*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.SequenceDelay, "unset keys keep their defaults")
}

func TestLoadPortalConfig_MissingKey(t *testing.T) {
	resetConfig(t)

	_, err := LoadPortalConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "PORTAL_TRANSPARENCIA_API_KEY")
}

func TestLoadSheetsConfig_ServiceAccount(t *testing.T) {
	resetConfig(t)
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/etc/saldo/service-account.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-123")

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)

	assert.Equal(t, "/etc/saldo/service-account.json", cfg.ServiceAccountPath)
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, "Saldos de Empenhos", cfg.SpreadsheetName)
}

func TestLoadSheetsConfig_ViperOAuth(t *testing.T) {
	resetConfig(t)

	viper.Set("sheets.client_id", "client")
	viper.Set("sheets.client_secret", "secret")
	viper.Set("sheets.refresh_token", "refresh")
	viper.Set("sheets.spreadsheet_name", "Saldos 2023")

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)

	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "Saldos 2023", cfg.SpreadsheetName)
	assert.Empty(t, cfg.ServiceAccountPath)
}

func TestLoadSheetsConfig_NoAuth(t *testing.T) {
	resetConfig(t)

	_, err := LoadSheetsConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authentication method")
	assert.False(t, errors.Is(err, common.ErrMissingConfig), "sheets validation reports its own error")
}
