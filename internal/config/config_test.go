package config

import (
	"os"
	"path/filepath"
	"testing"

	"vantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "vantry-test"
database:
  path: "data/inventory.db"
server:
  port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vantry-test", cfg.App.Name)
	assert.Equal(t, "data/inventory.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "inventory.db"
api:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8081, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "Inventory", cfg.Sheets.SheetName)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	t.Setenv("VANTRY_DB_PATH", "from-env.db")
	path := writeConfig(t, `
database:
  path: "${VANTRY_DB_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid minimal",
			cfg:  Config{Database: DatabaseConfig{Path: "x.db"}},
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "telegram enabled without token",
			cfg: Config{
				Database: DatabaseConfig{Path: "x.db"},
				Telegram: TelegramConfig{Enabled: true, ChatIDs: []int64{1}},
			},
			wantErr: true,
		},
		{
			name: "telegram enabled without chats",
			cfg: Config{
				Database: DatabaseConfig{Path: "x.db"},
				Telegram: TelegramConfig{Enabled: true, BotToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "sheets enabled without spreadsheet",
			cfg: Config{
				Database: DatabaseConfig{Path: "x.db"},
				Sheets:   SheetsConfig{Enabled: true, CredentialsFile: "creds.json"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	assert.NoError(t, ValidateCatalog(models.DefaultCatalog()))

	err := ValidateCatalog(models.Catalog{Categories: []models.CatalogCategory{
		{Name: "Drinks"}, {Name: "Drinks"},
	}})
	assert.Error(t, err)

	err = ValidateCatalog(models.Catalog{Categories: []models.CatalogCategory{
		{Name: ""},
	}})
	assert.Error(t, err)
}
