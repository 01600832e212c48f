package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears a variable for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	s, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, ":8080", s.Address())
	assert.Equal(t, domain.FilingSingle, s.FilingStatus())
}

func TestLoadSettings_File(t *testing.T) {
	path := writeFile(t, "taxcalc.yaml", `
catalog_path: /data/jurisdictions.yaml
allowed_countries: [us, gb]
default_country: gb
default_region: sct
default_filing_status: married
default_format: json
server:
  port: "9000"
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/jurisdictions.yaml", s.CatalogPath)
	assert.Equal(t, []string{"us", "gb"}, s.AllowedCountries)
	assert.Equal(t, "gb", s.DefaultCountry)
	assert.Equal(t, "sct", s.DefaultRegion)
	assert.Equal(t, domain.FilingMarried, s.FilingStatus())
	assert.Equal(t, "json", s.DefaultFormat)
	assert.Equal(t, ":9000", s.Address())
	assert.Equal(t, "release", s.Server.Mode, "unset keys keep their defaults")

	f := s.Filter()
	assert.True(t, entitlement.Allows(f, "us"))
	assert.False(t, entitlement.Allows(f, "de"))
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad yaml", "server: [unclosed", "failed to parse settings"},
		{"bad status", "default_filing_status: widowed", "default_filing_status"},
		{"bad port", "server: {port: abc}", "server.port"},
		{"port range", "server: {port: \"70000\"}", "server.port"},
		{"bad mode", "server: {mode: production}", "server.mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeFile(t, "s.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv(EnvPort, "9191")
	t.Setenv(EnvCatalog, "/tmp/cat.yaml")
	t.Setenv(EnvAllowedCountries, " us , de ,")

	s := DefaultSettings()
	require.NoError(t, s.ApplyEnv())

	assert.Equal(t, "9191", s.Server.Port)
	assert.Equal(t, "/tmp/cat.yaml", s.CatalogPath)
	assert.Equal(t, []string{"us", "de"}, s.AllowedCountries)
}

func TestApplyEnv_Wildcard(t *testing.T) {
	unsetEnv(t, EnvPort)
	unsetEnv(t, EnvCatalog)
	t.Setenv(EnvAllowedCountries, "*")

	s := DefaultSettings()
	s.AllowedCountries = []string{"us"}
	require.NoError(t, s.ApplyEnv())
	assert.Nil(t, s.AllowedCountries)
	assert.Nil(t, s.Filter().AllowedCountries())
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	unsetEnv(t, EnvPort)
	unsetEnv(t, EnvCatalog)
	unsetEnv(t, EnvAllowedCountries)

	path := writeFile(t, ".env", "TAXCALC_PORT=7070\nTAXCALC_ALLOWED_COUNTRIES=gb\n")
	s := DefaultSettings()
	require.NoError(t, s.ApplyEnv(path))

	assert.Equal(t, "7070", s.Server.Port)
	assert.Equal(t, []string{"gb"}, s.AllowedCountries)
	assert.Empty(t, s.CatalogPath)
}

func TestApplyEnv_MissingExplicitFile(t *testing.T) {
	unsetEnv(t, EnvPort)
	s := DefaultSettings()
	err := s.ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	s := DefaultSettings()
	assert.Error(t, s.ApplyEnv())
}

func TestLoadCatalog(t *testing.T) {
	s := DefaultSettings()
	c, err := s.LoadCatalog()
	require.NoError(t, err)
	assert.Contains(t, c.Codes(), "us")

	s.CatalogPath = writeFile(t, "cat.yaml", `
zz:
  displayName: Testland
  currencyCode: USD
  incomeTax:
    brackets:
      - {min: 0, max: null, rate: 0.1}
`)
	c, err = s.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"zz"}, c.Codes())

	s.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = s.LoadCatalog()
	assert.Error(t, err)
}
