package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvPort             = "TAXCALC_PORT"
	EnvCatalog          = "TAXCALC_CATALOG"
	EnvAllowedCountries = "TAXCALC_ALLOWED_COUNTRIES"
)

// Settings is the application configuration file
type Settings struct {
	CatalogPath         string         `yaml:"catalog_path" json:"catalog_path"`
	AllowedCountries    []string       `yaml:"allowed_countries" json:"allowed_countries"`
	DefaultCountry      string         `yaml:"default_country" json:"default_country"`
	DefaultRegion       string         `yaml:"default_region" json:"default_region"`
	DefaultFilingStatus string         `yaml:"default_filing_status" json:"default_filing_status"`
	DefaultFormat       string         `yaml:"default_format" json:"default_format"`
	Server              ServerSettings `yaml:"server" json:"server"`
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Port string `yaml:"port" json:"port"`
	Mode string `yaml:"mode" json:"mode"` // gin mode: debug, release or test
}

// DefaultSettings returns the settings used when no file is present
func DefaultSettings() Settings {
	return Settings{
		DefaultCountry:      "us",
		DefaultFilingStatus: string(domain.FilingSingle),
		DefaultFormat:       "console",
		Server: ServerSettings{
			Port: "8080",
			Mode: "release",
		},
	}
}

// LoadSettings reads a settings file over the defaults. An empty path or a
// missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("settings validation failed: %w", err)
	}
	return settings, nil
}

// ApplyEnv loads env files, then lets environment variables override the server
// port, catalog path and allow-list. With no files it reads ./.env when present;
// files named explicitly must exist. A comma-separated allow-list of "*" clears
// the restriction.
func (s *Settings) ApplyEnv(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if port := os.Getenv(EnvPort); port != "" {
		s.Server.Port = port
	}
	if path := os.Getenv(EnvCatalog); path != "" {
		s.CatalogPath = path
	}
	if allowed, ok := os.LookupEnv(EnvAllowedCountries); ok {
		s.AllowedCountries = nil
		if strings.TrimSpace(allowed) != "*" {
			for _, c := range strings.Split(allowed, ",") {
				if c = strings.TrimSpace(c); c != "" {
					s.AllowedCountries = append(s.AllowedCountries, c)
				}
			}
		}
	}
	return s.Validate()
}

// Validate checks field formats; it does not touch the catalog
func (s Settings) Validate() error {
	if _, err := domain.ParseFilingStatus(s.DefaultFilingStatus); err != nil {
		return fmt.Errorf("default_filing_status: %w", err)
	}
	if s.Server.Port != "" {
		port, err := strconv.Atoi(s.Server.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("server.port must be a number between 1 and 65535, got %q", s.Server.Port)
		}
	}
	switch s.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", s.Server.Mode)
	}
	return nil
}

// Address is the listen address for the HTTP server
func (s Settings) Address() string {
	if s.Server.Port == "" {
		return ":8080"
	}
	return ":" + s.Server.Port
}

// Filter builds the entitlement filter from the allow-list
func (s Settings) Filter() entitlement.StaticFilter {
	return entitlement.NewStaticFilter(s.AllowedCountries)
}

// FilingStatus returns the parsed default filing status
func (s Settings) FilingStatus() domain.FilingStatus {
	status, err := domain.ParseFilingStatus(s.DefaultFilingStatus)
	if err != nil {
		return domain.FilingSingle
	}
	return status
}

// LoadCatalog opens the configured catalog file, or the embedded catalog when no
// path is set
func (s Settings) LoadCatalog() (*catalog.Catalog, error) {
	if s.CatalogPath == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(s.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}
