// Package config holds the explicit configuration object threaded into the
// storage, client and export components.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSettingsDir    = ".local/go-viaplay-cli"
	ConfigFileName        = "config.yaml"
	DefaultCountry        = "se"
	DefaultExportPort     = 0
	DefaultStreamTemplate = "plugin://plugin.video.viaplay/play?guid={guid}&url=None&tve=true"
)

// SupportedCountries lists the country sites the service operates.
var SupportedCountries = []string{"se", "dk", "no", "fi", "pl", "lt", "nl", "ee", "gb"}

var ErrUnsupportedCountry = errors.New("unsupported country")

type Config struct {
	SettingsDir string       `yaml:"-"`
	Country     string       `yaml:"country"`
	ProfileID   string       `yaml:"profile_id"`
	Debug       bool         `yaml:"debug"`
	LogLevel    string       `yaml:"log_level"`
	Export      ExportConfig `yaml:"export"`
}

type ExportConfig struct {
	Port int `yaml:"port"`
	// StreamTemplate is the playback URL handed to the IPTV consumer;
	// "{guid}" is replaced by the channel guid.
	StreamTemplate string `yaml:"stream_template"`
}

// Overrides are values supplied on the command line. Empty fields are ignored.
type Overrides struct {
	SettingsDir string
	Country     string
	ProfileID   string
	Debug       bool
	ExportPort  int
}

func Default() *Config {
	return &Config{
		Country:  DefaultCountry,
		LogLevel: "info",
		Export: ExportConfig{
			Port:           DefaultExportPort,
			StreamTemplate: DefaultStreamTemplate,
		},
	}
}

// Load resolves the settings folder, then layers config.yaml, environment
// and command-line overrides over the defaults.
func Load(o Overrides) (*Config, error) {
	dir := o.SettingsDir
	if dir == "" {
		dir = os.Getenv("VIAPLAY_SETTINGS_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultSettingsDir)
	}

	cfg := Default()
	cfg.SettingsDir = dir

	if err := cfg.loadFile(filepath.Join(dir, ConfigFileName)); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyOverrides(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VIAPLAY_COUNTRY"); v != "" {
		c.Country = v
	}
	if v := os.Getenv("VIAPLAY_PROFILE_ID"); v != "" {
		c.ProfileID = v
	}
	if v := os.Getenv("VIAPLAY_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid VIAPLAY_DEBUG %q: %w", v, err)
		}
		c.Debug = b
	}
	if v := os.Getenv("VIAPLAY_EXPORT_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid VIAPLAY_EXPORT_PORT %q: %w", v, err)
		}
		c.Export.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) {
	if o.Country != "" {
		c.Country = o.Country
	}
	if o.ProfileID != "" {
		c.ProfileID = o.ProfileID
	}
	if o.Debug {
		c.Debug = true
	}
	if o.ExportPort != 0 {
		c.Export.Port = o.ExportPort
	}
}

func (c *Config) Validate() error {
	c.Country = strings.ToLower(strings.TrimSpace(c.Country))
	if !slices.Contains(SupportedCountries, c.Country) {
		return fmt.Errorf("%w: %q", ErrUnsupportedCountry, c.Country)
	}
	if _, err := language.ParseRegion(c.Country); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedCountry, c.Country, err)
	}
	if c.Export.Port < 0 || c.Export.Port > 65535 {
		return fmt.Errorf("invalid export port %d", c.Export.Port)
	}
	if c.Export.StreamTemplate == "" {
		c.Export.StreamTemplate = DefaultStreamTemplate
	}
	return nil
}

// TLD returns the top level domain of the country site.
func (c *Config) TLD() string {
	return TLDFor(c.Country)
}

// CountryUpper returns the ISO 3166 region code, e.g. "SE".
func (c *Config) CountryUpper() string {
	if r, err := language.ParseRegion(c.Country); err == nil {
		return r.String()
	}
	return strings.ToUpper(c.Country)
}

func TLDFor(country string) string {
	if country == "nl" || country == "gb" {
		return "com"
	}
	return country
}
