// Package config reads and writes <home>/.katabasis/config.yaml.
//
// The file holds named profiles, one of which is active. Environment
// variables override the active profile for the current process only; they
// are never written back.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProfileName    = "default"
	DefaultBaseURL        = "http://localhost:8000"
	DefaultPersona        = "guide"
	DefaultRequestTimeout = 30 * time.Second
	DefaultCredentialKind = "file"

	configDir  = ".katabasis"
	configFile = "config.yaml"
)

var (
	ErrProfileNotFound = errors.New("profile does not exist")
	ErrProfileExists   = errors.New("profile already exists")
)

type Profile struct {
	BaseURL         string        `yaml:"base_url"`
	Persona         string        `yaml:"persona,omitempty"`
	RequestTimeout  time.Duration `yaml:"request_timeout,omitempty"`
	CredentialStore string        `yaml:"credential_store,omitempty"`
}

// DefaultProfile is written when no config file exists yet.
func DefaultProfile() Profile {
	return Profile{
		BaseURL:         DefaultBaseURL,
		Persona:         DefaultPersona,
		RequestTimeout:  DefaultRequestTimeout,
		CredentialStore: DefaultCredentialKind,
	}
}

// withDefaults fills every empty field.
func (p Profile) withDefaults() Profile {
	d := DefaultProfile()
	if p.BaseURL == "" {
		p.BaseURL = d.BaseURL
	}
	if p.Persona == "" {
		p.Persona = d.Persona
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = d.RequestTimeout
	}
	if p.CredentialStore == "" {
		p.CredentialStore = d.CredentialStore
	}
	return p
}

func (p Profile) Validate() error {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", p.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url: missing host in %q", p.BaseURL)
	}
	switch p.CredentialStore {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("credential_store: unknown backend %q", p.CredentialStore)
	}
	if p.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout: must not be negative")
	}
	return nil
}

// Overrides are the environment variables that take precedence over the
// active profile.
type Overrides struct {
	Home            string        `env:"KATABASIS_HOME"`
	Profile         string        `env:"KATABASIS_PROFILE"`
	BaseURL         string        `env:"KATABASIS_BASE_URL"`
	Persona         string        `env:"KATABASIS_PERSONA"`
	RequestTimeout  time.Duration `env:"KATABASIS_REQUEST_TIMEOUT"`
	CredentialStore string        `env:"KATABASIS_CREDENTIAL_STORE"`
}

func ParseOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

type Config struct {
	Profiles      map[string]Profile `yaml:"profiles"`
	ActiveProfile string             `yaml:"active_profile"`

	dir       string
	overrides Overrides
	selected  string
}

// LoadConfig reads the config file, creating it with a default profile when
// it does not exist yet.
func LoadConfig() (*Config, error) {
	o, err := ParseOverrides()
	if err != nil {
		return nil, err
	}
	dir, err := configPath(o.Home)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg, err := loadConfigFile(filepath.Join(dir, configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.dir = dir
	cfg.overrides = o
	cfg.normalize()

	if o.Profile != "" {
		if err := cfg.Use(o.Profile); err != nil {
			return nil, fmt.Errorf("KATABASIS_PROFILE: %w", err)
		}
	}
	return cfg, nil
}

func configPath(home string) (string, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		home = h
	}
	return filepath.Join(home, configDir), nil
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := &Config{
			Profiles:      map[string]Profile{DefaultProfileName: DefaultProfile()},
			ActiveProfile: DefaultProfileName,
		}
		if err := writeConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func writeConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// normalize repairs a file without profiles or with a dangling active profile.
func (c *Config) normalize() {
	if len(c.Profiles) == 0 {
		c.Profiles = map[string]Profile{DefaultProfileName: DefaultProfile()}
	}
	if _, ok := c.Profiles[c.ActiveProfile]; !ok {
		c.ActiveProfile = c.ProfileNames()[0]
	}
}

func (c *Config) Save() error {
	return writeConfig(filepath.Join(c.dir, configFile), c)
}

// Dir is <home>/.katabasis. Credentials and the log file live next to the
// config file.
func (c *Config) Dir() string { return c.dir }

func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Use selects a profile for this process without changing the active one.
func (c *Config) Use(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	c.selected = name
	return nil
}

// CurrentName is the profile in effect: the one selected with Use, or the
// active one.
func (c *Config) CurrentName() string {
	if c.selected != "" {
		return c.selected
	}
	return c.ActiveProfile
}

// Current is the profile in effect with environment overrides and defaults
// applied.
func (c *Config) Current() Profile {
	p := c.Profiles[c.CurrentName()]
	o := c.overrides
	if o.BaseURL != "" {
		p.BaseURL = o.BaseURL
	}
	if o.Persona != "" {
		p.Persona = o.Persona
	}
	if o.RequestTimeout > 0 {
		p.RequestTimeout = o.RequestTimeout
	}
	if o.CredentialStore != "" {
		p.CredentialStore = o.CredentialStore
	}
	return p.withDefaults()
}

// CredentialDir is where the current profile's credentials are kept. Each
// profile gets its own so switching profiles never reuses another backend's
// token.
func (c *Config) CredentialDir() string {
	return filepath.Join(c.dir, "profiles", c.CurrentName())
}

func (c *Config) AddProfile(name string, p Profile) error {
	if _, ok := c.Profiles[name]; ok {
		return fmt.Errorf("%w: %q", ErrProfileExists, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	c.Profiles[name] = p
	return nil
}

func (c *Config) UpdateProfile(name string, p Profile) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	c.Profiles[name] = p
	return nil
}

func (c *Config) SetActive(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	c.ActiveProfile = name
	return nil
}

// DeleteProfile removes a profile. Deleting the active profile activates
// another one; deleting the last one recreates the default profile.
func (c *Config) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	delete(c.Profiles, name)
	if c.selected == name {
		c.selected = ""
	}
	if c.ActiveProfile == name {
		if len(c.Profiles) == 0 {
			c.Profiles[DefaultProfileName] = DefaultProfile()
		}
		c.ActiveProfile = c.ProfileNames()[0]
	}
	return nil
}
