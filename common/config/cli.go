package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultProfile = "default"

var ErrProfileNotFound = errors.New("profile not found")

// CLIConfig holds the hline profiles.
type CLIConfig struct {
	CurrentProfile string                 `yaml:"current_profile" mapstructure:"current_profile"`
	Profiles       map[string]*CLIProfile `yaml:"profiles" mapstructure:"profiles"`
	Defaults       *CLIDefaults           `yaml:"defaults" mapstructure:"defaults"`
	path           string
}

// CLIProfile is one backend login: where to send requests, with which key,
// and which project is active.
type CLIProfile struct {
	APIURL  string `yaml:"api_url" mapstructure:"api_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	GroupID string `yaml:"group_id" mapstructure:"group_id"`
}

type CLIDefaults struct {
	APIURL string `yaml:"api_url" mapstructure:"api_url"`
}

// DefaultCLI returns a CLIConfig with default values
func DefaultCLI() *CLIConfig {
	return &CLIConfig{
		CurrentProfile: defaultProfile,
		Profiles:       make(map[string]*CLIProfile),
		Defaults: &CLIDefaults{
			APIURL: "http://localhost:5005/api/v1",
		},
	}
}

// LoadCLI reads the CLI config from path, or $HOME/.hookline/config.yaml when
// path is empty. HOOKLINE_API_URL overrides the default API URL.
func LoadCLI(path string) (*CLIConfig, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	defaults := DefaultCLI()

	v := viper.New()
	v.SetDefault("current_profile", defaults.CurrentProfile)
	v.SetDefault("defaults.api_url", defaults.Defaults.APIURL)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("defaults.api_url", EnvPrefix+"_API_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := defaults
	cfg.path = path
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*CLIProfile)
	}
	if cfg.Defaults == nil {
		cfg.Defaults = DefaultCLI().Defaults
	}
	return cfg, nil
}

// Path is where Save writes.
func (c *CLIConfig) Path() string {
	return c.path
}

// Save writes the CLI config to disk
func (c *CLIConfig) Save() error {
	if c.path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// SaveProfile stores credentials under name and makes it current.
func (c *CLIConfig) SaveProfile(name, apiURL, apiKey, groupID string) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*CLIProfile)
	}

	c.Profiles[name] = &CLIProfile{
		APIURL:  apiURL,
		APIKey:  apiKey,
		GroupID: groupID,
	}

	c.CurrentProfile = name
	return c.Save()
}

// UseGroup switches the active project of an existing profile.
func (c *CLIConfig) UseGroup(name, groupID string) error {
	if groupID == "" {
		return errors.New("project id is required")
	}
	p, err := c.GetProfile(name)
	if err != nil {
		return err
	}
	p.GroupID = groupID
	return c.Save()
}

// GetProfile retrieves a profile by name (or current profile if name is empty)
func (c *CLIConfig) GetProfile(name string) (*CLIProfile, error) {
	if name == "" {
		name = c.CurrentProfile
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrProfileNotFound, name)
	}

	return profile, nil
}

// RemoveProfile removes a profile from the configuration
func (c *CLIConfig) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: '%s'", ErrProfileNotFound, name)
	}

	delete(c.Profiles, name)

	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}

	return c.Save()
}

// GetAPIURL returns the API URL from profile or defaults
func (c *CLIConfig) GetAPIURL(profile string) string {
	if p, err := c.GetProfile(profile); err == nil && p.APIURL != "" {
		return p.APIURL
	}
	return c.Defaults.APIURL
}
