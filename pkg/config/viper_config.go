package config

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ViperConfig reads keys from a YAML/TOML/JSON file with environment
// variables taking precedence. Keys are looked up as written, so
// DENSITYCTL_SERVER in the environment and densityctl_server in the file
// resolve to the same setting.
type ViperConfig struct {
	keyLookup
	v    *viper.Viper
	path string
}

func NewViperConfig(path string) *ViperConfig {
	v := viper.New()
	v.AutomaticEnv()
	c := &ViperConfig{v: v, path: path}
	c.keyLookup = keyLookup{get: v.GetString}
	return c
}

// DefaultViperConfigPath returns $HOME/<name>.yaml.
func DefaultViperConfigPath(name string) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, name+".yaml"), nil
}

func (c *ViperConfig) LoadFromPath(path string) error {
	c.path = path
	return c.Load()
}

func (c *ViperConfig) Load() error {
	if c.path == "" {
		return nil
	}

	c.v.SetConfigFile(c.path)
	return c.v.ReadInConfig()
}

// SetDefault registers a fallback used when neither the file nor the
// environment define key.
func (c *ViperConfig) SetDefault(key, value string) {
	c.v.SetDefault(key, value)
}
