package config

import (
	"os"

	"github.com/subosito/gotenv"
)

// DotenvConfig reads keys from the process environment after loading a
// .env file into it.
type DotenvConfig struct {
	keyLookup
	DotenvPath string
}

func NewDotenvConfig(path string) *DotenvConfig {
	return &DotenvConfig{
		keyLookup:  keyLookup{get: os.Getenv},
		DotenvPath: path,
	}
}

func (c *DotenvConfig) LoadFromPath(path string) error {
	c.DotenvPath = path
	return c.Load()
}

func (c *DotenvConfig) Load() error {
	if c.DotenvPath == "" {
		// Environment only.
		return nil
	}
	return gotenv.Load(c.DotenvPath)
}
