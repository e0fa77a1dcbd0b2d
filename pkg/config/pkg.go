package config

import (
	"os"

	"github.com/apex/log"
)

const DotenvPathEnvVar = "DENSITY_DOTENV_PATH"

var configer Configer = NewDotenvConfig("")

func SetConfig(c Configer) {
	configer = c
}

func GetConfig() Configer {
	return configer
}

// MustLoadFromDotenv loads the .env file named by DENSITY_DOTENV_PATH, makes it the
// package config and returns it. With the variable unset only the environment is used.
func MustLoadFromDotenv() Configer {
	c := NewDotenvConfig(os.Getenv(DotenvPathEnvVar))
	if err := c.Load(); err != nil {
		log.Fatalf("Failed loading configuration file %s: %s", c.DotenvPath, err)
	}

	SetConfig(c)
	return c
}

func GetKey(key string) string {
	return configer.GetKey(key)
}

func MustGetKey(key string) string {
	return configer.MustGetKey(key)
}

func GetKeyWithDefault(key, defaultValue string) string {
	return configer.GetKeyWithDefault(key, defaultValue)
}

func GetIntKeyWithDefault(key string, defaultValue int) int {
	return configer.GetIntKeyWithDefault(key, defaultValue)
}
