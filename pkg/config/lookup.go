package config

import (
	"strconv"

	"github.com/apex/log"
)

// keyLookup implements the typed accessors of Configer on top of a single
// string lookup. Each concrete config embeds it.
type keyLookup struct {
	get func(key string) string
}

func (l keyLookup) GetKey(key string) string {
	return l.get(key)
}

func (l keyLookup) MustGetKey(key string) string {
	val := l.get(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (l keyLookup) GetKeyWithDefault(key, defaultValue string) string {
	if val := l.get(key); val != "" {
		return val
	}

	return defaultValue
}

func (l keyLookup) GetIntKey(key string) int {
	return l.GetIntKeyWithDefault(key, 0)
}

func (l keyLookup) MustGetIntKey(key string) int {
	intVal, err := strconv.Atoi(l.get(key))
	if err != nil {
		log.Fatalf("Required config key either doesn't exist or isn't an int: '%s': %s", key, err)
	}

	return intVal
}

func (l keyLookup) GetIntKeyWithDefault(key string, defaultValue int) int {
	intVal, err := strconv.Atoi(l.get(key))
	if err != nil {
		return defaultValue
	}

	return intVal
}

func (l keyLookup) GetFloatKeyWithDefault(key string, defaultValue float64) float64 {
	floatVal, err := strconv.ParseFloat(l.get(key), 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}
