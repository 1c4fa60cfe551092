// Package config provides fail-open environment loaders shared by the
// API and worker configuration. A bad value never aborts startup: the
// loader falls back to the default and reports a warning the caller
// can log and count.
package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult carries a loaded value together with the warnings
// produced while loading it. FallbackApplied is true when the default
// replaced an invalid environment value.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func fallback(envKey, raw string, reason error, defaultValue interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value: defaultValue,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, raw, reason, defaultValue)},
		FallbackApplied: true,
	}
}

func loaded(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

// LoadEnvString returns the environment value, or defaultValue when the
// variable is unset or empty. No validation.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string and validates it. An unset
// variable uses the default silently; a value the validator rejects
// falls back with a warning. validator may be nil.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return loaded(defaultValue)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, err, defaultValue)
		}
	}
	return loaded(value)
}

// LoadEnvDuration parses the variable with time.ParseDuration ("30s",
// "5m", "1h30m") and validates the result. Parse or validation failure
// falls back with a warning. validator may be nil.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}

// LoadEnvInt parses the variable as a decimal integer and validates
// the result. Parse or validation failure falls back with a warning.
// validator may be nil.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	var parsed int
	if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
		return fallback(envKey, raw, fmt.Errorf("invalid integer format"), defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return loaded(parsed)
}

// LoadEnvBool parses the variable as a boolean. Accepted spellings
// follow strconv.ParseBool: "1"/"t"/"T"/"true"/"TRUE"/"True" and their
// false counterparts. Anything else falls back with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	switch raw {
	case "1", "t", "T", "true", "TRUE", "True":
		return loaded(true)
	case "0", "f", "F", "false", "FALSE", "False":
		return loaded(false)
	default:
		return fallback(envKey, raw,
			fmt.Errorf("invalid boolean format, expected 'true' or 'false'"), defaultValue)
	}
}
