package scheduler

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "newshub/internal/pkg/config"
)

// JobConfig is one entry in the jobs file.
type JobConfig struct {
	Name     string   `yaml:"name"`
	Schedule string   `yaml:"schedule"`
	Cities   []string `yaml:"cities,omitempty"` // weather job only
}

// Config is the schedule table, loadable from a YAML file.
type Config struct {
	Timezone string      `yaml:"timezone"`
	Jobs     []JobConfig `yaml:"jobs"`
}

// DefaultConfig returns the built-in schedule: news every 30 minutes,
// weather every 2 hours for Tokyo, retention sweep at midnight.
func DefaultConfig() Config {
	return Config{
		Timezone: "UTC",
		Jobs: []JobConfig{
			{Name: "news", Schedule: "*/30 * * * *"},
			{Name: "weather", Schedule: "0 */2 * * *", Cities: []string{"tokyo"}},
			{Name: "cleanup", Schedule: "0 0 * * *"},
		},
	}
}

// LoadConfig reads the jobs file. An empty path returns the defaults;
// a malformed file is an error rather than a silent fallback, since a
// wrong schedule table should stop the worker at boot.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read jobs file: %w", err)
	}

	cfg := Config{Timezone: "UTC"}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse jobs file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the timezone and every job entry.
func (c Config) Validate() error {
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	seen := make(map[string]bool, len(c.Jobs))
	for _, j := range c.Jobs {
		if j.Name == "" {
			return fmt.Errorf("job with schedule %q has no name", j.Schedule)
		}
		if seen[j.Name] {
			return fmt.Errorf("duplicate job %q", j.Name)
		}
		seen[j.Name] = true
		if j.Schedule != "" {
			if err := pkgconfig.ValidateCronSchedule(j.Schedule); err != nil {
				return fmt.Errorf("job %q: %w", j.Name, err)
			}
		}
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Job returns the entry with the given name, if present.
func (c Config) Job(name string) (JobConfig, bool) {
	for _, j := range c.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return JobConfig{}, false
}
