// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// envOverride declares a single environment variable override. Each entry
// maps an env key (without the RSATOOL_ prefix) to the CLI flag it
// corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flag   string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable
// overrides.
var envOverrides = []envOverride{
	{"OUT", "out", func(c *AppConfig, v string) {
		c.OutFile = v
	}},
	{"STEPS", "steps", func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Steps = parsed
		}
	}},
	{"QUIET", "quiet", func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Quiet = parsed
		}
	}},
	{"NO_COLOR", "no-color", func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.NoColor = parsed
		}
	}},
	{"VERBOSE", "verbose", func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Verbose = parsed
		}
	}},
	{"METRICS", "metrics", func(c *AppConfig, v string) {
		c.MetricsAddr = v
	}},
	{"TIMEOUT", "timeout", func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},
}

// applyEnvOverrides applies environment values for every flag the user did
// not set explicitly.
func applyEnvOverrides(cfg *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSet(fs, o.flag) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(cfg, val)
		}
	}
}
