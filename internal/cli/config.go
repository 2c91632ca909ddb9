package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
)

// configNames are tried in order in each directory during discovery.
var configNames = []string{"lift.yaml", "lift.yml"}

// Config represents the lift configuration from lift.yaml.
type Config struct {
	// Dialect applies to snapshots that do not declare one.
	Dialect string `mapstructure:"dialect"`
	Force   bool   `mapstructure:"force"`
	Debug   bool   `mapstructure:"debug"`

	Probe ProbeConfig `mapstructure:"probe"`
}

// ProbeConfig holds the database the checker inspects for data.
// URL takes precedence over Driver and DSN.
type ProbeConfig struct {
	URL    string `mapstructure:"url"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LoadConfig discovers and loads configuration with precedence
// env > config file > defaults. Flags are applied by the commands.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

// AutomaticEnv only sees keys viper already knows, so every key gets a
// default here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dialect", "")
	v.SetDefault("force", false)
	v.SetDefault("debug", false)

	v.SetDefault("probe.url", "")
	v.SetDefault("probe.driver", "")
	v.SetDefault("probe.dsn", "")
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for lift.yaml or lift.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// resolveString returns the first non-empty value.
// Callers pass flag, then config.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveBool returns true if any of the provided values is true.
func resolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
