// Package config loads the kernel's startup configuration: a YAML file
// read directly so environment variables can override it, layered under
// github.com/spf13/viper for flag > env > file > default precedence. An
// optional planner.toml profile file (github.com/BurntSushi/toml) may sit
// beside planner.yaml for tooling that prefers TOML; it is merged in
// beneath viper's other sources, never above them.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the resolved startup configuration for a kernel process.
type Config struct {
	StorePath                string `mapstructure:"store-path" yaml:"store-path"`
	ListenAddr                string `mapstructure:"listen-addr" yaml:"listen-addr"`
	CapacityMinutesPerDay     int    `mapstructure:"capacity-minutes-per-day" yaml:"capacity-minutes-per-day"`
	AutoArchiveOnComplete     bool   `mapstructure:"auto-archive-on-complete" yaml:"auto-archive-on-complete"`
	CurrentUserID             string `mapstructure:"current-user-id" yaml:"current-user-id"`
	MetricsEnabled            bool   `mapstructure:"metrics-enabled" yaml:"metrics-enabled"`
}

// Default returns the built-in defaults before any file/env/flag layer is
// applied.
func Default() Config {
	return Config{
		StorePath:             "planner.db",
		ListenAddr:            "127.0.0.1:4777",
		CapacityMinutesPerDay: 480,
		AutoArchiveOnComplete: false,
		CurrentUserID:         "",
		MetricsEnabled:        false,
	}
}

// Load resolves configuration from, in ascending precedence: built-in
// defaults, a planner.toml file in dir (if present), a planner.yaml file in
// dir (if present), environment variables prefixed PLANNER_, and finally
// any flags bound into v by the caller (cobra commands bind their own
// flags into the same viper instance before calling Load).
func Load(dir string, v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default()
	v.SetDefault("store-path", def.StorePath)
	v.SetDefault("listen-addr", def.ListenAddr)
	v.SetDefault("capacity-minutes-per-day", def.CapacityMinutesPerDay)
	v.SetDefault("auto-archive-on-complete", def.AutoArchiveOnComplete)
	v.SetDefault("current-user-id", def.CurrentUserID)
	v.SetDefault("metrics-enabled", def.MetricsEnabled)

	if tomlCfg, err := loadTOMLProfile(dir); err == nil {
		for k, val := range tomlCfg {
			v.SetDefault(k, val)
		}
	}

	v.SetConfigName("planner")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadTOMLProfile reads dir/planner.toml into a flat map, returning an
// empty (not nil) result when the file is absent or unparsable.
func loadTOMLProfile(dir string) (map[string]interface{}, error) {
	path := filepath.Join(dir, "planner.toml")
	data, err := os.ReadFile(path) // #nosec G304 - path built from a caller-supplied directory
	if err != nil {
		return map[string]interface{}{}, nil
	}
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return map[string]interface{}{}, nil
	}
	return raw, nil
}

// LocalYAML is the subset of planner.yaml read directly, bypassing viper,
// for callers that need config before viper initializes.
type LocalYAML struct {
	StorePath string `yaml:"store-path"`
}

// LoadLocalYAML reads dir/planner.yaml directly; returns an empty (not
// nil) LocalYAML if the file is missing or unparsable.
func LoadLocalYAML(dir string) *LocalYAML {
	data, err := os.ReadFile(filepath.Join(dir, "planner.yaml")) // #nosec G304
	if err != nil {
		return &LocalYAML{}
	}
	var cfg LocalYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalYAML{}
	}
	return &cfg
}
