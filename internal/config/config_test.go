package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func envSnapshot(t *testing.T) func() {
	t.Helper()
	saved := make(map[string]string)
	for _, env := range os.Environ() {
		if len(env) > 8 && env[:8] == "PLANNER_" {
			key := env[:indexByte(env, '=')]
			saved[key] = os.Getenv(key)
			os.Unsetenv(key)
		}
	}
	return func() {
		for k, v := range saved {
			os.Setenv(k, v)
		}
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func TestDefault(t *testing.T) {
	def := Default()
	if def.StorePath != "planner.db" {
		t.Errorf("StorePath = %q, want planner.db", def.StorePath)
	}
	if def.CapacityMinutesPerDay != 480 {
		t.Errorf("CapacityMinutesPerDay = %d, want 480", def.CapacityMinutesPerDay)
	}
}

func TestLoadDefaultsWhenNoFiles(t *testing.T) {
	restore := envSnapshot(t)
	defer restore()

	dir := t.TempDir()
	cfg, err := Load(dir, viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "planner.db" {
		t.Errorf("StorePath = %q, want planner.db", cfg.StorePath)
	}
	if cfg.ListenAddr != "127.0.0.1:4777" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:4777", cfg.ListenAddr)
	}
}

func TestLoadYAMLOverridesDefault(t *testing.T) {
	restore := envSnapshot(t)
	defer restore()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "planner.yaml")
	if err := os.WriteFile(yamlPath, []byte("store-path: from-yaml.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir, viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "from-yaml.db" {
		t.Errorf("StorePath = %q, want from-yaml.db", cfg.StorePath)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	restore := envSnapshot(t)
	defer restore()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "planner.yaml")
	if err := os.WriteFile(yamlPath, []byte("store-path: from-yaml.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Setenv("PLANNER_STORE_PATH", "from-env.db")

	cfg, err := Load(dir, viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "from-env.db" {
		t.Errorf("StorePath = %q, want from-env.db", cfg.StorePath)
	}
}

func TestLoadTOMLBeneathYAML(t *testing.T) {
	restore := envSnapshot(t)
	defer restore()

	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "planner.toml")
	if err := os.WriteFile(tomlPath, []byte("capacity-minutes-per-day = 360\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir, viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CapacityMinutesPerDay != 360 {
		t.Errorf("CapacityMinutesPerDay = %d, want 360 from toml profile", cfg.CapacityMinutesPerDay)
	}

	yamlPath := filepath.Join(dir, "planner.yaml")
	if err := os.WriteFile(yamlPath, []byte("capacity-minutes-per-day: 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(dir, viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CapacityMinutesPerDay != 500 {
		t.Errorf("CapacityMinutesPerDay = %d, want 500 (yaml over toml)", cfg.CapacityMinutesPerDay)
	}
}

func TestLoadLocalYAMLMissingIsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := LoadLocalYAML(dir)
	if cfg.StorePath != "" {
		t.Errorf("StorePath = %q, want empty for missing file", cfg.StorePath)
	}
}

func TestLoadLocalYAMLReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	if err := os.WriteFile(path, []byte("store-path: local.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := LoadLocalYAML(dir)
	if cfg.StorePath != "local.db" {
		t.Errorf("StorePath = %q, want local.db", cfg.StorePath)
	}
}
