package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
	"github.com/i474232898/prayer-times-aggregation/internal/prayer/providers"
)

// ClientConfig holds namazctl settings.
type ClientConfig struct {
	City     string        `yaml:"city"`
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
	Cache    struct {
		Path string        `yaml:"path"`
		TTL  time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Aladhan struct {
		Days int     `yaml:"days"`
		RPS  float64 `yaml:"rps"`
	} `yaml:"aladhan"`
	NamazVaktiMirrors []string `yaml:"namazvakti_mirrors"`
}

// DefaultClient returns a ClientConfig with sensible defaults.
func DefaultClient() *ClientConfig {
	cfg := &ClientConfig{
		City:     "11001",
		Provider: prayer.AutoProvider,
		Timeout:  20 * time.Second,
	}
	cfg.Cache.Path = defaultCachePath()
	cfg.Cache.TTL = 7 * 24 * time.Hour
	cfg.Aladhan.Days = 7
	cfg.Aladhan.RPS = 4
	return cfg
}

// LoadClient reads a YAML config file and expands environment variables.
// A missing file yields the defaults.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClient()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Provider != "" && !prayer.KnownProvider(cfg.Provider) {
		return nil, fmt.Errorf("parse config: unknown provider %q", cfg.Provider)
	}
	return cfg, nil
}

// ProviderConfig maps the client settings onto adapter settings.
func (c *ClientConfig) ProviderConfig() providers.Config {
	return providers.Config{
		NamazVaktiMirrors: c.NamazVaktiMirrors,
		Aladhan: providers.AladhanConfig{
			Days: c.Aladhan.Days,
			RPS:  c.Aladhan.RPS,
		},
	}
}

// DefaultClientConfigPath is ~/.config/namazctl/config.yaml.
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "namazctl.yaml"
	}
	return filepath.Join(dir, "namazctl", "config.yaml")
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "namazctl-cache.db"
	}
	return filepath.Join(dir, "namazctl", "cache.db")
}
