package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is proofkit.yaml: which storage backend to boot and how to
// size the proving harness, grounded on the pack's own yaml.v3 config
// files (lirlia/day39_k8s_language_server, hashicorp-nomad's agent
// config).
type Config struct {
	Storage    string `yaml:"storage"`     // "memory" (default) or "bolt"
	BoltPath   string `yaml:"bolt_path"`   // required when storage is "bolt"
	LogLevel   string `yaml:"log_level"`   // "debug", "info", "warn", "error"
	BufferSize int    `yaml:"buffer_size"` // multiplex bounded-queue size, default 1
}

func defaultConfig() *Config {
	return &Config{Storage: "memory", LogLevel: "info", BufferSize: 1}
}

// LoadConfig reads and validates proofkit.yaml at path. A missing file
// is not an error: defaultConfig is returned instead, so cmd/proofkit
// runs with no configuration at all for a quick trial.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	switch cfg.Storage {
	case "", "memory":
		cfg.Storage = "memory"
	case "bolt":
		if cfg.BoltPath == "" {
			return nil, errors.New("config: storage: bolt requires bolt_path")
		}
	default:
		return nil, errors.Errorf("config: unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}
