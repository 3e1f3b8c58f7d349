package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr               string   `json:"addr" yaml:"addr" toml:"addr"`
	ArtefactsDir       string   `json:"artefacts_dir" yaml:"artefacts_dir" toml:"artefacts_dir"`
	StaticDir          string   `json:"static_dir" yaml:"static_dir" toml:"static_dir"`
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSOrigins        []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	DefaultNumWords    int      `json:"default_num_words" yaml:"default_num_words" toml:"default_num_words"`
	DefaultTemperature float64  `json:"default_temperature" yaml:"default_temperature" toml:"default_temperature"`
	MaxParallel        int      `json:"max_parallel" yaml:"max_parallel" toml:"max_parallel"`
	MaxQueue           int      `json:"max_queue" yaml:"max_queue" toml:"max_queue"`
	QueueTimeoutMS     int      `json:"queue_timeout_ms" yaml:"queue_timeout_ms" toml:"queue_timeout_ms"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
