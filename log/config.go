package log

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the content of an optional yaml file configuring the logger.
//
// Example:
//
//	level: debug
//	format: text
//	filter: "debug:analytics.* debug:cache.* info:*"
type FileConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Filter string `yaml:"filter"`
}

func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse log config %s: %w", path, err)
	}
	return cfg, nil
}

// FromConfig builds a logger from cfg. Unknown levels fall back to info.
func FromConfig(writer io.Writer, cfg *FileConfig, opts ...Option) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = InfoLevel
	}
	if cfg.Filter != "" {
		f, err := WithFilter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, f)
	}
	if cfg.Format == "json" {
		return New(writer, level, opts...), nil
	}
	return DevLogger(writer, level, opts...), nil
}
