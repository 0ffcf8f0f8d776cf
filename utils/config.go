package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig holds defaults loaded from an optional YAML config file.
// Command-line flags take precedence over values set here.
type FileConfig struct {
	Workers   int      `yaml:"workers"`
	ChunkSize string   `yaml:"chunk_size"`
	Retries   int      `yaml:"retries"`
	Timeout   string   `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
	Proxy     string   `yaml:"proxy"`
	Headers   []string `yaml:"headers"`
	KeepParts bool     `yaml:"keep_parts"`
}

func ReadFileConfig(filePath string) (*FileConfig, error) {
	log := GetLogger("config")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %v", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %v", err)
	}
	log.Debug().Str("file", filePath).Msg("Defaults loaded from YAML")
	return &cfg, nil
}
