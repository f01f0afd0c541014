package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/logger"

	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application.
// Every section has defaults that reproduce the stock behavior, so running
// without a config file is fully supported.
type GlobalConfig struct {
	GitHubConfig    GitHubConfig         `json:"github_config,omitempty" yaml:"github_config,omitempty"`
	DockerHubConfig DockerHubConfig      `json:"dockerhub_config,omitempty" yaml:"dockerhub_config,omitempty"`
	ScannerConfig   ScannerConfig        `json:"scanner_config,omitempty" yaml:"scanner_config,omitempty"`
	OutputConfig    OutputConfig         `json:"output_config,omitempty" yaml:"output_config,omitempty"`
	LogConfig       logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		GitHubConfig:    NewDefaultGitHubConfig(),
		DockerHubConfig: NewDefaultDockerHubConfig(),
		ScannerConfig:   NewDefaultScannerConfig(),
		OutputConfig:    NewDefaultOutputConfig(),
		LogConfig:       logger.NewDefaultFileLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from the provided path or the
// default locations. Both YAML and JSON are supported; YAML wins for .yaml
// and .yml extensions. A missing config file yields pure defaults.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to read config file "+filePath)
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.WrapErrorf(err, "failed to unmarshal YAML from '%s'", filePath)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.WrapErrorf(err, "failed to unmarshal JSON from '%s'", filePath)
	}
	return nil
}
