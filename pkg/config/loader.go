package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_form.yaml
var defaultFormYAML []byte

// LoadFormConfig reads and validates the catalogue at filePath. An empty
// path loads the embedded default.
func LoadFormConfig(filePath string) (*FormConfig, error) {
	data := defaultFormYAML
	source := "embedded default"
	if filePath != "" {
		log.Printf("Loading form configuration from %s...", filePath)
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		data = raw
		source = filePath
	}

	cfg, err := ParseFormConfig(data)
	if err != nil {
		return nil, fmt.Errorf("form configuration from %s: %w", source, err)
	}

	log.Printf("Form configuration loaded from %s. %d sections, %d fields.", source, len(cfg.Sections), len(cfg.Fields))
	return cfg, nil
}

// ParseFormConfig decodes and validates catalogue YAML.
func ParseFormConfig(data []byte) (*FormConfig, error) {
	var cfg FormConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// DefaultFormConfig returns the embedded catalogue. It panics if the
// embedded file is invalid.
func DefaultFormConfig() *FormConfig {
	cfg, err := ParseFormConfig(defaultFormYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded form configuration is invalid: %v", err))
	}
	return cfg
}
