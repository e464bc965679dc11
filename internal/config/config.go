package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up at the project root.
const FileName = "elm-pipeline.yaml"

// Config is the content of elm-pipeline.yaml.
type Config struct {
	Output    string   `yaml:"output"`
	Inputs    []string `yaml:"inputs,omitempty"`
	Steps     []string `yaml:"steps,omitempty"`
	LogLevel  string   `yaml:"log_level"`
	Compiler  Tool     `yaml:"compiler"`
	Optimizer Tool     `yaml:"optimizer,omitempty"`
	Minifier  Tool     `yaml:"minifier,omitempty"`
	Bindings  Tool     `yaml:"bindings,omitempty"`
}

// Tool configures an external program.
type Tool struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	// ConfigFlag and Config name an optional configuration file passed to
	// the tool when the file exists.
	ConfigFlag string `yaml:"config_flag,omitempty"`
	Config     string `yaml:"config,omitempty"`
}

// Configured reports whether a command is set.
func (t Tool) Configured() bool {
	return t.Command != ""
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// Load reads FileName from the project root, falling back to Default when
// the file does not exist.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(projectRoot, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Output == "" {
		cfg.Output = "elm.js"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	if cfg.Compiler.Command == "" {
		cfg.Compiler.Command = "elm"
	}
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
