// Package config provides unified configuration loading for wgcnasim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/milescsmith/WGCNA/internal/constants"
	"github.com/milescsmith/WGCNA/internal/simulate"
	"gopkg.in/yaml.v3"
)

// SimConfig contains all wgcnasim configuration settings.
type SimConfig struct {
	// Simulation describes the scenario to generate.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Output controls where generated bundles are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Store controls the run registry.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig describes a simulation scenario.
type SimulationConfig struct {
	// Seed fully determines the random stream of a run.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Samples is the number of samples (matrix rows).
	Samples int `json:"samples" yaml:"samples"`

	// Genes is the number of genes (matrix columns).
	Genes int `json:"genes" yaml:"genes"`

	// DefaultLoading is the gene/eigengene correlation for modules without their own loading.
	DefaultLoading float64 `json:"default_loading" yaml:"default_loading"`

	// Modules are declared in partition order.
	Modules []simulate.ModuleSpec `json:"modules" yaml:"modules"`
}

// OutputConfig configures bundle export.
type OutputConfig struct {
	// Dir is the export directory. Empty disables export.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// StoreConfig configures the SQLite run registry.
type StoreConfig struct {
	// Record enables writing each run to <root>/.wgcnasim/runs.db.
	Record bool `json:"record" yaml:"record"`
}

// LoggingConfig configures wgcnasim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables stage tracing to <output dir>/trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a SimConfig holding the tutorial scenario.
func Default() *SimConfig {
	sc := simulate.DefaultConfig()
	return &SimConfig{
		Simulation: SimulationConfig{
			Seed:           constants.DefaultSeed,
			Samples:        sc.Samples,
			Genes:          sc.Genes,
			DefaultLoading: sc.DefaultLoading,
			Modules:        sc.Modules,
		},
		Store: StoreConfig{
			Record: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SimulateConfig converts the simulation section into a simulate.Config.
func (c SimulationConfig) SimulateConfig() simulate.Config {
	modules := make([]simulate.ModuleSpec, len(c.Modules))
	copy(modules, c.Modules)
	return simulate.Config{
		Samples:        c.Samples,
		Genes:          c.Genes,
		Modules:        modules,
		DefaultLoading: c.DefaultLoading,
	}
}

// DefaultPath returns the project config file path under root.
func DefaultPath(root string) string {
	return filepath.Join(root, constants.DataDirName, constants.ConfigFileName)
}

// Load loads configuration for the project at root.
// Order: defaults -> path (or <root>/.wgcnasim/config.yaml) -> environment variables.
// An explicit path must exist; the default path is optional.
func Load(root, path string) (*SimConfig, error) {
	config := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath(root)
	}

	if _, statErr := os.Stat(path); statErr == nil || explicit {
		fileConfig, loadErr := LoadFromFile(path)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Output.Dir = os.ExpandEnv(config.Output.Dir)

	return config, nil
}

// Validate checks that the configuration is valid, including the scenario itself.
func (c *SimConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if err := c.Simulation.SimulateConfig().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *SimConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SimConfig) {
	if v := os.Getenv("WGCNASIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}
	if v := os.Getenv("WGCNASIM_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Samples = n
		}
	}
	if v := os.Getenv("WGCNASIM_GENES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Genes = n
		}
	}
	if v := os.Getenv("WGCNASIM_DEFAULT_LOADING"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.DefaultLoading = f
		}
	}

	if v := os.Getenv("WGCNASIM_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("WGCNASIM_RECORD"); v != "" {
		config.Store.Record = v == "true" || v == "1"
	}

	if v := os.Getenv("WGCNASIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
