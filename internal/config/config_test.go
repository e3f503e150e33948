package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milescsmith/WGCNA/internal/simulate"
)

func TestDefault(t *testing.T) {
	config := Default()

	// Simulation defaults
	if config.Simulation.Seed != 1 {
		t.Errorf("expected Seed 1, got %d", config.Simulation.Seed)
	}
	if config.Simulation.Samples != 50 {
		t.Errorf("expected Samples 50, got %d", config.Simulation.Samples)
	}
	if config.Simulation.Genes != 3000 {
		t.Errorf("expected Genes 3000, got %d", config.Simulation.Genes)
	}
	if len(config.Simulation.Modules) != 5 {
		t.Errorf("expected 5 modules, got %d", len(config.Simulation.Modules))
	}

	// Store defaults
	if !config.Store.Record {
		t.Error("expected Store.Record to be true by default")
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  seed: 7
  samples: 30
  genes: 200
  default_loading: 0.8
  modules:
    - name: red
      proportion: 0.3
      effect_size: 0.5
      base: primary
    - name: black
      proportion: 0.1
      effect_size: -0.4
      base: red
      loading: 0.95

output:
  dir: /tmp/wgcnasim-out

store:
  record: false

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	sim := config.Simulation
	if sim.Seed != 7 || sim.Samples != 30 || sim.Genes != 200 {
		t.Errorf("unexpected simulation section: %+v", sim)
	}
	if sim.DefaultLoading != 0.8 {
		t.Errorf("expected DefaultLoading 0.8, got %f", sim.DefaultLoading)
	}
	if len(sim.Modules) != 2 {
		t.Fatalf("expected 2 modules (file replaces defaults), got %d", len(sim.Modules))
	}
	want := simulate.ModuleSpec{Name: "black", Proportion: 0.1, EffectSize: -0.4, Base: "red", Loading: 0.95}
	if sim.Modules[1] != want {
		t.Errorf("Modules[1] = %+v, want %+v", sim.Modules[1], want)
	}
	if !sim.Modules[0].IsPrimary() {
		t.Error("expected red to be the primary module")
	}
	if config.Output.Dir != "/tmp/wgcnasim-out" {
		t.Errorf("expected Output.Dir '/tmp/wgcnasim-out', got '%s'", config.Output.Dir)
	}
	if config.Store.Record {
		t.Error("expected Store.Record false")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("simulation:\n  seed: 99\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Simulation.Seed != 99 {
		t.Errorf("expected Seed 99, got %d", config.Simulation.Seed)
	}
	if config.Simulation.Genes != 3000 || len(config.Simulation.Modules) != 5 {
		t.Error("expected unspecified fields to keep defaults")
	}
}

func TestLoadFromFile_ExpandsOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("WGCNASIM_TEST_BASE", "/data")
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  dir: ${WGCNASIM_TEST_BASE}/sim\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Output.Dir != "/data/sim" {
		t.Errorf("expected Output.Dir '/data/sim', got '%s'", config.Output.Dir)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("simulation: [not: valid"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		root := t.TempDir()
		config, err := Load(root, "")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if config.Simulation.Genes != 3000 {
			t.Errorf("expected default Genes, got %d", config.Simulation.Genes)
		}
	})

	t.Run("project file is picked up", func(t *testing.T) {
		root := t.TempDir()
		cfg := Default()
		cfg.Simulation.Genes = 500
		if err := cfg.Save(DefaultPath(root)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		config, err := Load(root, "")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if config.Simulation.Genes != 500 {
			t.Errorf("expected Genes 500, got %d", config.Simulation.Genes)
		}
	})

	t.Run("explicit missing file fails", func(t *testing.T) {
		root := t.TempDir()
		if _, err := Load(root, filepath.Join(root, "missing.yaml")); err == nil {
			t.Error("expected error for missing explicit config")
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WGCNASIM_SEED", "12")
	t.Setenv("WGCNASIM_SAMPLES", "80")
	t.Setenv("WGCNASIM_GENES", "1000")
	t.Setenv("WGCNASIM_DEFAULT_LOADING", "0.9")
	t.Setenv("WGCNASIM_OUTPUT_DIR", "/tmp/out")
	t.Setenv("WGCNASIM_RECORD", "0")
	t.Setenv("WGCNASIM_LOG_LEVEL", "trace")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Seed != 12 {
		t.Errorf("expected Seed 12, got %d", config.Simulation.Seed)
	}
	if config.Simulation.Samples != 80 {
		t.Errorf("expected Samples 80, got %d", config.Simulation.Samples)
	}
	if config.Simulation.Genes != 1000 {
		t.Errorf("expected Genes 1000, got %d", config.Simulation.Genes)
	}
	if config.Simulation.DefaultLoading != 0.9 {
		t.Errorf("expected DefaultLoading 0.9, got %f", config.Simulation.DefaultLoading)
	}
	if config.Output.Dir != "/tmp/out" {
		t.Errorf("expected Output.Dir '/tmp/out', got '%s'", config.Output.Dir)
	}
	if config.Store.Record {
		t.Error("expected Store.Record false")
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
}

func TestApplyEnvOverrides_IgnoresMalformed(t *testing.T) {
	t.Setenv("WGCNASIM_SEED", "-3")
	t.Setenv("WGCNASIM_SAMPLES", "many")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Seed != 1 {
		t.Errorf("expected Seed to stay 1, got %d", config.Simulation.Seed)
	}
	if config.Simulation.Samples != 50 {
		t.Errorf("expected Samples to stay 50, got %d", config.Simulation.Samples)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*SimConfig)
		wantErr string
	}{
		{
			name:    "valid default",
			modify:  func(c *SimConfig) {},
			wantErr: "",
		},
		{
			name:    "invalid log level",
			modify:  func(c *SimConfig) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "empty log level allowed",
			modify:  func(c *SimConfig) { c.Logging.Level = "" },
			wantErr: "",
		},
		{
			name:    "too few samples",
			modify:  func(c *SimConfig) { c.Simulation.Samples = 1 },
			wantErr: "simulation: invalid configuration: samples",
		},
		{
			name:    "proportions over one",
			modify:  func(c *SimConfig) { c.Simulation.Modules[0].Proportion = 0.9 },
			wantErr: "proportions sum to more than 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("expected error containing %q, got nil", tt.wantErr)
			} else if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidate_WrapsSentinel(t *testing.T) {
	config := Default()
	config.Simulation.Genes = 0
	if err := config.Validate(); !errors.Is(err, simulate.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestSimulateConfig_CopiesModules(t *testing.T) {
	config := Default()
	sc := config.Simulation.SimulateConfig()
	sc.Modules[0].Name = "changed"
	if config.Simulation.Modules[0].Name != "turquoise" {
		t.Error("SimulateConfig should not alias the module slice")
	}
}
