package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milescsmith/WGCNA/internal/config"
	"github.com/milescsmith/WGCNA/internal/constants"
	"github.com/milescsmith/WGCNA/internal/simulate"
	"github.com/milescsmith/WGCNA/internal/store"
)

// testSettings returns a small scenario that simulates quickly.
func testSettings() *config.SimConfig {
	settings := config.Default()
	settings.Simulation.Samples = 10
	settings.Simulation.Genes = 40
	settings.Simulation.Modules = []simulate.ModuleSpec{
		{Name: "turquoise", Proportion: 0.25, EffectSize: 0.6, Base: constants.PrimaryBase},
		{Name: "blue", Proportion: 0.25, EffectSize: 0.4, Base: "turquoise"},
		{Name: "brown", Proportion: 0.1, EffectSize: -0.5},
	}
	return settings
}

func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tmpDir := t.TempDir()

	server, err := NewServer(&Config{
		Name:     "test-server",
		Version:  "v1.0.0",
		Root:     tmpDir,
		Settings: testSettings(),
		Store:    store.NewInMemoryRunStore(),
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, tmpDir
}

func TestNewServer(t *testing.T) {
	server, tmpDir := setupTestServer(t)
	defer server.Close()

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.store == nil {
		t.Error("Server.store is nil")
	}
	if server.root != tmpDir {
		t.Errorf("Server.root = %q, want %q", server.root, tmpDir)
	}
	if server.auditLogger == nil {
		t.Error("expected auditLogger to be initialized")
	}
	if len(server.toolLimiters) == 0 {
		t.Error("expected tool limiters")
	}
}

func TestNewServer_OpensSQLiteRegistry(t *testing.T) {
	tmpDir := t.TempDir()
	settings := testSettings()
	settings.Store.Record = true

	server, err := NewServer(&Config{Name: "test", Version: "v0", Root: tmpDir, Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if _, ok := server.store.(*store.SQLiteRunStore); !ok {
		t.Errorf("store = %T, want *store.SQLiteRunStore", server.store)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".wgcnasim", "runs.db")); err != nil {
		t.Errorf("runs.db not created: %v", err)
	}
}

func TestNewServer_InMemoryWithoutRecording(t *testing.T) {
	settings := testSettings()
	settings.Store.Record = false

	server, err := NewServer(&Config{Name: "test", Version: "v0", Root: t.TempDir(), Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if _, ok := server.store.(*store.InMemoryRunStore); !ok {
		t.Errorf("store = %T, want *store.InMemoryRunStore", server.store)
	}
}
