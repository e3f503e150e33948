package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/milescsmith/WGCNA/internal/config"
	"github.com/milescsmith/WGCNA/internal/ratelimit"
	"github.com/milescsmith/WGCNA/internal/store"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server and provides wgcnasim tools.
type Server struct {
	server       *sdk.Server
	store        store.RunStore
	root         string
	settings     *config.SimConfig
	logger       *slog.Logger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "wgcnasim")
	Version string // Server version
	Root    string // Project root directory

	// Settings is the loaded configuration. Nil means config.Default().
	Settings *config.SimConfig

	// Store overrides the run registry. When nil, the SQLite registry under
	// Root is opened if Settings.Store.Record is set, else an in-memory store.
	Store store.RunStore

	// Logger receives operational logs. Nil means slog.Default().
	Logger *slog.Logger
}

// NewServer creates a new MCP server with wgcnasim tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runStore := cfg.Store
	if runStore == nil {
		if settings.Store.Record {
			sqliteStore, err := store.NewSQLiteRunStore(cfg.Root)
			if err != nil {
				return nil, fmt.Errorf("failed to open run registry: %w", err)
			}
			runStore = sqliteStore
		} else {
			runStore = store.NewInMemoryRunStore()
		}
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		store:        runStore,
		root:         cfg.Root,
		settings:     settings,
		logger:       logger,
		auditLogger:  NewAuditLogger(cfg.Root),
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close closes the run store and audit log.
func (s *Server) Close() error {
	auditErr := s.auditLogger.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return auditErr
}
