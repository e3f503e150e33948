package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milescsmith/WGCNA/internal/constants"
	"github.com/milescsmith/WGCNA/internal/export"
	"github.com/milescsmith/WGCNA/internal/logging"
	"github.com/milescsmith/WGCNA/internal/pathutil"
	"github.com/milescsmith/WGCNA/internal/ratelimit"
	"github.com/milescsmith/WGCNA/internal/sanitize"
	"github.com/milescsmith/WGCNA/internal/simulate"
	"github.com/milescsmith/WGCNA/internal/store"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

const (
	configResourceURI  = "wgcnasim://config"
	runResourcePrefix  = "wgcnasim://runs/"
	defaultRunsLimit   = 20
	maxRunsLimit       = 500
	maxSimulationCells = 50_000_000
)

// registerTools registers all wgcnasim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simulate_modules",
		Description: "Generate a synthetic expression matrix with known co-expression modules and a binary trait; optionally export and record it",
	}, s.handleSimulateModules)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_runs",
		Description: "List recorded simulation runs, newest first",
	}, s.handleListRuns)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_run",
		Description: "Get a recorded simulation run with its full configuration and module gene counts",
	}, s.handleGetRun)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         configResourceURI,
		Name:        "wgcnasim-config",
		Description: "The simulation scenario used when simulate_modules arguments are omitted.",
		MIMEType:    "application/yaml",
	}, s.handleConfigResource)

	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: runResourcePrefix + "{id}",
		Name:        "wgcnasim-run",
		Description: "Markdown summary of a recorded simulation run.",
		MIMEType:    "text/markdown",
	}, s.handleRunResource)
}

// scenario merges tool arguments over the configured scenario.
func (s *Server) scenario(args SimulateModulesInput) (simulate.Config, uint64) {
	cfg := s.settings.Simulation.SimulateConfig()
	seed := s.settings.Simulation.Seed
	if args.Seed != nil {
		seed = *args.Seed
	}
	if args.Samples > 0 {
		cfg.Samples = args.Samples
	}
	if args.Genes > 0 {
		cfg.Genes = args.Genes
	}
	if len(args.Modules) > 0 {
		cfg.Modules = make([]simulate.ModuleSpec, len(args.Modules))
		for i, m := range args.Modules {
			m.Name = sanitize.ModuleName(m.Name)
			if !m.IsPrimary() {
				m.Base = sanitize.ModuleName(m.Base)
			}
			cfg.Modules[i] = m
		}
	}
	return cfg, seed
}

func (args SimulateModulesInput) auditParams() map[string]any {
	params := map[string]any{}
	if args.Seed != nil {
		params["seed"] = *args.Seed
	}
	if args.Samples > 0 {
		params["samples"] = args.Samples
	}
	if args.Genes > 0 {
		params["genes"] = args.Genes
	}
	if len(args.Modules) > 0 {
		params["modules"] = len(args.Modules)
	}
	if args.ExportDir != "" {
		params["export_dir"] = args.ExportDir
	}
	if args.Record != nil {
		params["record"] = *args.Record
	}
	return params
}

// checkCellLimit rejects matrices above maxSimulationCells. It divides
// instead of multiplying so huge dimensions cannot overflow past the check.
func checkCellLimit(samples, genes int) error {
	if samples < 1 || genes < 1 {
		return fmt.Errorf("samples and genes must be positive")
	}
	if genes > maxSimulationCells/samples {
		return fmt.Errorf("%d samples x %d genes exceeds the %d cell limit", samples, genes, maxSimulationCells)
	}
	return nil
}

// handleSimulateModules implements the simulate_modules tool.
func (s *Server) handleSimulateModules(ctx context.Context, req *sdk.CallToolRequest, args SimulateModulesInput) (_ *sdk.CallToolResult, _ SimulateModulesOutput, retErr error) {
	start := time.Now()
	var runID int64
	defer func() {
		s.auditTool("simulate_modules", start, retErr, runID, sanitizeToolParams(args.auditParams()))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "simulate_modules"); err != nil {
		return nil, SimulateModulesOutput{}, err
	}

	cfg, seed := s.scenario(args)
	if err := cfg.Validate(); err != nil {
		return nil, SimulateModulesOutput{}, err
	}
	if err := checkCellLimit(cfg.Samples, cfg.Genes); err != nil {
		return nil, SimulateModulesOutput{}, err
	}

	var exportDir string
	if args.ExportDir != "" {
		dir, err := pathutil.ResolveExportDir(s.root, args.ExportDir)
		if err != nil {
			return nil, SimulateModulesOutput{}, err
		}
		exportDir = dir
	}

	tracer := logging.NewTraceLogger(exportDir, s.settings.Logging.Level)
	defer tracer.Close()

	bundle, err := simulate.NewSimulator(s.logger, tracer).Run(cfg, seed)
	if err != nil {
		return nil, SimulateModulesOutput{}, err
	}

	out := SimulateModulesOutput{
		Seed:           seed,
		Summary:        simulate.Summarize(bundle),
		MatrixChecksum: export.MatrixChecksum(bundle.Expression.Matrix),
	}

	if exportDir != "" {
		manifest, err := export.Write(exportDir, bundle)
		if err != nil {
			return nil, SimulateModulesOutput{}, fmt.Errorf("failed to export run: %w", err)
		}
		tracer.Log(map[string]any{
			"stage": "export",
			"seed":  seed,
			"files": len(manifest.Files),
		})
		out.ExportDir = exportDir
	}

	record := s.settings.Store.Record
	if args.Record != nil {
		record = *args.Record
	}
	if record {
		id, err := s.store.RecordRun(ctx, store.NewRun(bundle, exportDir))
		if err != nil {
			return nil, SimulateModulesOutput{}, fmt.Errorf("failed to record run: %w", err)
		}
		runID = id
		out.RunID = id
	}

	out.Message = fmt.Sprintf("Simulated %d samples x %d genes in %d modules (%d background genes), seed %d",
		out.Summary.Samples, out.Summary.Genes, len(out.Summary.Modules), out.Summary.Background, seed)
	if out.RunID != 0 {
		out.Message += fmt.Sprintf(", recorded as run %d", out.RunID)
	}

	s.logger.Info("simulate_modules", "seed", seed, "genes", cfg.Genes, "run_id", out.RunID, "exported", exportDir != "")

	return nil, out, nil
}

// handleListRuns implements the list_runs tool.
func (s *Server) handleListRuns(ctx context.Context, req *sdk.CallToolRequest, args ListRunsInput) (_ *sdk.CallToolResult, _ ListRunsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("list_runs", start, retErr, 0, sanitizeToolParams(map[string]any{"limit": args.Limit}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "list_runs"); err != nil {
		return nil, ListRunsOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	items := make([]RunListItem, 0, len(runs))
	for _, r := range runs {
		items = append(items, runListItem(r))
	}

	return nil, ListRunsOutput{Runs: items, Count: len(items)}, nil
}

// handleGetRun implements the get_run tool.
func (s *Server) handleGetRun(ctx context.Context, req *sdk.CallToolRequest, args GetRunInput) (_ *sdk.CallToolResult, _ GetRunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("get_run", start, retErr, args.ID, sanitizeToolParams(map[string]any{"id": args.ID}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "get_run"); err != nil {
		return nil, GetRunOutput{}, err
	}
	if args.ID <= 0 {
		return nil, GetRunOutput{}, fmt.Errorf("id must be positive")
	}

	run, err := s.store.GetRun(ctx, args.ID)
	if err != nil {
		return nil, GetRunOutput{}, err
	}
	return nil, GetRunOutput{Run: *run}, nil
}

// handleConfigResource returns the configured scenario as YAML.
func (s *Server) handleConfigResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	data, err := yaml.Marshal(s.settings.Simulation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      configResourceURI,
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		},
	}, nil
}

// handleRunResource renders a recorded run as markdown.
// URI format: wgcnasim://runs/{id}
func (s *Server) handleRunResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	if !strings.HasPrefix(uri, runResourcePrefix) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, runResourcePrefix), 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid run ID in %s", uri)
	}

	run, err := s.store.GetRun(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return nil, sdk.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     formatRunMarkdown(run),
			},
		},
	}, nil
}

func formatRunMarkdown(run *store.Run) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Run %d\n\n", run.ID))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n", run.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Seed:** %d\n", run.Seed))
	sb.WriteString(fmt.Sprintf("**Shape:** %d samples x %d genes\n", run.Samples, run.Genes))
	sb.WriteString(fmt.Sprintf("**High-trait samples:** %d\n", run.HighTraits))
	sb.WriteString(fmt.Sprintf("**Matrix checksum:** `%s`\n", run.MatrixChecksum))
	if run.ExportDir != "" {
		sb.WriteString(fmt.Sprintf("**Export:** %s\n", sanitize.Text(run.ExportDir)))
	}

	sb.WriteString("\n## Modules\n\n")
	sb.WriteString("| Module | Genes | Effect size | Base |\n|---|---|---|---|\n")
	for _, mc := range run.Modules {
		effect, base := "", ""
		for _, spec := range run.Config.Modules {
			if spec.Name == mc.Module {
				effect = strconv.FormatFloat(spec.EffectSize, 'g', -1, 64)
				base = spec.Base
			}
		}
		if mc.Module == constants.UnassignedModule {
			base = "background"
		} else if base == "" {
			base = "signal"
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
			sanitize.Text(mc.Module), mc.Genes, effect, sanitize.Text(base)))
	}
	return sb.String()
}
