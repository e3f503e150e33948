// Package constants provides named constants used throughout the wgcnasim codebase.
// This centralizes magic numbers and labels for better maintainability and documentation.
package constants

// Module labelling constants
const (
	// UnassignedModule is the module label given to background genes that do not
	// track any eigengene. Matches the "grey" convention of WGCNA colour labels.
	UnassignedModule = "grey"

	// PrimaryBase marks the module whose eigengene is the primary latent vector.
	// Its effect size sets the correlation between that vector and the reference signal.
	PrimaryBase = "primary"

	// EigengenePrefix is prepended to module names in eigengene column headers (e.g. "MEblue").
	EigengenePrefix = "ME"
)

// Entity identifier prefixes.
const (
	SamplePrefix = "Sample"
	GenePrefix   = "Gene"
)

// Simulation defaults
const (
	// DefaultSamples is the number of samples in the default scenario.
	DefaultSamples = 50

	// DefaultGenes is the number of genes in the default scenario.
	DefaultGenes = 3000

	// DefaultSeed is the seed used when none is configured.
	DefaultSeed = 1

	// DefaultLoading is the per-gene correlation with its module eigengene when a
	// module does not set its own loading.
	DefaultLoading = 0.7

	// ProportionSumTolerance absorbs floating point slack when checking that
	// module proportions sum to at most one.
	ProportionSumTolerance = 1e-9
)

// Stream seeding. The second PCG word is derived from the seed so that a
// single integer fully determines the stream.
const StreamSeedMix uint64 = 0x9e3779b97f4a7c15

// Storage layout
const (
	// DataDirName is the per-project directory holding config and the run registry.
	DataDirName = ".wgcnasim"

	// RunsDBName is the SQLite run registry file name.
	RunsDBName = "runs.db"

	// ConfigFileName is the YAML config file name inside DataDirName.
	ConfigFileName = "config.yaml"

	// ExportsDirName holds exports requested with a relative directory.
	ExportsDirName = "exports"

	// AuditFileName is the MCP tool audit log inside DataDirName.
	AuditFileName = "audit.jsonl"
)

// Export file names
const (
	ExpressionFile = "expression.arrow"
	EigengenesFile = "eigengenes.csv"
	TraitsFile     = "traits.csv"
	ModulesFile    = "modules.csv"
	ManifestFile   = "manifest.json"
	TraceFile      = "trace.jsonl"
)
