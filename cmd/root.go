// Package cmd provides the CLI commands for gitledger.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitledger/gitledger/internal/domain"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Ingestor runs the full ingestion batch and returns its summary.
type Ingestor interface {
	Run(ctx context.Context, dirs []string) *domain.BatchSummary
}

// SummaryWriter writes the final batch summary.
type SummaryWriter interface {
	WriteSummary(summary *domain.BatchSummary, ignored []string) error
}

// AppConfig holds the configuration-file values consumed by the command.
type AppConfig struct {
	// IgnoredRepositories lists directory names excluded from discovery.
	IgnoredRepositories []string

	// AuthorMap normalizes author display names by email.
	AuthorMap domain.AuthorIdentityMap
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger at the given level.
	LoggerFactory func(level string) Logger

	// ConfigLoader loads the configuration file at the given path.
	ConfigLoader func(path string) (*AppConfig, error)

	// Discover enumerates candidate directories under root.
	Discover func(root string, recursive bool, maxDepth int, ignoredNames []string) (dirs, ignored []string, err error)

	// StoreFactory opens the history store at the given database path with
	// a connection pool bounded to maxConns.
	StoreFactory func(dbPath string, maxConns int) (domain.HistoryStore, error)

	// RepositoryFactory creates the per-path repository constructor.
	RepositoryFactory func(log Logger) domain.RepositoryFactory

	// ReporterFactory creates the progress reporter.
	ReporterFactory func() domain.ProgressReporter

	// IngestorFactory creates the ingestion orchestrator.
	IngestorFactory func(
		repositories domain.RepositoryFactory,
		store domain.HistoryStore,
		reporter domain.ProgressReporter,
		log Logger,
		workers int,
		authors domain.AuthorIdentityMap,
	) Ingestor

	// SummaryWriterFactory creates the summary writer.
	SummaryWriterFactory func() SummaryWriter
}

// Command-line flags.
var (
	recursive    bool
	maxDepth     int
	databasePath string
	configPath   string
	clearDB      bool
	jobs         int
	verbose      bool
)

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for gitledger.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitledger <root>",
		Short: "Extract commit history from local Git repositories into SQLite",
		Long: `gitledger scans a directory tree for local Git repositories, extracts
per-commit metadata (author identity, insertions/deletions, changed files
with exact renames collapsed), and loads it into a SQLite database.

Directories that turn out not to be repositories, or that fail at any stage,
are skipped and enumerated in the summary; they never abort the batch.

Examples:
  # Ingest a single repository
  gitledger /path/to/repo

  # Scan all direct children of a directory with 8 workers
  gitledger --recursive /path/to/projects

  # Rebuild the database from scratch
  gitledger --recursive --clear /path/to/projects`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, deps)
		},
	}

	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"Recursively scan the root directory for repositories")
	rootCmd.Flags().IntVarP(&maxDepth, "max-depth", "m", 1,
		"Max depth of the recursive scan")
	rootCmd.Flags().StringVarP(&databasePath, "database", "d", "repositories.db",
		"Path to the SQLite database")
	rootCmd.Flags().StringVarP(&configPath, "config", "f", "config.toml",
		"Path to the TOML configuration file")
	rootCmd.Flags().BoolVarP(&clearDB, "clear", "c", false,
		"Delete all records from the database before scanning")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", 8,
		"Number of concurrent analysis workers")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	return rootCmd
}

// runIngest executes the ingestion batch with injected dependencies.
func runIngest(cmd *cobra.Command, args []string, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	log := deps.LoggerFactory(level)

	log.Info(ctx, "starting gitledger", map[string]interface{}{
		"root":      args[0],
		"recursive": recursive,
		"max_depth": maxDepth,
		"database":  databasePath,
		"jobs":      jobs,
	})

	cfg, err := deps.ConfigLoader(configPath)
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, map[string]interface{}{
			"path": configPath,
		})
		return fmt.Errorf("configuration error: %w", err)
	}

	dirs, ignored, err := deps.Discover(args[0], recursive, maxDepth, cfg.IgnoredRepositories)
	if err != nil {
		log.Error(ctx, "failed to discover directories", err, map[string]interface{}{
			"root": args[0],
		})
		return fmt.Errorf("discovery error: %w", err)
	}

	store, err := deps.StoreFactory(databasePath, jobs)
	if err != nil {
		log.Error(ctx, "failed to open database", err, map[string]interface{}{
			"database": databasePath,
		})
		return fmt.Errorf("database error: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close database", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	// Schema ensure (and the optional clear) must complete before any
	// analysis task starts; a failure here is fatal to the whole run.
	if err := store.EnsureSchema(ctx, clearDB); err != nil {
		log.Error(ctx, "failed to prepare database schema", err, nil)
		return fmt.Errorf("database error: %w", err)
	}

	ingestor := deps.IngestorFactory(
		deps.RepositoryFactory(log), store, deps.ReporterFactory(), log, jobs, cfg.AuthorMap,
	)
	summary := ingestor.Run(ctx, dirs)

	if err := deps.SummaryWriterFactory().WriteSummary(summary, ignored); err != nil {
		log.Error(ctx, "failed to write summary", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
