// Package main is the entry point for the gitledger CLI application.
// gitledger extracts commit-history metadata from local Git repositories
// and loads it into a SQLite database.
package main

import (
	"github.com/gitledger/gitledger/cmd"
	"github.com/gitledger/gitledger/internal/adapters/git"
	"github.com/gitledger/gitledger/internal/adapters/logger"
	"github.com/gitledger/gitledger/internal/adapters/output"
	"github.com/gitledger/gitledger/internal/adapters/progress"
	"github.com/gitledger/gitledger/internal/adapters/store"
	"github.com/gitledger/gitledger/internal/domain"
	"github.com/gitledger/gitledger/internal/infrastructure/config"
	"github.com/gitledger/gitledger/internal/infrastructure/discovery"
	"github.com/gitledger/gitledger/internal/usecases"
)

func main() {
	// Wire up production dependencies
	deps := &cmd.Dependencies{
		LoggerFactory: func(level string) cmd.Logger {
			return logger.New(level)
		},

		ConfigLoader: func(path string) (*cmd.AppConfig, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				IgnoredRepositories: cfg.IgnoredRepositories,
				AuthorMap:           cfg.AuthorMap,
			}, nil
		},

		Discover: func(root string, recursive bool, maxDepth int, ignoredNames []string) ([]string, []string, error) {
			return discovery.Discover(root, discovery.Options{
				Recursive:           recursive,
				MaxDepth:            maxDepth,
				IgnoredRepositories: ignoredNames,
			})
		},

		StoreFactory: func(dbPath string, maxConns int) (domain.HistoryStore, error) {
			return store.NewSQLiteStore(dbPath, maxConns)
		},

		RepositoryFactory: func(log cmd.Logger) domain.RepositoryFactory {
			return git.Factory(log)
		},

		ReporterFactory: func() domain.ProgressReporter {
			if progress.Enabled() {
				return progress.NewBarReporter()
			}
			return progress.NewNopReporter()
		},

		IngestorFactory: func(
			repositories domain.RepositoryFactory,
			historyStore domain.HistoryStore,
			reporter domain.ProgressReporter,
			log cmd.Logger,
			workers int,
			authors domain.AuthorIdentityMap,
		) cmd.Ingestor {
			return usecases.NewIngestor(repositories, historyStore, reporter, log, workers, authors)
		},

		SummaryWriterFactory: func() cmd.SummaryWriter {
			return output.NewWriter()
		},
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}
