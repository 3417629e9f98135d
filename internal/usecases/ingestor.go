// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill the
// ingestion use case.
package usecases

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitledger/gitledger/internal/domain"
)

// Logger defines the logging interface required by the ingestor.
// This abstracts the logger dependency to avoid coupling to a specific
// implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Ingestor fans repository analysis out over a bounded pool of workers and
// drives each candidate directory through open -> analyze -> persist. Every
// task is self-contained: a failure at any stage skips only that directory
// and never affects sibling tasks.
type Ingestor struct {
	repositories domain.RepositoryFactory
	store        domain.HistoryStore
	progress     domain.ProgressReporter
	logger       Logger

	// workers bounds the number of concurrently running analysis tasks.
	workers int

	// authors is shared read-only across tasks and never mutated after
	// construction.
	authors domain.AuthorIdentityMap
}

// NewIngestor creates a new Ingestor with the given dependencies.
// A workers value below one is raised to one.
func NewIngestor(
	repositories domain.RepositoryFactory,
	store domain.HistoryStore,
	reporter domain.ProgressReporter,
	log Logger,
	workers int,
	authors domain.AuthorIdentityMap,
) *Ingestor {
	if workers < 1 {
		workers = 1
	}
	return &Ingestor{
		repositories: repositories,
		store:        store,
		progress:     reporter,
		logger:       log,
		workers:      workers,
		authors:      authors,
	}
}

// Run processes every candidate directory and returns the aggregated batch
// summary once all tasks have completed. Tasks may interleave and finish in
// any order; the summary preserves candidate order. Tasks run to natural
// completion: there is no per-task timeout or cancellation.
func (i *Ingestor) Run(ctx context.Context, dirs []string) *domain.BatchSummary {
	start := time.Now()

	i.logger.Info(ctx, "starting ingestion", map[string]interface{}{
		"directories": len(dirs),
		"workers":     i.workers,
	})
	i.progress.Begin(len(dirs))

	outcomes := make([]domain.IngestionOutcome, len(dirs))
	var group errgroup.Group
	group.SetLimit(i.workers)
	for idx, dir := range dirs {
		idx, dir := idx, dir
		group.Go(func() error {
			outcomes[idx] = i.processDirectory(ctx, dir)
			i.progress.Done(dir)
			return nil
		})
	}
	// Tasks never return errors; Wait is purely the join barrier.
	_ = group.Wait()
	i.progress.Finish()

	summary := domain.NewBatchSummary(outcomes, time.Since(start))
	i.logger.Info(ctx, "ingestion complete", map[string]interface{}{
		"stored":  len(summary.Stored),
		"skipped": len(summary.Skipped),
		"elapsed": summary.Elapsed.String(),
	})
	return summary
}

// processDirectory drives one candidate directory through the full
// pipeline. Any error terminates only this directory's processing and is
// recorded as its skip reason.
func (i *Ingestor) processDirectory(ctx context.Context, dir string) domain.IngestionOutcome {
	uninitialized, err := i.repositories(dir)
	if err != nil {
		i.logger.Debug(ctx, "skipping invalid path", map[string]interface{}{
			"path": dir, "reason": err.Error(),
		})
		return domain.IngestionOutcome{Path: dir, Err: err}
	}

	identity := uninitialized.Identity()
	i.progress.Phase(identity.Name, domain.PhaseOpening)
	opened, err := uninitialized.Open()
	if err != nil {
		i.logger.Debug(ctx, "skipping unopenable directory", map[string]interface{}{
			"path": dir, "reason": err.Error(),
		})
		return domain.IngestionOutcome{Path: dir, Identity: &identity, Err: err}
	}

	i.progress.Phase(identity.Name, domain.PhaseAnalyzing)
	history, err := opened.Analyze(ctx, i.authors)
	if err != nil {
		i.logger.Warn(ctx, "analysis failed", map[string]interface{}{
			"path": dir, "reason": err.Error(),
		})
		return domain.IngestionOutcome{Path: dir, Identity: &identity, Err: err}
	}

	i.progress.Phase(identity.Name, domain.PhaseStoring)
	if err := i.store.StoreHistory(ctx, history); err != nil {
		i.logger.Error(ctx, "persistence failed", err, map[string]interface{}{
			"path": dir,
		})
		return domain.IngestionOutcome{Path: dir, Identity: &identity, Err: err}
	}

	i.logger.Debug(ctx, "repository stored", map[string]interface{}{
		"repository": identity.Name,
		"commits":    len(history.Commits),
	})
	return domain.IngestionOutcome{
		Path:        dir,
		Identity:    &identity,
		CommitCount: len(history.Commits),
	}
}
