// Package domain defines the core business entities and interfaces for gitledger.
package domain

import (
	"context"
	"errors"
)

// Domain errors for repository analysis and persistence.
var (
	// ErrInvalidPath indicates the candidate path is not an existing,
	// resolvable directory.
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrNotARepository indicates the directory is not a valid git repository.
	ErrNotARepository = errors.New("not a git repository")

	// ErrNoHead indicates the repository has no resolvable HEAD commit,
	// typically because it is empty.
	ErrNoHead = errors.New("repository has no HEAD commit")

	// ErrTraversalFailed indicates the commit-graph walk itself failed.
	// Per-commit diff failures never surface this; they degrade to
	// zero-stat records instead.
	ErrTraversalFailed = errors.New("commit history traversal failed")

	// ErrPersistenceFailed indicates a schema, connection, or transaction
	// error while writing a repository's history.
	ErrPersistenceFailed = errors.New("persistence failed")
)

// UninitializedRepository is a validated repository path that has not been
// opened yet. Opening consumes it and is the only operation available.
type UninitializedRepository interface {
	// Identity returns the identity derived at construction.
	Identity() RepositoryIdentity

	// Open opens the native repository and resolves HEAD. Returns
	// ErrNotARepository or ErrNoHead on failure.
	Open() (OpenedRepository, error)
}

// OpenedRepository is a repository with an acquired native handle and a
// resolved HEAD commit. Analysis consumes it and produces the final
// RepositoryHistory; no operation can reach analysis without passing
// through Open first.
type OpenedRepository interface {
	// Identity returns the identity derived at construction.
	Identity() RepositoryIdentity

	// Head returns the identifier of the HEAD commit.
	Head() string

	// Analyze traverses the commit graph from HEAD and extracts commit
	// records, applying author-identity normalization. Returns
	// ErrTraversalFailed only if the walk itself fails; per-commit diff
	// failures degrade to zero-stat records.
	Analyze(ctx context.Context, authors AuthorIdentityMap) (*RepositoryHistory, error)
}

// RepositoryFactory constructs an UninitializedRepository for a candidate
// directory, validating and canonicalizing the path. Returns ErrInvalidPath
// when the path is not an existing directory.
type RepositoryFactory func(path string) (UninitializedRepository, error)

// HistoryStore persists extracted repository histories.
type HistoryStore interface {
	// EnsureSchema idempotently creates the storage schema. When clear is
	// set, all existing rows are removed before it returns. Must complete
	// before any analysis task starts.
	EnsureSchema(ctx context.Context, clear bool) error

	// StoreHistory writes one repository's history in a single transaction:
	// either all of its logs and changed files become durable, or none.
	// The repository row itself is registered insert-or-ignore by name, so
	// concurrent writers with the same name are safe.
	StoreHistory(ctx context.Context, history *RepositoryHistory) error

	// Close releases the underlying connections.
	Close() error
}

// Processing phases reported per repository. Purely observational; no
// feedback into control flow.
const (
	PhaseOpening   = "opening"
	PhaseAnalyzing = "analyzing"
	PhaseStoring   = "storing"
)

// ProgressReporter receives phase-labeled status events per repository and
// an overall completion count.
type ProgressReporter interface {
	// Begin announces the total number of candidate directories.
	Begin(total int)

	// Phase reports that the named repository entered the given phase.
	Phase(repository, phase string)

	// Done reports that one candidate directory finished (stored or skipped).
	Done(repository string)

	// Finish completes the report once all candidates are accounted for.
	Finish()
}
