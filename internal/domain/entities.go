// Package domain defines the core business entities and interfaces for gitledger.
// This package contains no external dependencies and represents the innermost layer
// of the application.
package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sentinel values substituted when a commit carries no author identity or the
// repository has no "origin" remote. Commits are never dropped for missing
// metadata.
const (
	NoAuthorName  = "(no author name)"
	NoAuthorEmail = "(no author email)"
	NoRemoteURL   = "(no remote)"
)

// RepositoryIdentity identifies one local repository. It is derived once from
// the filesystem path and immutable afterward.
type RepositoryIdentity struct {
	// Name is the final component of the canonical path.
	Name string

	// Path is the canonical (absolute, symlink-resolved) directory path.
	Path string
}

// NewRepositoryIdentity derives an identity from a filesystem path.
// Returns ErrInvalidPath if the path does not exist, is not a directory,
// or has no resolvable final component.
func NewRepositoryIdentity(path string) (RepositoryIdentity, error) {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return RepositoryIdentity{}, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}

	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return RepositoryIdentity{}, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return RepositoryIdentity{}, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
	if !info.IsDir() {
		return RepositoryIdentity{}, fmt.Errorf("%w: not a directory: %s", ErrInvalidPath, path)
	}

	name := filepath.Base(canonical)
	if name == "" || name == string(filepath.Separator) || name == "." {
		return RepositoryIdentity{}, fmt.Errorf("%w: no resolvable name: %s", ErrInvalidPath, path)
	}

	return RepositoryIdentity{Name: name, Path: canonical}, nil
}

// CommitRecord is the extracted metadata for a single non-merge commit.
type CommitRecord struct {
	// Hash is the full commit identifier.
	Hash string

	// ParentHash is the first parent's identifier, or empty for root commits.
	ParentHash string

	// AuthorName is the author display name after identity normalization.
	AuthorName string

	// AuthorEmail is the raw author email, never rewritten by normalization.
	AuthorEmail string

	// CommitTime is the commit timestamp in unix epoch seconds.
	CommitTime int64

	// Summary is the first line of the commit message.
	Summary string

	// Insertions and Deletions are the line counts against the first parent
	// (or the empty tree for root commits).
	Insertions int
	Deletions  int

	// ChangedFiles lists changed paths with exact renames and copies
	// collapsed into a single entry.
	ChangedFiles []string
}

// IsRoot reports whether the commit has no parent.
func (c CommitRecord) IsRoot() bool {
	return c.ParentHash == ""
}

// RepositoryHistory is the analyzed state of a repository: its identity, the
// normalized origin remote URL (or NoRemoteURL), and the ordered commit
// records extracted from its graph.
type RepositoryHistory struct {
	Identity  RepositoryIdentity
	RemoteURL string
	Commits   []CommitRecord
}

// AuthorIdentityMap maps an author email to a canonical display name. It is
// supplied once per run and read-only during analysis.
type AuthorIdentityMap map[string]string

// Resolve returns the display name and email for the given raw author
// identity, substituting sentinels for missing values and applying the
// mapping when the email is present in the map. The email itself is never
// rewritten.
func (m AuthorIdentityMap) Resolve(rawName, rawEmail string) (name, email string) {
	name = rawName
	if name == "" {
		name = NoAuthorName
	}
	email = rawEmail
	if email == "" {
		email = NoAuthorEmail
	}
	if mapped, ok := m[rawEmail]; ok && rawEmail != "" {
		name = mapped
	}
	return name, email
}

// IngestionOutcome is the result of processing one candidate directory.
// A directory is stored when Err is nil and skipped otherwise; every
// candidate appears in exactly one of the two.
type IngestionOutcome struct {
	// Path is the candidate directory as supplied by discovery.
	Path string

	// Identity is set once the repository was successfully validated.
	Identity *RepositoryIdentity

	// CommitCount is the number of commit records stored.
	CommitCount int

	// Err is the reason the directory was skipped, nil on success.
	Err error
}

// Stored reports whether the directory was successfully analyzed and persisted.
func (o IngestionOutcome) Stored() bool {
	return o.Err == nil
}

// StoredRepository is a summary entry for one persisted repository.
type StoredRepository struct {
	Name        string
	CommitCount int
}

// SkippedDirectory is a summary entry for one directory that could not be
// stored, with enough context for an operator to investigate.
type SkippedDirectory struct {
	Path   string
	Reason error
}

// BatchSummary aggregates the outcomes of one ingestion run.
type BatchSummary struct {
	Stored  []StoredRepository
	Skipped []SkippedDirectory
	Elapsed time.Duration
}

// NewBatchSummary builds a summary from per-directory outcomes, preserving
// outcome order.
func NewBatchSummary(outcomes []IngestionOutcome, elapsed time.Duration) *BatchSummary {
	summary := &BatchSummary{Elapsed: elapsed}
	for _, o := range outcomes {
		if o.Stored() {
			summary.Stored = append(summary.Stored, StoredRepository{
				Name:        o.Identity.Name,
				CommitCount: o.CommitCount,
			})
			continue
		}
		summary.Skipped = append(summary.Skipped, SkippedDirectory{
			Path:   o.Path,
			Reason: o.Err,
		})
	}
	return summary
}
