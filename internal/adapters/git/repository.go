// Package git provides adapters for analyzing local Git repositories.
// This package implements the domain repository state machine using go-git/v5:
// a candidate path moves through Uninitialized -> Opened -> analyzed
// (domain.RepositoryHistory), and each transition consumes the prior state.
package git

import (
	"context"
	"fmt"
	"regexp"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitledger/gitledger/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Uninitialized is a validated repository path that has not been opened.
// It implements domain.UninitializedRepository.
type Uninitialized struct {
	identity domain.RepositoryIdentity
	logger   Logger
}

// NewRepository validates and canonicalizes the given path and returns the
// repository in its Uninitialized state. Returns domain.ErrInvalidPath if
// the path is not an existing directory.
func NewRepository(path string, log Logger) (*Uninitialized, error) {
	identity, err := domain.NewRepositoryIdentity(path)
	if err != nil {
		return nil, err
	}
	return &Uninitialized{identity: identity, logger: log}, nil
}

// Factory returns a domain.RepositoryFactory bound to the given logger.
func Factory(log Logger) domain.RepositoryFactory {
	return func(path string) (domain.UninitializedRepository, error) {
		return NewRepository(path, log)
	}
}

// Identity returns the identity derived at construction.
func (u *Uninitialized) Identity() domain.RepositoryIdentity {
	return u.identity
}

// Open opens the native repository at the canonical path and resolves HEAD.
// Returns domain.ErrNotARepository if the directory is not a git repository,
// or domain.ErrNoHead if it has no resolvable HEAD commit (empty repository).
func (u *Uninitialized) Open() (domain.OpenedRepository, error) {
	repo, err := gogit.PlainOpen(u.identity.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotARepository, u.identity.Path)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNoHead, u.identity.Path, err)
	}

	return &Opened{
		identity: u.identity,
		repo:     repo,
		head:     head.Hash(),
		logger:   u.logger,
	}, nil
}

// Opened is a repository with an acquired go-git handle and a resolved HEAD.
// It implements domain.OpenedRepository.
type Opened struct {
	identity domain.RepositoryIdentity
	repo     *gogit.Repository
	head     plumbing.Hash
	logger   Logger
}

// Identity returns the identity derived at construction.
func (o *Opened) Identity() domain.RepositoryIdentity {
	return o.identity
}

// Head returns the identifier of the HEAD commit.
func (o *Opened) Head() string {
	return o.head.String()
}

// Analyze traverses the commit graph from HEAD and produces the analyzed
// repository history. The remote URL is resolved from the "origin" remote
// when configured; its absence yields domain.NoRemoteURL rather than an error.
func (o *Opened) Analyze(ctx context.Context, authors domain.AuthorIdentityMap) (*domain.RepositoryHistory, error) {
	commits, err := newHistoryExtractor(o.repo, o.logger).extract(ctx, o.head, authors)
	if err != nil {
		return nil, err
	}

	return &domain.RepositoryHistory{
		Identity:  o.identity,
		RemoteURL: o.remoteURL(ctx),
		Commits:   commits,
	}, nil
}

// sshURLPattern matches SSH-style remote URLs like git@github.com:owner/repo.git.
var sshURLPattern = regexp.MustCompile(`^[\w.-]+@([\w.-]+):(.+)$`)

// remoteURL resolves the "origin" remote URL, normalizing SSH-style URLs
// (user@host:path) to their HTTPS equivalent.
func (o *Opened) remoteURL(ctx context.Context) string {
	remote, err := o.repo.Remote("origin")
	if err != nil {
		o.logger.Debug(ctx, "no origin remote configured", map[string]interface{}{
			"repository": o.identity.Name,
		})
		return domain.NoRemoteURL
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return domain.NoRemoteURL
	}

	return normalizeRemoteURL(urls[0])
}

// normalizeRemoteURL rewrites an SSH-style URL (user@host:path) to its HTTPS
// equivalent; other URLs pass through unchanged.
func normalizeRemoteURL(url string) string {
	if matches := sshURLPattern.FindStringSubmatch(url); len(matches) == 3 {
		return "https://" + matches[1] + "/" + matches[2]
	}
	return url
}
