package git

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/gitledger/gitledger/internal/domain"
)

// historyExtractor drives the commit-graph traversal for one repository and
// turns commits into domain.CommitRecord values.
type historyExtractor struct {
	repo   *gogit.Repository
	logger Logger
}

func newHistoryExtractor(repo *gogit.Repository, log Logger) *historyExtractor {
	return &historyExtractor{repo: repo, logger: log}
}

// extract walks the commit graph from head in commit-time order (newest
// first) and returns one record per reachable non-merge commit with a
// resolvable tree. Merge commits are walked over but never emitted. The
// traversal order is deterministic for a fixed repository state.
func (e *historyExtractor) extract(
	ctx context.Context,
	head plumbing.Hash,
	authors domain.AuthorIdentityMap,
) ([]domain.CommitRecord, error) {
	headCommit, err := e.repo.CommitObject(head)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving HEAD commit: %v", domain.ErrTraversalFailed, err)
	}

	var records []domain.CommitRecord
	iter := object.NewCommitIterCTime(headCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		// Merge commits are excluded entirely from the output.
		if c.NumParents() >= 2 {
			return nil
		}
		// Commits whose tree cannot be resolved are excluded.
		if _, treeErr := c.Tree(); treeErr != nil {
			e.logger.Warn(ctx, "skipping commit with unresolvable tree", map[string]interface{}{
				"commit": c.Hash.String(),
			})
			return nil
		}
		records = append(records, e.record(ctx, c, authors))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTraversalFailed, err)
	}

	return records, nil
}

// record builds the commit record for a single non-merge commit.
func (e *historyExtractor) record(
	ctx context.Context,
	c *object.Commit,
	authors domain.AuthorIdentityMap,
) domain.CommitRecord {
	parentHash := ""
	if c.NumParents() > 0 {
		parentHash = c.ParentHashes[0].String()
	}

	insertions, deletions, changedFiles := e.diffAgainstFirstParent(ctx, c)
	name, email := authors.Resolve(c.Author.Name, c.Author.Email)

	return domain.CommitRecord{
		Hash:         c.Hash.String(),
		ParentHash:   parentHash,
		AuthorName:   name,
		AuthorEmail:  email,
		CommitTime:   c.Committer.When.Unix(),
		Summary:      summary(c.Message),
		Insertions:   insertions,
		Deletions:    deletions,
		ChangedFiles: changedFiles,
	}
}

// diffAgainstFirstParent resolves the commit's tree and its first parent's
// tree and delegates to the diff-stats computation. A root commit, or a
// commit whose parent tree cannot be resolved, is diffed against the empty
// tree.
func (e *historyExtractor) diffAgainstFirstParent(
	ctx context.Context,
	c *object.Commit,
) (insertions, deletions int, changedFiles []string) {
	tree, err := c.Tree()
	if err != nil {
		// Callers only hand us commits with resolvable trees; degrade anyway.
		return 0, 0, nil
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		if parent, parentErr := c.Parent(0); parentErr == nil {
			parentTree, _ = parent.Tree()
		}
	}

	return diffStats(ctx, parentTree, tree)
}

// summary returns the first line of a commit message.
func summary(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimRight(message[:idx], "\r")
	}
	return message
}
