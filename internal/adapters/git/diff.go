package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// diffTreeOptions collapses exact-content renames and copies into single
// file-change entries instead of delete+add pairs. This materially changes
// file counts and is applied before changed-file paths or stats are read.
var diffTreeOptions = &object.DiffTreeOptions{
	DetectRenames:    true,
	RenameScore:      100,
	OnlyExactRenames: true,
}

// diffStats computes (insertions, deletions, changed files) between two tree
// snapshots. A nil from tree means the empty tree (root commits). Submodule
// changes are ignored.
//
// Failure policy: if the diff cannot be computed the commit degrades to zero
// insertions, zero deletions, and no changed files rather than aborting the
// traversal; if only the patch (line stats) fails, the changed-file list is
// kept and the counts degrade to zero.
func diffStats(ctx context.Context, from, to *object.Tree) (insertions, deletions int, changedFiles []string) {
	changes, err := object.DiffTreeWithOptions(ctx, from, to, diffTreeOptions)
	if err != nil {
		return 0, 0, nil
	}

	kept := make(object.Changes, 0, len(changes))
	for _, change := range changes {
		if isSubmodule(change) {
			continue
		}
		kept = append(kept, change)
		changedFiles = append(changedFiles, changedPath(change))
	}

	patch, err := kept.PatchContext(ctx)
	if err != nil {
		return 0, 0, changedFiles
	}
	for _, stat := range patch.Stats() {
		insertions += stat.Addition
		deletions += stat.Deletion
	}

	return insertions, deletions, changedFiles
}

// changedPath returns the post-change path of a file change: the new path
// for additions, modifications, renames, and copies, and the old path for
// deletions.
func changedPath(change *object.Change) string {
	if change.To.Name != "" {
		return change.To.Name
	}
	return change.From.Name
}

func isSubmodule(change *object.Change) bool {
	return change.From.TreeEntry.Mode == filemode.Submodule ||
		change.To.TreeEntry.Mode == filemode.Submodule
}
