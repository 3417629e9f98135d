// Package discovery enumerates candidate repository directories.
// Candidates are not validated as repositories here; the analysis pipeline
// decides what each directory actually is.
package discovery

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// Options controls the directory scan.
type Options struct {
	// Recursive walks the root instead of treating it as the single
	// candidate.
	Recursive bool

	// MaxDepth bounds the recursive walk, counted in path components below
	// the root. A depth of 1 scans only the root's direct children.
	MaxDepth int

	// IgnoredRepositories lists directory names to exclude; excluded names
	// are reported separately so the run summary can enumerate them.
	IgnoredRepositories []string
}

// Discover returns the candidate directories under root. In non-recursive
// mode the root itself is the only candidate. In recursive mode every
// directory within MaxDepth is a candidate, except .git directories (never
// descended into) and ignored names, which are collected into ignored.
func Discover(root string, opts Options) (dirs, ignored []string, err error) {
	if !opts.Recursive {
		return []string{root}, nil, nil
	}

	maxDepth := opts.MaxDepth
	if maxDepth < 1 {
		maxDepth = 1
	}

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// An unreadable root means there is nothing to scan at all;
			// anything deeper is skipped and the walk continues.
			if path == root {
				return walkErr
			}
			return fs.SkipDir
		}
		if !entry.IsDir() || path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if depth(rel) > maxDepth {
			return fs.SkipDir
		}

		name := entry.Name()
		if name == ".git" {
			return fs.SkipDir
		}
		if slices.Contains(opts.IgnoredRepositories, name) {
			ignored = append(ignored, name)
			return fs.SkipDir
		}

		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return dirs, ignored, nil
}

func depth(rel string) int {
	return strings.Count(rel, string(filepath.Separator)) + 1
}
