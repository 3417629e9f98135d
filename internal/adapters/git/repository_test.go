package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitledger/gitledger/internal/domain"
)

// testLogger is a minimal logger for testing that doesn't output anything.
type testLogger struct{}

func (testLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (testLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}

// initRepo creates an empty git repository in a temporary directory.
func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

// signature returns a deterministic commit signature at the given offset
// from a fixed base time, so commit-time ordering is stable.
func signature(name, email string, offset time.Duration) object.Signature {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return object.Signature{Name: name, Email: email, When: base.Add(offset)}
}

// commitFile writes (or overwrites) a file and commits it.
func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content, msg string, sig object.Signature) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit(msg, &gogit.CommitOptions{Author: &sig, Committer: &sig})
	require.NoError(t, err)
	return hash
}

func TestNewRepository_Success(t *testing.T) {
	dir, _ := initRepo(t)

	repo, err := NewRepository(dir, testLogger{})

	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, filepath.Base(repo.Identity().Path), repo.Identity().Name)
}

func TestNewRepository_PathDoesNotExist(t *testing.T) {
	repo, err := NewRepository(filepath.Join(t.TempDir(), "missing"), testLogger{})

	require.Error(t, err)
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestNewRepository_PathIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("not a directory"), 0o644))

	repo, err := NewRepository(file, testLogger{})

	require.Error(t, err)
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestOpen_NotARepository(t *testing.T) {
	repo, err := NewRepository(t.TempDir(), testLogger{})
	require.NoError(t, err)

	opened, err := repo.Open()

	require.Error(t, err)
	assert.Nil(t, opened)
	assert.ErrorIs(t, err, domain.ErrNotARepository)
}

func TestOpen_EmptyRepositoryHasNoHead(t *testing.T) {
	dir, _ := initRepo(t)

	repo, err := NewRepository(dir, testLogger{})
	require.NoError(t, err)

	opened, err := repo.Open()

	require.Error(t, err)
	assert.Nil(t, opened)
	assert.ErrorIs(t, err, domain.ErrNoHead)
}

func TestOpen_Success(t *testing.T) {
	dir, gitRepo := initRepo(t)
	head := commitFile(t, gitRepo, dir, "a.txt", "hello\n", "initial", signature("Ann", "ann@example.com", 0))

	repo, err := NewRepository(dir, testLogger{})
	require.NoError(t, err)

	opened, err := repo.Open()

	require.NoError(t, err)
	require.NotNil(t, opened)
	assert.Equal(t, head.String(), opened.Head())
}

func TestAnalyze_RemoteURL(t *testing.T) {
	tests := []struct {
		name      string
		remoteURL string
		want      string
	}{
		{
			name:      "https remote passes through",
			remoteURL: "https://github.com/example/project.git",
			want:      "https://github.com/example/project.git",
		},
		{
			name:      "ssh remote is normalized to https",
			remoteURL: "git@github.com:example/project.git",
			want:      "https://github.com/example/project.git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, gitRepo := initRepo(t)
			commitFile(t, gitRepo, dir, "a.txt", "hello\n", "initial", signature("Ann", "ann@example.com", 0))
			_, err := gitRepo.CreateRemote(&gitconfig.RemoteConfig{
				Name: "origin",
				URLs: []string{tt.remoteURL},
			})
			require.NoError(t, err)

			history := analyze(t, dir, nil)

			assert.Equal(t, tt.want, history.RemoteURL)
		})
	}
}

func TestAnalyze_NoRemoteYieldsSentinel(t *testing.T) {
	dir, gitRepo := initRepo(t)
	commitFile(t, gitRepo, dir, "a.txt", "hello\n", "initial", signature("Ann", "ann@example.com", 0))

	history := analyze(t, dir, nil)

	assert.Equal(t, domain.NoRemoteURL, history.RemoteURL)
}

func TestNormalizeRemoteURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"github ssh", "git@github.com:owner/repo.git", "https://github.com/owner/repo.git"},
		{"ssh without suffix", "git@gitlab.example.com:team/tool", "https://gitlab.example.com/team/tool"},
		{"https untouched", "https://github.com/owner/repo", "https://github.com/owner/repo"},
		{"http untouched", "http://git.local/repo.git", "http://git.local/repo.git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRemoteURL(tt.url))
		})
	}
}

// analyze runs the full state machine for a repository path.
func analyze(t *testing.T, dir string, authors domain.AuthorIdentityMap) *domain.RepositoryHistory {
	t.Helper()
	repo, err := NewRepository(dir, testLogger{})
	require.NoError(t, err)
	opened, err := repo.Open()
	require.NoError(t, err)
	history, err := opened.Analyze(context.Background(), authors)
	require.NoError(t, err)
	return history
}
