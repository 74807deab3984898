package gitsync_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/gitsync"
)

// newRemote builds a bare repository seeded with one commit on master, which
// stands in for the hosted publication repository.
func newRemote(t *testing.T) string {
	t.Helper()

	seed := t.TempDir()
	repo, err := git.PlainInit(seed, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(seed, "README.md"), []byte("news site\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "seed", Email: "seed@test", When: time.Now()},
	})
	require.NoError(t, err)

	remote := filepath.Join(t.TempDir(), "remote.git")
	_, err = git.PlainClone(remote, true, &git.CloneOptions{URL: seed})
	require.NoError(t, err)
	return remote
}

func testConfig(t *testing.T, remote string) gitsync.Config {
	t.Helper()
	return gitsync.Config{
		RemoteURL:   remote,
		Branch:      "master",
		LocalPath:   filepath.Join(t.TempDir(), "clone"),
		AuthorName:  "newsmapper bot",
		AuthorEmail: "bot@globonews.io",
	}
}

func TestOpenRequiresRemoteURL(t *testing.T) {
	_, err := gitsync.Open(context.Background(), gitsync.Config{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git.remote_url")
}

func TestOpenClonesThenReopens(t *testing.T) {
	cfg := testConfig(t, newRemote(t))

	repo, err := gitsync.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, cfg.LocalPath, repo.Path())
	assert.FileExists(t, filepath.Join(cfg.LocalPath, "README.md"))

	// Second open finds the existing clone and pulls instead of cloning.
	_, err = gitsync.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
}

func TestSyncCleanTreeIsNoOp(t *testing.T) {
	cfg := testConfig(t, newRemote(t))
	repo, err := gitsync.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	synced, err := repo.Sync(context.Background(), "nothing to do")
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestSyncCommitsAndPushes(t *testing.T) {
	cfg := testConfig(t, newRemote(t))
	repo, err := gitsync.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	dataDir := filepath.Join(cfg.LocalPath, "public", "data", "2025-08-04_10-30-00")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "geolocated_news.json"), []byte("[]\n"), 0o644))

	synced, err := repo.Sync(context.Background(), "Add geolocated news batch 2025-08-04_10-30-00")
	require.NoError(t, err)
	assert.True(t, synced)

	// A fresh clone from the remote sees the pushed batch.
	verify := filepath.Join(t.TempDir(), "verify")
	_, err = git.PlainClone(verify, false, &git.CloneOptions{URL: cfg.RemoteURL})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(verify, "public", "data", "2025-08-04_10-30-00", "geolocated_news.json"))

	// And a second sync with no further changes stays clean.
	synced, err = repo.Sync(context.Background(), "no changes")
	require.NoError(t, err)
	assert.False(t, synced)
}
