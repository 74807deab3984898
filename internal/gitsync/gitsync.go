package gitsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// Config holds everything needed to reach the publication repository. Token
// is read from the environment and never persisted.
type Config struct {
	RemoteURL   string
	Branch      string
	LocalPath   string
	Token       string
	AuthorName  string
	AuthorEmail string
}

// Repo wraps a local clone of the publication repository and implements
// pipeline.RemoteSync on it.
type Repo struct {
	cfg    Config
	repo   *git.Repository
	logger *zap.Logger
}

// Open prepares a fresh clone at cfg.LocalPath, or opens an existing one and
// pulls the branch up to date. It runs before any enrichment work so a
// broken publication target fails the run early.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Repo, error) {
	if cfg.RemoteURL == "" {
		return nil, &pipeline.ConfigurationError{Reason: "git.remote_url: publication repository URL is required"}
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}

	r := &Repo{cfg: cfg, logger: logger}

	repo, err := git.PlainOpen(cfg.LocalPath)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		logger.Info("cloning publication repository",
			zap.String("url", cfg.RemoteURL),
			zap.String("path", cfg.LocalPath),
		)
		repo, err = git.PlainCloneContext(ctx, cfg.LocalPath, false, &git.CloneOptions{
			URL:           cfg.RemoteURL,
			ReferenceName: plumbing.NewBranchReferenceName(cfg.Branch),
			SingleBranch:  true,
			Auth:          r.auth(),
		})
		if err != nil {
			return nil, fmt.Errorf("cloning %s: %w", cfg.RemoteURL, err)
		}
	case err != nil:
		return nil, fmt.Errorf("opening repository at %s: %w", cfg.LocalPath, err)
	default:
		if err := r.pull(ctx, repo); err != nil {
			return nil, err
		}
	}

	r.repo = repo
	return r, nil
}

// Path returns the local clone directory, the root the publisher writes
// under.
func (r *Repo) Path() string {
	return r.cfg.LocalPath
}

func (r *Repo) pull(ctx context.Context, repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
		Auth:          r.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pulling %s: %w", r.cfg.Branch, err)
	}
	return nil
}

// Sync stages everything, commits and pushes. A clean worktree returns
// (false, nil) so re-runs that produced identical files stay idempotent.
func (r *Repo) Sync(ctx context.Context, message string) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("staging changes: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading worktree status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	commit, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.cfg.AuthorName,
			Email: r.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	r.logger.Info("committed publication batch",
		zap.String("commit", commit.String()),
		zap.String("message", message),
	)

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		Auth:       r.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("pushing to origin: %w", err)
	}
	return true, nil
}

func (r *Repo) auth() transport.AuthMethod {
	if r.cfg.Token == "" {
		return nil
	}
	// GitHub accepts any username with a token over HTTPS.
	return &githttp.BasicAuth{Username: "oauth2", Password: r.cfg.Token}
}
