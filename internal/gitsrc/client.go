// Package gitsrc fetches remote notebook repositories for export.
package gitsrc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"nbexport/internal/config"
	apperrors "nbexport/internal/errors"
	"nbexport/internal/logfields"
)

// Client clones notebook repositories into a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a Git client rooted at the given workspace directory.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir}
}

// Clone fetches the configured repository and returns the local path of the
// subtree to export (the clone root, or repo.Subdir within it).
func (c *Client) Clone(ctx context.Context, repo *config.RepoConfig) (string, error) {
	clonePath := filepath.Join(c.workspaceDir, "source")
	slog.Info("Cloning notebook repository", logfields.URL(repo.URL), slog.String("branch", repo.Branch))

	if err := os.RemoveAll(clonePath); err != nil {
		return "", fmt.Errorf("failed to remove existing clone directory: %w", err)
	}

	cloneOptions := &git.CloneOptions{URL: repo.URL}
	if repo.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		cloneOptions.SingleBranch = true
	}
	if repo.Depth > 0 {
		cloneOptions.Depth = repo.Depth
	}

	repository, err := git.PlainCloneContext(ctx, clonePath, false, cloneOptions)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CategoryGit, apperrors.SeverityFatal,
			"failed to clone repository").WithPath(repo.URL)
	}
	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository cloned", logfields.URL(repo.URL), slog.String("commit", ref.Hash().String()[:8]))
	}

	source := clonePath
	if repo.Subdir != "" {
		source = filepath.Join(clonePath, filepath.FromSlash(repo.Subdir))
		if info, err := os.Stat(source); err != nil || !info.IsDir() {
			return "", apperrors.New(apperrors.CategoryGit, apperrors.SeverityFatal,
				"configured subdir not found in clone").WithPath(repo.Subdir)
		}
	}
	return source, nil
}
