// Package publish pushes a built site tree to its two destinations: the
// hosted-pages branch and the object-storage bucket. The sequence is
// fail-fast; a failed step aborts the rest of the run and leaves the artifact
// on disk for retry.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	appcfg "github.com/inkpress/inkpress/internal/config"
	ierrors "github.com/inkpress/inkpress/internal/errors"
	"github.com/inkpress/inkpress/internal/logfields"
)

// committerName appears on pages-branch commits.
const committerName = "inkpress"

// PagesPublisher mirrors the output tree onto a dedicated git branch.
type PagesPublisher struct {
	cfg *appcfg.PagesConfig
}

// NewPagesPublisher constructs a publisher for the configured pages branch.
func NewPagesPublisher(cfg *appcfg.PagesConfig) *PagesPublisher {
	return &PagesPublisher{cfg: cfg}
}

// Publish replaces the branch contents with outputDir and pushes.
// An unchanged tree produces no commit and no push.
func (p *PagesPublisher) Publish(ctx context.Context, outputDir, message string) error {
	workDir, err := os.MkdirTemp("", "inkpress-pages-")
	if err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}
	defer os.RemoveAll(workDir)

	repo, err := p.cloneOrInit(ctx, workDir)
	if err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}

	if err := replaceWorktree(workDir, outputDir); err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}

	status, err := wt.Status()
	if err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}
	if status.IsClean() {
		slog.Info("Pages branch already up to date", logfields.Branch(p.cfg.Branch))
		return nil
	}

	commit, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  committerName,
			Email: committerName + "@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}

	branchRef := plumbing.NewBranchReferenceName(p.cfg.Branch)
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{config.RefSpec(branchRef + ":" + branchRef)},
		Auth:       p.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return ierrors.PagesPushError(p.cfg.Branch, err)
	}

	slog.Info("Pages branch published",
		logfields.Branch(p.cfg.Branch),
		slog.String("commit", commit.String()[:8]))
	return nil
}

// cloneOrInit clones the pages branch, or initializes a fresh repository
// when the remote is empty or the branch does not exist yet.
func (p *PagesPublisher) cloneOrInit(ctx context.Context, workDir string) (*git.Repository, error) {
	branchRef := plumbing.NewBranchReferenceName(p.cfg.Branch)

	repo, err := git.PlainCloneContext(ctx, workDir, false, &git.CloneOptions{
		URL:           p.cfg.RemoteURL,
		ReferenceName: branchRef,
		SingleBranch:  true,
		Depth:         1,
		Auth:          p.auth(),
	})
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, transport.ErrEmptyRemoteRepository) && !errors.Is(err, plumbing.ErrReferenceNotFound) && !errors.Is(err, git.NoMatchingRefSpecError{}) {
		return nil, fmt.Errorf("clone pages branch: %w", err)
	}

	slog.Debug("Pages branch missing, initializing", logfields.Branch(p.cfg.Branch))
	repo, err = git.PlainInit(workDir, false)
	if err != nil {
		return nil, fmt.Errorf("init pages repository: %w", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{p.cfg.RemoteURL},
	}); err != nil {
		return nil, fmt.Errorf("add origin remote: %w", err)
	}
	// Point HEAD at the pages branch so the first commit lands there.
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); err != nil {
		return nil, fmt.Errorf("set HEAD to pages branch: %w", err)
	}
	return repo, nil
}

func (p *PagesPublisher) auth() transport.AuthMethod {
	if p.cfg.Token == "" {
		return nil
	}
	username := p.cfg.Username
	if username == "" {
		username = committerName
	}
	return &githttp.BasicAuth{Username: username, Password: p.cfg.Token}
}

// replaceWorktree deletes everything except .git and copies the output tree
// into the worktree.
func replaceWorktree(workDir, outputDir string) error {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() == git.GitDirName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(workDir, entry.Name())); err != nil {
			return err
		}
	}

	return filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(workDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
}
