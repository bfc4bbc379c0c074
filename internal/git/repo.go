// Package git provides git operations for autocommit.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/worksonmyai/autocommit/internal/debug"
)

// ErrIgnored reports that a path is excluded by .gitignore. It is a
// control-flow signal, not a hard failure: callers classify it as a skip.
var ErrIgnored = errors.New("file ignored by .gitignore")

// Repo represents a git repository with operations for staging, committing
// and pushing single files.
type Repo struct {
	repo     *git.Repository
	workDir  string
	repoRoot string
}

// NewRepo creates a new Repo for the given working directory.
// Returns an error if the directory is not inside a git repository.
func NewRepo(workDir string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(workDir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open git repo at %s: %w", workDir, err)
	}

	root, err := runGit(workDir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("git rev-parse --show-toplevel at %s: %w", workDir, err)
	}

	return &Repo{repo: r, workDir: workDir, repoRoot: root}, nil
}

// Root returns the repository root directory.
func (r *Repo) Root() string {
	return r.repoRoot
}

// CurrentBranch returns the name of the current branch.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}
	return head.Name().Short(), nil
}

// IsIgnored reports whether the path is excluded by ignore rules.
// The check runs before any mutating operation so that skips never have to
// be sniffed out of a failed command's message text.
func (r *Repo) IsIgnored(path string) (bool, error) {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = r.repoRoot

	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("git check-ignore %s: %w", path, err)
}

// Add stages a single file for commit.
func (r *Repo) Add(file string) error {
	if err := validateRelativePath(file); err != nil {
		return fmt.Errorf("git add %s: %w", file, err)
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}
	if _, err := wt.Add(file); err != nil {
		return fmt.Errorf("git add %s: %w", file, err)
	}
	return nil
}

// Remove stages a file deletion for commit.
func (r *Repo) Remove(file string) error {
	if err := validateRelativePath(file); err != nil {
		return fmt.Errorf("git rm %s: %w", file, err)
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}
	if _, err := wt.Remove(file); err != nil {
		return fmt.Errorf("git rm %s: %w", file, err)
	}
	return nil
}

// Commit creates a commit with the given message.
// Returns nil if there are no staged changes.
func (r *Repo) Commit(message string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	hasStagedChanges := false
	for _, s := range status {
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			hasStagedChanges = true
			break
		}
	}
	if !hasStagedChanges {
		return nil
	}

	sig := r.commitSignature()
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: sig,
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Push pushes the given branch to the given remote.
func (r *Repo) Push(remote, branch string) error {
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := r.repo.Push(&git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s to %s: %w", branch, remote, err)
	}
	return nil
}

// CommitAndPush stages a single file, commits it with the given message and
// pushes the current branch to the configured remote.
//
// Ignored paths yield ErrIgnored before anything is staged. A failed push
// does not roll back the local commit; the commit persists and the error is
// reported to the caller.
func (r *Repo) CommitAndPush(path string, kind ChangeKind, message, remote string) error {
	ignored, err := r.IsIgnored(path)
	if err != nil {
		return err
	}
	if ignored {
		return fmt.Errorf("%s: %w", path, ErrIgnored)
	}

	if kind == KindDeleted {
		err = r.Remove(path)
	} else {
		err = r.Add(path)
	}
	if err != nil {
		return err
	}

	if err := r.Commit(message); err != nil {
		return err
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		return err
	}

	debug.Logf("pushing %s to %s/%s", path, remote, branch)
	return r.Push(remote, branch)
}

// commitSignature reads user.name and user.email from git config
// (including global/system config), falling back to defaults.
func (r *Repo) commitSignature() *object.Signature {
	name := "autocommit"
	email := "autocommit@localhost"

	// ConfigScoped merges system + global + local config, unlike Config()
	// which only reads .git/config.
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}

	return &object.Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
}

// validateRelativePath ensures a file path is relative and does not traverse
// outside the repository via ".." components.
func validateRelativePath(path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute path not allowed: %s", path)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed: %s", path)
	}
	return nil
}

// IsInsideRepo checks if the given directory is inside a git repository,
// walking up parent directories to find a .git folder.
func IsInsideRepo(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	return err == nil
}

// runGit executes a git command in dir and returns its trimmed stdout.
func runGit(dir string, args ...string) (string, error) {
	out, err := runGitRaw(dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runGitRaw executes a git command in dir and returns stdout verbatim.
// Used where leading whitespace is significant (porcelain status, diffs).
func runGitRaw(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
