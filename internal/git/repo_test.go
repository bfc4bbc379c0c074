package git

import (
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
)

// setupTestRepo creates a repository with one initial commit.
func setupTestRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	cfg, err := r.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@test.com"
	require.NoError(t, r.SetConfig(cfg))

	writeAndCommit(t, dir, r, "README.md", "# Test\n", "Initial commit")

	return dir, r
}

func writeAndCommit(t *testing.T, dir string, r *gogit.Repository, file, content, msg string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(file)
	require.NoError(t, err)
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// addBareRemote creates a bare repository and registers it as origin.
func addBareRemote(t *testing.T, r *gogit.Repository) string {
	t.Helper()

	bare := t.TempDir()
	_, err := gogit.PlainInit(bare, true)
	require.NoError(t, err)

	_, err = r.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{bare},
	})
	require.NoError(t, err)
	return bare
}

func TestNewRepo_NotARepository(t *testing.T) {
	_, err := NewRepo(t.TempDir())
	assert.Error(t, err)
}

func TestCurrentBranch(t *testing.T) {
	dir, _ := setupTestRepo(t)

	repo, err := NewRepo(dir)
	require.NoError(t, err)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
}

func TestIsIgnored(t *testing.T) {
	dir, _ := setupTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("secrets.env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.env"), []byte("TOKEN=x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	repo, err := NewRepo(dir)
	require.NoError(t, err)

	ignored, err := repo.IsIgnored("secrets.env")
	require.NoError(t, err)
	assert.True(t, ignored)

	ignored, err = repo.IsIgnored("main.go")
	require.NoError(t, err)
	assert.False(t, ignored)
}

func TestCommitAndPush_IgnoredFile(t *testing.T) {
	dir, _ := setupTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("secrets.env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.env"), []byte("TOKEN=x\n"), 0o644))

	repo, err := NewRepo(dir)
	require.NoError(t, err)

	err = repo.CommitAndPush("secrets.env", KindUntracked, "feat: add new file", "origin")
	assert.ErrorIs(t, err, ErrIgnored)
}

func TestCommitAndPush_NewFile(t *testing.T) {
	dir, r := setupTestRepo(t)
	bare := addBareRemote(t, r)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature.go"), []byte("package feature\n"), 0o644))

	repo, err := NewRepo(dir)
	require.NoError(t, err)

	err = repo.CommitAndPush("feature.go", KindUntracked, "feat: add new file", "origin")
	require.NoError(t, err)

	// The commit must exist on the remote branch.
	remote, err := gogit.PlainOpen(bare)
	require.NoError(t, err)
	ref, err := remote.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)
	commit, err := remote.CommitObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, "feat: add new file", commit.Message)
}

func TestCommitAndPush_DeletedFile(t *testing.T) {
	dir, r := setupTestRepo(t)
	addBareRemote(t, r)
	writeAndCommit(t, dir, r, "old.go", "package old\n", "add old.go")

	require.NoError(t, os.Remove(filepath.Join(dir, "old.go")))

	repo, err := NewRepo(dir)
	require.NoError(t, err)

	err = repo.CommitAndPush("old.go", KindDeleted, "chore: remove old.go", "origin")
	require.NoError(t, err)

	head, err := r.Head()
	require.NoError(t, err)
	commit, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "chore: remove old.go", commit.Message)

	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("old.go")
	assert.Error(t, err, "old.go must be gone from the committed tree")
}

func TestValidateRelativePath(t *testing.T) {
	assert.NoError(t, validateRelativePath("a/b.go"))
	assert.Error(t, validateRelativePath("/abs/path.go"))
	assert.Error(t, validateRelativePath("../escape.go"))
}
