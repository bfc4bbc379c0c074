package git

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/worksonmyai/autocommit/internal/debug"
)

// ChangeKind classifies a file's relationship to the tracked history.
type ChangeKind string

const (
	KindModified  ChangeKind = "modified"
	KindUntracked ChangeKind = "untracked"
	KindAdded     ChangeKind = "added"
	KindDeleted   ChangeKind = "deleted"
	KindUnknown   ChangeKind = "unknown"
)

// NewFilePrefix marks the content of an untracked file passed to the message
// synthesizer in place of a diff.
const NewFilePrefix = "NEW_FILE:"

// NoChangesMarker is returned for tracked files whose diff is empty. The
// collector's filter should prevent this; the marker keeps the synthesizer
// total if it happens anyway.
const NoChangesMarker = "no changes in tracked file"

// editorMetadataDir is excluded from processing regardless of ignore rules.
const editorMetadataDir = ".vscode"

// ChangeRecord describes a single candidate file: its path, the kind of
// change and the diff (or content) the message is generated from.
// Immutable after creation.
type ChangeRecord struct {
	Path string
	Kind ChangeKind
	Diff string
}

// ChangedFiles returns the ordered, duplicate-free list of candidate paths:
// files with unstaged modifications, untracked files not excluded by ignore
// rules, and files already staged. Ordering is first-seen across the three
// source lists; duplicates keep their first occurrence.
func (r *Repo) ChangedFiles() ([]string, error) {
	modified, err := r.listGit("diff", "--name-only")
	if err != nil {
		return nil, err
	}
	untracked, err := r.listGit("ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	staged, err := r.listGit("diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}

	return mergeCandidates(modified, untracked, staged), nil
}

// mergeCandidates unions the source lists in order, dropping duplicates
// (first occurrence wins) and editor metadata paths.
func mergeCandidates(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, list := range lists {
		for _, f := range list {
			if f == "" || isEditorMetadata(f) {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	return files
}

// TrackedFiles returns every path tracked in the index, in git's order.
// Used as the manifest for README regeneration.
func (r *Repo) TrackedFiles() ([]string, error) {
	return r.listGit("ls-files")
}

// Extract determines the change kind and diff text for a single path.
// Subprocess or I/O failures degrade to an empty diff instead of
// propagating; the synthesizer then produces a degraded message.
func (r *Repo) Extract(path string) ChangeRecord {
	kind := r.classify(path)

	rec := ChangeRecord{Path: path, Kind: kind}
	switch kind {
	case KindUntracked:
		content, err := os.ReadFile(filepath.Join(r.repoRoot, path))
		if err != nil {
			debug.Logf("read untracked file %s: %v", path, err)
			return rec
		}
		rec.Diff = NewFilePrefix + path + "\n" + string(content)
	case KindUnknown:
		// Nothing on disk and nothing in the index; leave the diff empty.
	default:
		diff, err := runGitRaw(r.repoRoot, "diff", "--", path)
		if err != nil {
			debug.Logf("git diff %s: %v", path, err)
			return rec
		}
		if strings.TrimSpace(diff) == "" {
			rec.Diff = NoChangesMarker
			return rec
		}
		rec.Diff = diff
	}
	return rec
}

// classify maps a path to its change kind using the porcelain status code.
// Classification rule: untracked on disk → addition candidate; tracked but
// absent from disk → deletion; staged new file → added; otherwise modified.
func (r *Repo) classify(path string) ChangeKind {
	out, err := runGitRaw(r.repoRoot, "status", "--porcelain", "--untracked-files=all", "--", path)
	if err != nil {
		debug.Logf("git status %s: %v", path, err)
		return KindUnknown
	}
	if strings.TrimSpace(out) == "" {
		return KindUnknown
	}

	// First line's two-letter XY code: X = index state, Y = worktree state.
	code := out
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		code = out[:idx]
	}
	if len(code) < 2 {
		return KindUnknown
	}

	x, y := code[0], code[1]
	switch {
	case x == '?' && y == '?':
		return KindUntracked
	case x == 'D' || y == 'D':
		return KindDeleted
	case x == 'A':
		return KindAdded
	case x == 'M' || y == 'M' || x == 'R' || x == 'C':
		return KindModified
	default:
		return KindUnknown
	}
}

// listGit runs a git command and splits its output into non-empty lines.
func (r *Repo) listGit(args ...string) ([]string, error) {
	out, err := runGit(r.repoRoot, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var lines []string
	for line := range strings.SplitSeq(out, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// isEditorMetadata reports whether a path lives under the excluded editor
// metadata directory.
func isEditorMetadata(path string) bool {
	return path == editorMetadataDir || strings.HasPrefix(path, editorMetadataDir+"/")
}
