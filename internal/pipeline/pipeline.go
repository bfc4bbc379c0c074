// Package pipeline runs the per-file commit loop: change discovery, message
// synthesis, commit/push, and the Terraform reformat pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/worksonmyai/autocommit/internal/debug"
	"github.com/worksonmyai/autocommit/internal/git"
	"github.com/worksonmyai/autocommit/internal/message"
	"github.com/worksonmyai/autocommit/internal/ollama"
)

// Status is the terminal state of one commit attempt.
type Status string

const (
	StatusCommitted Status = "committed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// SkippedIgnoredReason is the outcome text for paths excluded by .gitignore.
const SkippedIgnoredReason = "File ignored by .gitignore"

// Outcome records the terminal state of one commit attempt for one path.
// Outcomes are appended in processing order and never mutated.
type Outcome struct {
	Path    string
	Status  Status
	Message string
	Detail  string
}

// Repository is the slice of git operations the pipeline needs.
// Implemented by *git.Repo; tests substitute a mock.
type Repository interface {
	ChangedFiles() ([]string, error)
	Extract(path string) git.ChangeRecord
	CommitAndPush(path string, kind git.ChangeKind, message, remote string) error
	Root() string
}

// Pipeline processes changed files strictly sequentially. Files share the
// git index and branch tip, so there is exactly one actor at a time by
// construction.
type Pipeline struct {
	Repo    Repository
	Gen     ollama.Generator
	Remote  string
	Timeout time.Duration
	Out     io.Writer
}

// Run processes every candidate file and returns one or more outcomes per
// file. Per-file errors are converted into outcomes; no error escapes the
// loop except the fatal inability to list changes.
func (p *Pipeline) Run(ctx context.Context) ([]Outcome, error) {
	files, err := p.Repo.ChangedFiles()
	if err != nil {
		return nil, fmt.Errorf("collect changed files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(p.Out, "No changes to commit")
		return nil, nil
	}

	var outcomes []Outcome
	for _, path := range files {
		outcomes = append(outcomes, p.processFile(ctx, path)...)
	}
	return outcomes, nil
}

// processFile runs the full state machine for a single path.
func (p *Pipeline) processFile(ctx context.Context, path string) []Outcome {
	fmt.Fprintf(p.Out, "\nProcessing file: %s\n", path)

	rec := p.Repo.Extract(path)
	debug.Logf("change record for %s: kind=%s diff=%d bytes", path, rec.Kind, len(rec.Diff))
	if rec.Diff != "" {
		debug.Logf("diff for %s:\n%s", path, rec.Diff)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	msg, detail := message.Synthesize(genCtx, p.Gen, rec.Path, rec.Diff)
	cancel()

	fmt.Fprintf(p.Out, "Committing with message: %s\n", firstLine(msg))

	outcome := p.commit(rec, msg, detail)
	outcomes := []Outcome{outcome}

	if outcome.Status == StatusCommitted && isTerraformFile(path) {
		if o := p.reformat(rec.Path); o != nil {
			outcomes = append(outcomes, *o)
		}
	}
	return outcomes
}

// commit attempts the commit/push cycle and classifies the result.
// Ignored paths are an expected branch, not a failure. A synthesis error
// detail is carried on the outcome so the summary stays honest about
// fallback messages.
func (p *Pipeline) commit(rec git.ChangeRecord, msg, detail string) Outcome {
	err := p.Repo.CommitAndPush(rec.Path, rec.Kind, msg, p.Remote)
	switch {
	case errors.Is(err, git.ErrIgnored):
		return Outcome{Path: rec.Path, Status: StatusSkipped, Message: SkippedIgnoredReason}
	case err != nil:
		return Outcome{Path: rec.Path, Status: StatusFailed, Message: err.Error(), Detail: detail}
	default:
		return Outcome{Path: rec.Path, Status: StatusCommitted, Message: firstLine(msg), Detail: detail}
	}
}

// firstLine returns the first line of a multi-line commit message.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
