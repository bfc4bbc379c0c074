package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/worksonmyai/autocommit/internal/debug"
	"github.com/worksonmyai/autocommit/internal/git"
)

// FormatMessage is the fixed commit message for formatter-driven changes.
const FormatMessage = "style: format terraform files"

// isTerraformFile reports whether the path is an infrastructure-as-code
// file handled by the post-format hook.
func isTerraformFile(path string) bool {
	return strings.HasSuffix(path, ".tf")
}

// reformat runs terraform fmt on an already-committed file and, when the
// formatter changed the content, performs a second commit/push cycle with a
// fixed message. Returns nil when the file is unchanged.
//
// A formatter failure is recorded against this file but does not affect the
// already-completed first commit.
func (p *Pipeline) reformat(path string) *Outcome {
	abs := filepath.Join(p.Repo.Root(), path)

	before, err := os.ReadFile(abs)
	if err != nil {
		return &Outcome{Path: path, Status: StatusFailed, Message: fmt.Sprintf("read before format: %v", err)}
	}

	if err := runTerraformFmt(p.Repo.Root(), path); err != nil {
		return &Outcome{Path: path, Status: StatusFailed, Message: fmt.Sprintf("terraform fmt: %v", err)}
	}

	after, err := os.ReadFile(abs)
	if err != nil {
		return &Outcome{Path: path, Status: StatusFailed, Message: fmt.Sprintf("read after format: %v", err)}
	}

	if bytes.Equal(before, after) {
		debug.Logf("terraform fmt left %s unchanged", path)
		return nil
	}

	if debug.Enabled() {
		debug.Logf("format delta for %s:\n%s", path,
			udiff.Unified("a/"+path, "b/"+path, string(before), string(after)))
	}

	fmt.Fprintf(p.Out, "Formatted terraform file: %s\n", path)

	if err := p.Repo.CommitAndPush(path, git.KindModified, FormatMessage, p.Remote); err != nil {
		return &Outcome{Path: path, Status: StatusFailed, Message: err.Error()}
	}
	return &Outcome{Path: path, Status: StatusCommitted, Message: FormatMessage}
}

// runTerraformFmt rewrites the file in place with terraform fmt.
func runTerraformFmt(dir, path string) error {
	cmd := exec.Command("terraform", "fmt", path)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
