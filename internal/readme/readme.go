// Package readme regenerates project documentation from the tracked-file
// manifest using the model.
package readme

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/tidwall/gjson"

	"github.com/worksonmyai/autocommit/internal/debug"
	"github.com/worksonmyai/autocommit/internal/git"
	"github.com/worksonmyai/autocommit/internal/message"
	"github.com/worksonmyai/autocommit/internal/ollama"
)

// CommitMessage is the fixed commit message for regenerated documentation.
const CommitMessage = "docs: regenerate README"

// Repository is the slice of git operations the README pipeline needs.
// Implemented by *git.Repo; tests substitute a mock.
type Repository interface {
	TrackedFiles() ([]string, error)
	CommitAndPush(path string, kind git.ChangeKind, message, remote string) error
	Root() string
}

// Regenerator runs the documentation pipeline: manifest → model → README
// file → commit/push.
type Regenerator struct {
	Repo   Repository
	Gen    ollama.Generator
	Remote string
	File   string
	Out    io.Writer
}

// Run regenerates the README and commits it. Unlike the per-file commit
// loop, a failure here is fatal to the run: there is only one step.
func (r *Regenerator) Run(ctx context.Context) error {
	manifest, err := r.Repo.TrackedFiles()
	if err != nil {
		return fmt.Errorf("read file manifest: %w", err)
	}
	if len(manifest) == 0 {
		return fmt.Errorf("repository tracks no files")
	}

	raw, err := r.Gen.Generate(ctx, buildPrompt(filepath.Base(r.Repo.Root()), manifest), true)
	if err != nil {
		return fmt.Errorf("generate README: %w", err)
	}

	content := extractContent(raw)
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("model returned empty README content")
	}

	r.preview(content)

	path := filepath.Join(r.Repo.Root(), r.File)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.File, err)
	}

	if err := r.Repo.CommitAndPush(r.File, git.KindModified, CommitMessage, r.Remote); err != nil {
		return fmt.Errorf("commit %s: %w", r.File, err)
	}

	fmt.Fprintf(r.Out, "Regenerated %s\n", r.File)
	return nil
}

// extractContent pulls readme_content out of the model response, reusing
// the tolerant cleanup chain (reasoning trace, fences). When the response
// is not the expected JSON object, the cleaned text itself is the content.
func extractContent(raw string) string {
	cleaned := message.Clean(raw)

	if gjson.Valid(cleaned) {
		if res := gjson.Parse(cleaned); res.IsObject() {
			if c := res.Get("readme_content"); c.Exists() {
				return c.String()
			}
		}
	}
	return cleaned
}

// preview renders the generated markdown to the terminal before writing it.
func (r *Regenerator) preview(content string) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		debug.Logf("create markdown renderer: %v", err)
		return
	}
	out, err := renderer.Render(content)
	if err != nil {
		debug.Logf("render README preview: %v", err)
		return
	}
	fmt.Fprint(r.Out, out)
}

// buildPrompt renders the README regeneration prompt from the manifest.
func buildPrompt(project string, manifest []string) string {
	var b strings.Builder
	b.WriteString("You are a technical writer. Generate a complete README.md for the project `")
	b.WriteString(project)
	b.WriteString("` based on its file manifest.\n\n")
	b.WriteString("Respond with ONLY a JSON object in this exact shape:\n")
	b.WriteString(`{"readme_content": "the full markdown document"}` + "\n\n")
	b.WriteString("Include a short description, a plausible project structure section and usage notes.\n\n")
	b.WriteString("File manifest:\n")
	for _, f := range manifest {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}
