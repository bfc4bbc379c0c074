package message

import (
	"strings"
)

// BuildPrompt renders the commit message prompt for a single file's diff.
// The model is instructed to answer with a strict JSON object so that the
// structured parse tier usually succeeds.
func BuildPrompt(path, diff string) string {
	var b strings.Builder
	b.WriteString("You are a commit message generator. ")
	b.WriteString("Analyze the following git diff for the file `")
	b.WriteString(path)
	b.WriteString("` and produce a commit message.\n\n")
	b.WriteString("Respond with ONLY a JSON object, no other text, in this exact shape:\n")
	b.WriteString(`{"header": "...", "body": "... or null", "footer": "... or null"}` + "\n\n")
	b.WriteString("Rules for the header:\n")
	b.WriteString("- Conventional Commits type prefix (feat, fix, docs, style, refactor, test, chore)\n")
	b.WriteString("- imperative mood\n")
	b.WriteString("- at most 50 characters\n\n")
	b.WriteString("body and footer are optional; use null when they add nothing.\n\n")
	b.WriteString("Diff:\n")
	b.WriteString(diff)
	return b.String()
}
