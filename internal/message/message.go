// Package message turns a single file's diff into a Conventional-Commits
// style commit message using the model, with a tiered fallback chain for
// malformed model output.
package message

import (
	"context"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/worksonmyai/autocommit/internal/debug"
	"github.com/worksonmyai/autocommit/internal/git"
	"github.com/worksonmyai/autocommit/internal/ollama"
)

// Fixed fallback messages. Each tier of the degradation chain lands on one
// of these when the one above it produces nothing usable.
const (
	NewFileMessage   = "feat: add new file"
	AutomatedMessage = "chore: automated commit"
	UpdateMessage    = "chore: update file"
)

// TimeoutDetail is the error detail reported when the model call times out.
const TimeoutDetail = "LLM request timed out"

// headerLimit caps the first line of plain-text fallback messages.
const headerLimit = 50

// thinkClose terminates a reasoning-trace block. Everything up to and
// including it is discarded before parsing.
const thinkClose = "</think>"

// Message is a parsed commit message. Header is always non-empty.
type Message struct {
	Header string
	Body   string
	Footer string
}

// String assembles the final commit message text: header, blank line, body,
// blank line, footer. Blank parts are omitted.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Header)
	if strings.TrimSpace(m.Body) != "" {
		b.WriteString("\n\n")
		b.WriteString(m.Body)
	}
	if strings.TrimSpace(m.Footer) != "" {
		b.WriteString("\n\n")
		b.WriteString(m.Footer)
	}
	return b.String()
}

// Synthesize produces a commit message for a single file's diff.
// It returns the message text and an error detail; a non-empty detail means
// generation degraded to a fixed fallback and should be reported, while the
// run continues with the next file.
//
// Untracked files short-circuit to a fixed message without a model call.
func Synthesize(ctx context.Context, gen ollama.Generator, path, diff string) (string, string) {
	if strings.HasPrefix(diff, git.NewFilePrefix) {
		return NewFileMessage, ""
	}

	raw, err := gen.Generate(ctx, BuildPrompt(path, diff), true)
	if err != nil {
		if errors.Is(err, ollama.ErrTimeout) {
			return AutomatedMessage, TimeoutDetail
		}
		return AutomatedMessage, err.Error()
	}

	msg := Parse(raw)
	debug.Logf("parsed commit message for %s: %q", path, msg.Header)
	return msg.String(), ""
}

// Parse extracts a Message from raw model output. It is a pure function and
// total: some valid header always comes out.
//
// Degradation tiers: structured JSON with header/body/footer → first usable
// plain-text line truncated to the header limit → fixed fallback.
func Parse(raw string) Message {
	cleaned := Clean(raw)

	if msg, ok := parseStructured(cleaned); ok {
		return msg
	}

	header := firstUsableLine(cleaned)
	if header == "" {
		return Message{Header: UpdateMessage}
	}
	return Message{Header: truncate(header, headerLimit)}
}

// Clean strips the reasoning trace and markdown fences from raw model
// output without interpreting what remains. Shared with the README
// pipeline, which applies its own extraction on top.
func Clean(raw string) string {
	return stripFences(stripReasoning(raw))
}

// stripReasoning discards a reasoning-trace block. Only text after the
// closing delimiter is the answer.
func stripReasoning(s string) string {
	idx := strings.Index(s, thinkClose)
	if idx < 0 {
		return s
	}
	return s[idx+len(thinkClose):]
}

// stripFences removes a leading markdown code fence (including a
// language-tagged one such as ```json) and a trailing closing fence.
// Models wrap structured output in fences despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = ""
		}
	}
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
		if idx := strings.LastIndexByte(s, '\n'); idx >= 0 && strings.TrimSpace(s[idx:]) == "" {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// parseStructured reads header/body/footer from a JSON object. An empty
// header after trimming degrades to the fixed update message; that is a
// normal path, not a reported failure.
func parseStructured(s string) (Message, bool) {
	if !gjson.Valid(s) {
		return Message{}, false
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return Message{}, false
	}

	header := strings.TrimSpace(res.Get("header").String())
	if header == "" {
		return Message{Header: UpdateMessage}, true
	}
	return Message{
		Header: header,
		Body:   strings.TrimSpace(res.Get("body").String()),
		Footer: strings.TrimSpace(res.Get("footer").String()),
	}, true
}

// firstUsableLine returns the first non-blank line that is not a fence
// marker, or "" when there is none.
func firstUsableLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		return line
	}
	return ""
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
