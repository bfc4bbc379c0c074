// Package debug provides debug logging utilities.
package debug

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/pretty"
)

var enabled = os.Getenv("AUTOCOMMIT_DEBUG") == "1"

// Enable turns debug logging on regardless of the environment.
// Used by the --debug CLI flag.
func Enable() {
	enabled = true
}

// Logf writes a debug message to stderr if debug logging is enabled.
func Logf(format string, args ...any) {
	if !enabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[DEBUG %s] %s\n", timestamp, msg)
}

// DumpJSON pretty-prints a raw JSON payload to stderr with a label.
// Non-JSON payloads are printed as-is.
func DumpJSON(label string, raw []byte) {
	if !enabled {
		return
	}
	out := raw
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		out = pretty.Pretty(raw)
	}
	fmt.Fprintf(os.Stderr, "[DEBUG] %s:\n%s\n", label, out)
}

// Enabled returns true if debug logging is enabled.
func Enabled() bool {
	return enabled
}
