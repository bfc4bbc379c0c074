// Package main provides the CLI entry point for autocommit.
package main

import (
	"os"
	"runtime/debug"

	"github.com/worksonmyai/autocommit/internal/cli"
)

// Set via ldflags; VCS build info fills the gaps for plain go-install builds.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			commit, date = vcsInfo(info.Settings)
		}
	}
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// vcsInfo derives an abbreviated commit id and the commit timestamp from the
// embedded VCS build settings. Revisions shorter than the abbreviation
// length are treated as absent.
func vcsInfo(settings []debug.BuildSetting) (string, string) {
	vals := make(map[string]string, len(settings))
	for _, s := range settings {
		vals[s.Key] = s.Value
	}

	commit := "unknown"
	if rev := vals["vcs.revision"]; len(rev) >= 7 {
		commit = rev[:7]
		if vals["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}

	date := "unknown"
	if t := vals["vcs.time"]; t != "" {
		date = t
	}
	return commit, date
}
