// Package cli implements the command-line interface for autocommit.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/worksonmyai/autocommit/internal/config"
	"github.com/worksonmyai/autocommit/internal/debug"
	"github.com/worksonmyai/autocommit/internal/git"
	"github.com/worksonmyai/autocommit/internal/ollama"
	"github.com/worksonmyai/autocommit/internal/pipeline"
	"github.com/worksonmyai/autocommit/internal/readme"
	"github.com/worksonmyai/autocommit/internal/report"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	flagDebug  bool
	flagReadme bool
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

var rootCmd = &cobra.Command{
	Use:   "autocommit",
	Short: "Per-file commits with model-generated messages",
	Long: `Autocommit walks the changed files of the current git repository,
asks a locally hosted language model for a Conventional-Commits message per
file, and commits and pushes each file on its own. Terraform files are
re-formatted after committing and the formatting delta is committed again.

With --readme the run instead regenerates README.md from the tracked-file
manifest using the same model.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Print raw model responses and intermediate diffs")
	rootCmd.Flags().BoolVar(&flagReadme, "readme", false, "Regenerate README.md instead of committing per file")
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if flagDebug {
		debug.Enable()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	repo, err := git.NewRepo(cwd)
	if err != nil {
		// Not being inside a repository is the one fatal precondition.
		return fmt.Errorf("not a git repository: %w", err)
	}

	gen, err := ollama.New(cfg.Endpoint, cfg.Model, time.Duration(cfg.Timeout)*time.Second)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if flagReadme {
		r := &readme.Regenerator{
			Repo:   repo,
			Gen:    gen,
			Remote: cfg.Remote,
			File:   cfg.ReadmeFile,
			Out:    out,
		}
		return r.Run(ctx)
	}

	p := &pipeline.Pipeline{
		Repo:    repo,
		Gen:     gen,
		Remote:  cfg.Remote,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
		Out:     out,
	}
	outcomes, err := p.Run(ctx)
	if err != nil {
		return err
	}

	report.Render(out, outcomes)
	return nil
}
