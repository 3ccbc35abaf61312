package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/changelog/changelog"
	"github.com/flanksource/changelog/export"
	"github.com/flanksource/changelog/provider"
)

var generateOpts struct {
	provider  string
	from      string
	to        string
	details   bool
	narrative bool
	export    string
	out       string
}

var generateCmd = &cobra.Command{
	Use:          "generate [repository]",
	Short:        "Generate a changelog for a ref range",
	SilenceUsage: true,
	Long: `Generate a changelog for the commits between two refs.

The repository is owner/repo (or a remote URL) for github, a project id or
path for gitlab, and a working copy path for local. Refs may be tags, branches,
SHAs or the aliases latest, previous and latest~N.

EXAMPLES:
  # Changes since the previous release of the local checkout
  changelog generate --provider local --from previous --to latest .

  # GitHub release notes with file details, as HTML
  changelog generate flanksource/gavel --from v1.0.0 --to v1.1.0 --details --export html -o notes.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateOpts.provider, "provider", "github", "Commit source: github, gitlab or local")
	f.StringVar(&generateOpts.from, "from", "", "Start ref (exclusive)")
	f.StringVar(&generateOpts.to, "to", "", "End ref (inclusive, defaults to the default branch)")
	f.BoolVar(&generateOpts.details, "details", false, "Fetch changed files and line counts per commit")
	f.BoolVar(&generateOpts.narrative, "narrative", false, "Write the changelog body with the configured AI model")
	f.StringVar(&generateOpts.export, "export", "markdown", "Output format: markdown, json, html or text")
	f.StringVarP(&generateOpts.out, "out", "o", "", "Write to this file, or to a generated file name when set to a directory")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	spec, err := export.Negotiate(generateOpts.export)
	if err != nil {
		return err
	}
	conn, err := connection(generateOpts.provider)
	if err != nil {
		return err
	}
	_, svc, err := loadService()
	if err != nil {
		return err
	}

	repo := "."
	if len(args) > 0 {
		repo = args[0]
	} else if conn.Provider != provider.KindLocal {
		return fmt.Errorf("repository is required for %s", conn.Provider)
	}

	doc, err := svc.Generate(cmd.Context(), changelog.Request{
		Connection:     conn,
		Repository:     repo,
		FromRef:        generateOpts.from,
		ToRef:          generateOpts.to,
		IncludeDetails: generateOpts.details,
		Narrative:      generateOpts.narrative,
	})
	if err != nil {
		logger.Errorf("generate failed: %v", err)
		return err
	}

	body, err := export.Body(doc, spec)
	if err != nil {
		return err
	}

	if generateOpts.out == "" {
		_, err = os.Stdout.Write(body)
		return err
	}
	path := generateOpts.out
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, export.Filename(doc.Metadata, spec))
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Infof("wrote %s (%d commits)", path, doc.Stats.TotalCommits)
	return nil
}
