package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/changelog/shutdown"
)

var (
	version    = "dev"
	commit     = "unknown"
	date       = "unknown"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate changelogs from GitHub, GitLab or local git history",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clicky.Flags.UseFlags()
	},
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "format")
	logger.Configure(logger.Flags{LogToStderr: true, Color: true})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CHANGELOG_CONFIG"), "Config file (.yaml, .json or .toml)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("changelog %s (commit: %s, built: %s, go: %s)\n",
				version, commit, date, runtime.Version())
		},
	})
}

func main() {
	defer shutdown.Shutdown()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		shutdown.Shutdown()
		os.Exit(1)
	}
}
