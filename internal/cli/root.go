// Package cli implements the embertail CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embertail-io/embertail/internal/config"
	"github.com/embertail-io/embertail/internal/models"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "embertail [profile]",
	Short: "Live-tail remote log files over HTTP",
	Long: `Embertail continuously tails the remote log files a log server exposes
through its directory-listing endpoint, merges them into one time-ordered
stream, and prints it to the console or forwards it to a structured sink.
It follows daily rotation and recovers from expired credentials on its own.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runTail,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:")+" "+err.Error())
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to profiles.yaml (default ~/.embertail/profiles.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose output, raw entry text")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(versionCmd)
}

func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return configDefaultPath()
}

func loadConfig() (*models.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	if !config.FileExists(path) {
		return nil, fmt.Errorf("no profiles file at %s (create one or pass --config)", path)
	}
	return config.Load(path)
}
