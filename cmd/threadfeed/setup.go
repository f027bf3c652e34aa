package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadfeed/threadfeed/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the default viewer settings to a config file",
	Long: `Write every viewer setting (scroll thresholds, collapse rules, paging,
NATS and MCP options) with its built-in value, ready to be edited.

The file goes to $XDG_CONFIG_HOME/threadfeed/threadfeed.yml unless --project
is given, in which case ./threadfeed.yml is written and takes precedence over
the global file for viewers started in this directory.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Write ./threadfeed.yml for this directory only")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Replace a config file that is already there")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	path, write := config.GlobalPath(), config.WriteGlobal
	if setupFlags.project {
		path, write = config.ProjectPath(), config.WriteProject
	}

	if _, err := os.Stat(path); err == nil && !setupFlags.force {
		return fmt.Errorf("%s already exists (pass --force to replace it)", path)
	}
	if err := write(config.Default()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote default settings to %s\n", path)
	fmt.Fprintln(out, "Open a transcript with: threadfeed view <transcript>")
	return nil
}
