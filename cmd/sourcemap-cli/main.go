// Command sourcemap-cli is a thin wrapper exercising every pkg/sourcemap
// operation from the shell. The library never logs or touches flags;
// this binary is the only place that does.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/internal/config"
	"github.com/MadAppGang/sourcemap/internal/logging"
)

// cliState carries the resolved config and logger through to each
// subcommand's RunE, built once in the root command's PersistentPreRunE.
type cliState struct {
	cfg    config.Config
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	var configPath string
	state := &cliState{}

	root := &cobra.Command{
		Use:           "sourcemap-cli",
		Short:         "Inspect, query, flatten and rewrite Source Map v3 documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultFileName
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config %s: %w", path, err)
			}
			state.cfg = cfg
			state.logger = logging.New(cfg.LogLevelOrDefault(), os.Stderr)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to .sourcemaprc.toml (default: ./.sourcemaprc.toml)")

	root.AddCommand(
		newLookupCmd(state),
		newRewriteCmd(state),
		newFlattenCmd(state),
		newInspectCmd(state),
		newWatchCmd(state),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sourcemap-cli:", err)
		os.Exit(1)
	}
}
