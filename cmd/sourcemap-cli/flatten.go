package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func newFlattenCmd(state *cliState) *cobra.Command {
	var (
		rewrite bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "flatten <indexed-map>",
		Short: "Flatten an indexed source map into a single regular map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			smi, err := sourcemap.ToIndex(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}

			var out *sourcemap.SourceMap
			if rewrite {
				out, err = smi.FlattenAndRewrite(state.cfg.Rewrite.ToOptions())
			} else {
				out, err = smi.Flatten()
			}
			if err != nil {
				return fmt.Errorf("flattening %s: %w", args[0], err)
			}
			return writeEncoded(out, output)
		},
	}

	cmd.Flags().BoolVar(&rewrite, "rewrite", false, "also run the rewrite pipeline on the flattened result")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
