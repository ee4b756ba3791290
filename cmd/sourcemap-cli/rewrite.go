package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

func newRewriteCmd(state *cliState) *cobra.Command {
	var (
		noNames    bool
		noContents bool
		loadLocal  bool
		basePath   string
		strip      []string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <map>",
		Short: "Deduplicate, strip prefixes and optionally inline local source contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sm, err := sourcemap.ToRegular(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}

			opts := state.cfg.Rewrite.ToOptions()
			if cmd.Flags().Changed("no-names") {
				opts.WithNames = !noNames
			}
			if cmd.Flags().Changed("no-source-contents") {
				opts.WithSourceContents = !noContents
			}
			if loadLocal {
				opts.LoadLocalSourceContents = true
			}
			if basePath != "" {
				opts.BasePath = basePath
			}
			if len(strip) > 0 {
				opts.StripPrefixes = strip
			}

			out, err := sourcemap.Rewrite(sm, opts)
			if err != nil {
				return fmt.Errorf("rewriting %s: %w", args[0], err)
			}
			return writeEncoded(out, output)
		},
	}

	cmd.Flags().BoolVar(&noNames, "no-names", false, "drop the names table")
	cmd.Flags().BoolVar(&noContents, "no-source-contents", false, "drop sourcesContent")
	cmd.Flags().BoolVar(&loadLocal, "load-local", false, "inline source contents resolved from --base")
	cmd.Flags().StringVar(&basePath, "base", "", "base path for --load-local and relative sources")
	cmd.Flags().StringArrayVar(&strip, "strip", nil, "prefix to strip from sources; \"~\" strips the longest common prefix")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// encodable is satisfied by both *sourcemap.SourceMap and
// *sourcemap.SourceMapIndex, letting writeEncoded serve flatten and
// rewrite alike without a type switch at the call site.
type encodable interface {
	Encode() ([]byte, error)
}

func writeEncoded(v encodable, output string) error {
	data, err := v.Encode()
	if err != nil {
		return err
	}
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
