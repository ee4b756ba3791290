package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/internal/cache"
	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

var (
	lookupKeyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	lookupMatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lookupMissStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newLookupCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <map> <line> <col>",
		Short: "Resolve a generated (line, col) to its original position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid line %q: %w", args[1], err)
			}
			col, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid col %q: %w", args[2], err)
			}

			dm, err := loadMap(state, args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}

			tok, ok := dm.LookupToken(uint32(line), uint32(col))
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), lookupMissStyle.Render(
					fmt.Sprintf("no mapping for generated position %d:%d", line, col)))
				return nil
			}

			printLookupResult(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	return cmd
}

// loadMap decodes the map at path, going through the decode cache when
// the config enables it and decoding directly otherwise.
func loadMap(state *cliState, path string) (*sourcemap.DecodedMap, error) {
	if state.cfg.Cache.Enabled {
		return cache.New(state.logger).Get(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return sourcemap.DecodeSlice(data)
}

// tokenRenderer is the subset of Token used for printing; kept as an
// interface only so tests can exercise the rendering without constructing
// a full SourceMap. In practice always satisfied by sourcemap.Token.
type tokenRenderer interface {
	Source() (string, bool)
	SrcLine() uint32
	SrcCol() uint32
	Name() (string, bool)
}

func printLookupResult(w io.Writer, tok tokenRenderer) {
	row := func(key, value string) string {
		return lookupKeyStyle.Render(key+":") + " " + value
	}

	source, hasSource := tok.Source()
	if !hasSource {
		source = "(none)"
	}
	name, hasName := tok.Name()
	if !hasName {
		name = "(none)"
	}

	fmt.Fprintln(w, lookupMatchStyle.Render("match"))
	fmt.Fprintln(w, row("source", source))
	fmt.Fprintln(w, row("line", strconv.FormatUint(uint64(tok.SrcLine()), 10)))
	fmt.Fprintln(w, row("col", strconv.FormatUint(uint64(tok.SrcCol()), 10)))
	fmt.Fprintln(w, row("name", name))
}
