package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

var inspectHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func newInspectCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <map>",
		Short: "Summarize a source map's sources, names and token counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			dm, err := sourcemap.DecodeSlice(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}

			w := cmd.OutOrStdout()
			if sm, ok := dm.AsRegular(); ok {
				fmt.Fprintln(w, inspectHeaderStyle.Render("regular sourcemap"))
				file, _ := sm.File()
				fmt.Fprintf(w, "file:    %s\n", file)
				fmt.Fprintf(w, "tokens:  %d\n", sm.TokenCount())
				fmt.Fprintf(w, "sources: %d\n", sm.SourceCount())
				fmt.Fprintf(w, "names:   %d\n", sm.NameCount())
				return nil
			}

			smi, _ := dm.AsIndex()
			file, _ := smi.File()
			fmt.Fprintln(w, inspectHeaderStyle.Render("indexed sourcemap"))
			fmt.Fprintf(w, "file:     %s\n", file)
			fmt.Fprintf(w, "sections: %d\n", len(smi.Sections()))
			for i, s := range smi.Sections() {
				if child, ok := s.Map(); ok {
					fmt.Fprintf(w, "  [%d] offset=%d:%d inline tokens=%d\n", i, s.OffsetLine(), s.OffsetCol(), child.TokenCount())
					continue
				}
				url, _ := s.URL()
				kind := "remote"
				if isFileURI(url) {
					kind = "local"
				}
				fmt.Fprintf(w, "  [%d] offset=%d:%d url=%s (%s, unresolved)\n", i, s.OffsetLine(), s.OffsetCol(), normalizeSectionURL(url), kind)
			}
			return nil
		},
	}
	return cmd
}
