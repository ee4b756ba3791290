package sourcemap

// RewriteOptions configures Rewrite's normalization pass over a decoded
// SourceMap: which pieces of data to carry forward, whether to pull in
// source contents from disk, and how to shorten source paths.
type RewriteOptions struct {
	// WithNames controls whether token names are preserved. Defaults to
	// true; set false to drop the names table entirely (e.g. before
	// shipping a map to an environment that only needs position data).
	WithNames bool

	// WithSourceContents controls whether sourcesContent entries already
	// present in the input are preserved. Defaults to true.
	WithSourceContents bool

	// LoadLocalSourceContents, when true, fills in sourcesContent for any
	// source lacking it by reading BasePath/<source> (or an absolute
	// source path as-is) from disk. Defaults to false; missing files are
	// skipped, not treated as an error.
	LoadLocalSourceContents bool

	// BasePath is the directory LoadLocalSourceContents resolves
	// relative source paths against.
	BasePath string

	// StripPrefixes is a list of candidate prefixes; the first one that
	// is an exact leading substring of a source is removed from it. The
	// sentinel entry "~" is replaced, before matching begins, with the
	// longest common prefix of every source in the map — the same
	// "common root" shorthand a checked-in .sourcemaprc typically uses
	// instead of spelling out an absolute build path.
	StripPrefixes []string
}

// DefaultRewriteOptions returns the usual options: names and source
// contents preserved, no local loading, no prefix stripping. Rewrite
// applies its options as given, so a zero-value RewriteOptions drops
// both names and source contents.
func DefaultRewriteOptions() RewriteOptions {
	return RewriteOptions{
		WithNames:          true,
		WithSourceContents: true,
	}
}

// Rewrite rebuilds sm through a Builder, applying opts: copying tokens
// (optionally dropping names), optionally carrying over or loading
// source contents, and finally stripping source path prefixes. The
// result is a new SourceMap; sm is left untouched.
func Rewrite(sm *SourceMap, opts RewriteOptions) (*SourceMap, error) {
	b := NewBuilder()
	if file, ok := sm.File(); ok {
		b.SetFile(file)
	}

	for _, tok := range sm.Tokens() {
		srcIdx := b.AddTokenFrom(tok, opts.WithNames)

		if tok.HasSource() && opts.WithSourceContents && !b.HasSourceContents(srcIdx) {
			if content, ok := sm.SourceContents(tok.SrcID()); ok {
				b.SetSourceContents(srcIdx, content)
			}
		}
	}

	if opts.LoadLocalSourceContents {
		if err := b.LoadLocalSourceContents(opts.BasePath); err != nil {
			return nil, err
		}
	}

	prefixes := expandPrefixSentinel(opts.StripPrefixes, b.Sources())
	b.StripPrefixes(prefixes)

	return b.IntoSourceMap(), nil
}

// expandPrefixSentinel replaces a "~" entry in prefixes with the longest
// common prefix of sources, dropping it if no common prefix exists.
func expandPrefixSentinel(prefixes []string, sources []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "~" {
			if common, ok := findCommonPrefix(sources); ok {
				out = append(out, common)
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
