package main

import (
	"strings"

	"go.lsp.dev/uri"
)

// normalizeSectionURL parses raw as a URI and re-stringifies it, the way
// any go.lsp.dev/uri consumer normalizes a path or URL before display or
// comparison. raw is a section's "url" field, which is not guaranteed
// to already be a well-formed URI
// (a bare relative path like "../shared/vendor.js" is common), so a
// parse failure falls back to the original string unchanged rather than
// failing the caller.
func normalizeSectionURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := uri.Parse(raw)
	if err != nil {
		return raw
	}
	return string(u)
}

// isFileURI reports whether raw parses as a file:// URI, the condition
// inspect uses to decide whether a section reference already points at a
// local path rather than a remote one this CLI has no business fetching.
// The scheme is checked on the normalized URI string; URI.Filename would
// panic on non-file schemes.
func isFileURI(raw string) bool {
	u, err := uri.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(u), uri.FileScheme+"://")
}
