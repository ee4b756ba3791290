package sourcemap

import "sort"

// indexEntry is one entry of a SourceMap's sorted lookup index: the
// generated position plus the index of the token it refers to.
type indexEntry struct {
	dstLine uint32
	dstCol  uint32
	tokIdx  uint32
}

// SourceMap is an in-memory, immutable (with respect to token
// coordinates) representation of a regular (non-indexed) Source Map v3
// document: a token list, interned sources/names tables, optional source
// contents, and a sorted lookup index computed once at construction.
type SourceMap struct {
	file           string
	hasFile        bool
	tokens         []RawToken
	index          []indexEntry
	sources        []string
	names          []string
	sourcesContent []*string
}

// newSourceMap builds a SourceMap from raw components, computing the
// sorted index. This is the single construction path used by both the
// decoder and the Builder.
func newSourceMap(file string, hasFile bool, tokens []RawToken, sources, names []string, sourcesContent []*string) *SourceMap {
	index := make([]indexEntry, len(tokens))
	for i, t := range tokens {
		index[i] = indexEntry{dstLine: t.DstLine, dstCol: t.DstCol, tokIdx: uint32(i)}
	}
	sort.SliceStable(index, func(i, j int) bool {
		a, b := index[i], index[j]
		if a.dstLine != b.dstLine {
			return a.dstLine < b.dstLine
		}
		return a.dstCol < b.dstCol
	})
	return &SourceMap{
		file:           file,
		hasFile:        hasFile,
		tokens:         tokens,
		index:          index,
		sources:        sources,
		names:          names,
		sourcesContent: sourcesContent,
	}
}

// File returns the embedded file name, if any.
func (sm *SourceMap) File() (string, bool) {
	return sm.file, sm.hasFile
}

// SetFile sets or clears the embedded file name.
func (sm *SourceMap) SetFile(value string, has bool) {
	sm.file = value
	sm.hasFile = has
}

// TokenCount returns the number of tokens in the map.
func (sm *SourceMap) TokenCount() int { return len(sm.tokens) }

// GetToken looks up a token by its index in the token list.
func (sm *SourceMap) GetToken(idx uint32) (Token, bool) {
	if int(idx) >= len(sm.tokens) {
		return Token{}, false
	}
	return Token{raw: &sm.tokens[idx], sm: sm, idx: idx}, true
}

// Tokens returns all tokens in insertion (encoder-stable) order.
func (sm *SourceMap) Tokens() []Token {
	out := make([]Token, len(sm.tokens))
	for i := range sm.tokens {
		out[i] = Token{raw: &sm.tokens[i], sm: sm, idx: uint32(i)}
	}
	return out
}

// SourceCount returns the number of entries in the sources table.
func (sm *SourceMap) SourceCount() int { return len(sm.sources) }

// Source returns the source string at idx.
func (sm *SourceMap) Source(idx uint32) (string, bool) {
	if int(idx) >= len(sm.sources) {
		return "", false
	}
	return sm.sources[idx], true
}

// SetSource replaces the source string at idx in place. It cannot add new
// sources; idx must already be valid.
func (sm *SourceMap) SetSource(idx uint32, value string) {
	sm.sources[idx] = value
}

// Sources returns the full sources table.
func (sm *SourceMap) Sources() []string {
	out := make([]string, len(sm.sources))
	copy(out, sm.sources)
	return out
}

// SourceContents returns the content recorded for source idx, if any.
func (sm *SourceMap) SourceContents(idx uint32) (string, bool) {
	if int(idx) >= len(sm.sourcesContent) {
		return "", false
	}
	p := sm.sourcesContent[idx]
	if p == nil {
		return "", false
	}
	return *p, true
}

// SetSourceContents records or clears the content for source idx, lazily
// resizing the parallel sourcesContent list to match sources.
func (sm *SourceMap) SetSourceContents(idx uint32, value string, has bool) {
	if len(sm.sourcesContent) != len(sm.sources) {
		grown := make([]*string, len(sm.sources))
		copy(grown, sm.sourcesContent)
		sm.sourcesContent = grown
	}
	if has {
		v := value
		sm.sourcesContent[idx] = &v
	} else {
		sm.sourcesContent[idx] = nil
	}
}

// HasSourceContents reports whether source idx has recorded content.
func (sm *SourceMap) HasSourceContents(idx uint32) bool {
	if int(idx) >= len(sm.sourcesContent) {
		return false
	}
	return sm.sourcesContent[idx] != nil
}

// NameCount returns the number of entries in the names table.
func (sm *SourceMap) NameCount() int { return len(sm.names) }

// HasNames reports whether the map has any names.
func (sm *SourceMap) HasNames() bool { return len(sm.names) > 0 }

// Name returns the name string at idx.
func (sm *SourceMap) Name(idx uint32) (string, bool) {
	if int(idx) >= len(sm.names) {
		return "", false
	}
	return sm.names[idx], true
}

// Names returns the full names table.
func (sm *SourceMap) Names() []string {
	out := make([]string, len(sm.names))
	copy(out, sm.names)
	return out
}

// RemoveNames clears the names table. Tokens keep their NameID values,
// which now dangle; callers that call RemoveNames are expected to rewrite
// afterwards (the rewrite pipeline's with_names=false path never sets a
// NameID in the first place, so it never hits this case).
func (sm *SourceMap) RemoveNames() {
	sm.names = nil
}

// IndexSize returns the number of entries in the sorted lookup index
// (always equal to TokenCount).
func (sm *SourceMap) IndexSize() int { return len(sm.index) }

// SortedTokens returns the map's tokens ordered by the lookup index,
// i.e. by (DstLine, DstCol) with insertion order breaking ties, rather
// than by insertion order the way Tokens does.
func (sm *SourceMap) SortedTokens() []Token {
	out := make([]Token, 0, len(sm.index))
	for _, e := range sm.index {
		if tok, ok := sm.GetToken(e.tokIdx); ok {
			out = append(out, tok)
		}
	}
	return out
}

// LookupToken performs a binary search over the sorted index for the
// greatest entry with (dstLine, dstCol) <= (line, col), ties favoring the
// later entry in insertion order. Returns (Token{}, false) if no entry
// qualifies.
func (sm *SourceMap) LookupToken(line, col uint32) (Token, bool) {
	// Find the first index entry strictly greater than (line, col); the
	// answer, if any, is the entry immediately before it.
	low, high := 0, len(sm.index)
	for low < high {
		mid := (low + high) / 2
		e := sm.index[mid]
		if lessPos(line, col, e.dstLine, e.dstCol) {
			high = mid
		} else {
			low = mid + 1
		}
	}
	if low == 0 {
		return Token{}, false
	}
	return sm.GetToken(sm.index[low-1].tokIdx)
}

// lessPos reports whether (line, col) < (otherLine, otherCol)
// lexicographically.
func lessPos(line, col, otherLine, otherCol uint32) bool {
	if line != otherLine {
		return line < otherLine
	}
	return col < otherCol
}

// GetOriginalFunctionName attempts to recover the original name of a
// function whose minified callsite is at (line, col): it walks backwards
// from LookupToken(line, col) looking for a token whose extracted
// minified identifier equals minifiedName and whose immediately
// preceding token's identifier is "function", returning that token's
// name. Bounded to 1000 visited tokens so garbage input cannot force a
// walk over the whole file.
func (sm *SourceMap) GetOriginalFunctionName(line, col uint32, minifiedName, minifiedSource string) (string, bool) {
	if !IsValidIdentifier(minifiedName) {
		return "", false
	}

	it := newReverseTokenIter(sm, line, col, minifiedSource)
	const maxVisited = 1000

	tok, ident, ok := it.next()
	if !ok {
		return "", false
	}
	visited := 1
	for visited < maxVisited {
		nextTok, nextIdent, nextOK := it.next()
		if !nextOK {
			return "", false
		}
		visited++
		if ident == minifiedName && nextIdent == "function" {
			return tok.Name()
		}
		tok, ident = nextTok, nextIdent
	}
	return "", false
}
