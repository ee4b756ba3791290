package sourcemap

import (
	"os"
	"path/filepath"
)

// Builder accumulates tokens and interned sources/names tables, then
// produces an immutable SourceMap. It is the single construction path
// used by the rewrite pipeline and by Flatten; both need to merge tokens
// from one or more input maps while deduplicating sources and names by
// value rather than by their original index.
type Builder struct {
	file    string
	hasFile bool

	tokens []RawToken

	sources     []string
	sourceIndex map[string]uint32

	names     []string
	nameIndex map[string]uint32

	sourcesContent []*string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		sourceIndex: make(map[string]uint32),
		nameIndex:   make(map[string]uint32),
	}
}

// SetFile sets the output map's embedded file name.
func (b *Builder) SetFile(file string) {
	b.file = file
	b.hasFile = true
}

// internSource returns the index of name in the sources table, adding it
// if this is the first time it has been seen.
func (b *Builder) internSource(name string) uint32 {
	if idx, ok := b.sourceIndex[name]; ok {
		return idx
	}
	idx := uint32(len(b.sources))
	b.sources = append(b.sources, name)
	b.sourcesContent = append(b.sourcesContent, nil)
	b.sourceIndex[name] = idx
	return idx
}

// internName returns the index of name in the names table, adding it if
// this is the first time it has been seen.
func (b *Builder) internName(name string) uint32 {
	if idx, ok := b.nameIndex[name]; ok {
		return idx
	}
	idx := uint32(len(b.names))
	b.names = append(b.names, name)
	b.nameIndex[name] = idx
	return idx
}

// Add appends tok as-is (its SrcID/NameID are expected to already be
// valid indices into sources/names as built so far, or sentinelID). It
// suits copying tokens between maps that already share an interning
// scheme; no interning or index checking is done.
func (b *Builder) Add(tok RawToken) {
	b.tokens = append(b.tokens, tok)
}

// AddToken interns source and name (when present) and appends a new
// token at (dstLine, dstCol)/(srcLine, srcCol). It returns the interned
// source index (sentinelID if hasSource is false) so callers can
// immediately attach source content via SetSourceContents.
func (b *Builder) AddToken(dstLine, dstCol, srcLine, srcCol uint32, source string, hasSource bool, name string, hasName bool) uint32 {
	raw := RawToken{DstLine: dstLine, DstCol: dstCol, SrcID: sentinelID, NameID: sentinelID}
	srcIdx := uint32(sentinelID)
	if hasSource {
		srcIdx = b.internSource(source)
		raw.SrcLine = srcLine
		raw.SrcCol = srcCol
		raw.SrcID = srcIdx
	}
	if hasName {
		raw.NameID = b.internName(name)
	}
	b.tokens = append(b.tokens, raw)
	return srcIdx
}

// AddTokenFrom forwards an existing decoded token's coordinates, source
// and (optionally) name into the builder, interning them against this
// builder's own tables. Returns the interned source index, sentinelID
// when tok has no source.
func (b *Builder) AddTokenFrom(tok Token, withNames bool) uint32 {
	source, hasSource := tok.Source()
	var name string
	var hasName bool
	if withNames {
		name, hasName = tok.Name()
	}
	return b.AddToken(tok.DstLine(), tok.DstCol(), tok.SrcLine(), tok.SrcCol(), source, hasSource, name, hasName)
}

// HasSourceContents reports whether source idx already has content
// recorded.
func (b *Builder) HasSourceContents(idx uint32) bool {
	if int(idx) >= len(b.sourcesContent) {
		return false
	}
	return b.sourcesContent[idx] != nil
}

// SetSourceContents records content for source idx.
func (b *Builder) SetSourceContents(idx uint32, content string) {
	if int(idx) >= len(b.sourcesContent) {
		return
	}
	v := content
	b.sourcesContent[idx] = &v
}

// SourceIndexOf returns the interned index of source, if it has been
// added to the builder already.
func (b *Builder) SourceIndexOf(source string) (uint32, bool) {
	idx, ok := b.sourceIndex[source]
	return idx, ok
}

// Sources returns the interned sources table built so far, in insertion
// order.
func (b *Builder) Sources() []string {
	out := make([]string, len(b.sources))
	copy(out, b.sources)
	return out
}

// StripPrefixes rewrites every interned source by removing the first
// matching prefix in prefixes, preserving each source's interned index.
func (b *Builder) StripPrefixes(prefixes []string) {
	if len(prefixes) == 0 {
		return
	}
	newIndex := make(map[string]uint32, len(b.sourceIndex))
	for i, s := range b.sources {
		stripped := stripPrefix(s, prefixes)
		b.sources[i] = stripped
		newIndex[stripped] = uint32(i)
	}
	b.sourceIndex = newIndex
}

// LoadLocalSourceContents fills in content for every interned source
// that doesn't already have recorded content, by reading
// filepath.Join(basePath, source) from disk (an absolute source path is
// read as-is, without basePath). Missing files are skipped
// rather than treated as an error, since not every source in a map is
// expected to exist locally (vendored or generated sources, for one).
func (b *Builder) LoadLocalSourceContents(basePath string) error {
	for i, s := range b.sources {
		if b.sourcesContent[i] != nil {
			continue
		}
		path := s
		if !filepath.IsAbs(path) {
			path = filepath.Join(basePath, s)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return wrapError(KindIO, "failed to load local source content for "+s, err)
		}
		v := string(data)
		b.sourcesContent[i] = &v
	}
	return nil
}

// IntoSourceMap finalizes the builder into an immutable SourceMap.
func (b *Builder) IntoSourceMap() *SourceMap {
	sourcesContent := b.sourcesContent
	hasAny := false
	for _, p := range sourcesContent {
		if p != nil {
			hasAny = true
			break
		}
	}
	if !hasAny {
		sourcesContent = nil
	}
	return newSourceMap(b.file, b.hasFile, b.tokens, b.sources, b.names, sourcesContent)
}
