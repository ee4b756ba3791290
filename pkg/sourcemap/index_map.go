package sourcemap

import (
	"encoding/json"
	"io"
)

// Section is one entry of a SourceMapIndex: the generated position at
// which its child map's coordinate system starts, plus either an inline
// child map or an external url reference to one.
type Section struct {
	offsetLine uint32
	offsetCol  uint32
	child      *SourceMap
	url        string
	hasURL     bool
}

// OffsetLine returns the generated line at which this section begins.
func (s *Section) OffsetLine() uint32 { return s.offsetLine }

// OffsetCol returns the generated column at which this section begins.
func (s *Section) OffsetCol() uint32 { return s.offsetCol }

// Map returns the section's inline child map, if it has one.
func (s *Section) Map() (*SourceMap, bool) { return s.child, s.child != nil }

// SetMap replaces the section's inline child map. Callers that resolve a
// url section externally use this to attach the fetched map before
// Flatten; passing nil detaches the child, leaving only the url
// reference (if any).
func (s *Section) SetMap(sm *SourceMap) { s.child = sm }

// URL returns the section's external map reference, if it has one.
func (s *Section) URL() (string, bool) { return s.url, s.hasURL }

// SourceMapIndex is a decoded indexed Source Map v3 document: an ordered
// list of Sections, each placing a regular child map at an offset within
// a shared generated coordinate space.
type SourceMapIndex struct {
	file     string
	hasFile  bool
	sections []*Section
}

func newSourceMapIndex(file string, hasFile bool, sections []*Section) *SourceMapIndex {
	return &SourceMapIndex{file: file, hasFile: hasFile, sections: sections}
}

// File returns the embedded file name, if any.
func (smi *SourceMapIndex) File() (string, bool) { return smi.file, smi.hasFile }

// Sections returns the index's sections in document order.
func (smi *SourceMapIndex) Sections() []*Section { return smi.sections }

// LookupToken finds the section whose offset is the greatest one not
// exceeding (line, col), translates the query into that section's local
// coordinate space by subtracting its offset, and delegates to its child
// map. The returned Token's Dst()/DstCol() are reported in the child
// map's own coordinate space, not the shared one.
//
// Section selection deliberately does not use the literal
// `off_line < line || (off_line == line && off_col <= col)` short-circuit
// condition, which can select the wrong section once sections with
// offset_line > line are interleaved with ones that aren't sorted purely
// by line. Instead it walks sections in order and stops at the first one
// whose offset_line is strictly greater than line, then backs up one: the
// last candidate whose offset starts at or before (line, col).
func (smi *SourceMapIndex) LookupToken(line, col uint32) (Token, bool) {
	var best *Section
	for _, s := range smi.sections {
		if s.offsetLine > line {
			break
		}
		if s.offsetLine == line && s.offsetCol > col {
			break
		}
		best = s
	}
	if best == nil || best.child == nil {
		return Token{}, false
	}
	localLine := line - best.offsetLine
	localCol := col - best.offsetCol
	return best.child.LookupToken(localLine, localCol)
}

// Flatten merges every section's child map into a single regular
// SourceMap, shifting each child token by its section's generated offset.
// It fails with KindCannotFlatten if any section lacks an inline child
// map (i.e. only has a url reference, which this package never resolves
// itself — callers that want to flatten a map with url sections must
// fetch and decode those sections first and attach them with
// Section.SetMap).
func (smi *SourceMapIndex) Flatten() (*SourceMap, error) {
	b := NewBuilder()
	if smi.hasFile {
		b.SetFile(smi.file)
	}

	for _, s := range smi.sections {
		if s.child == nil {
			return nil, newError(KindCannotFlatten, "section has no inline map to flatten")
		}
		for _, tok := range s.child.Tokens() {
			dstLine := tok.DstLine() + s.offsetLine
			dstCol := tok.DstCol() + s.offsetCol

			var sourceName, name string
			var hasSource, hasName bool
			if src, ok := tok.Source(); ok {
				sourceName, hasSource = src, true
			}
			if n, ok := tok.Name(); ok {
				name, hasName = n, true
			}

			srcIdx := b.AddToken(dstLine, dstCol, tok.SrcLine(), tok.SrcCol(), sourceName, hasSource, name, hasName)

			if hasSource {
				if content, ok := s.child.SourceContents(tok.SrcID()); ok && !b.HasSourceContents(srcIdx) {
					b.SetSourceContents(srcIdx, content)
				}
			}
		}
	}

	return b.IntoSourceMap(), nil
}

type indexEnvelopeOut struct {
	Version  int          `json:"version"`
	File     *string      `json:"file,omitempty"`
	Sections []sectionOut `json:"sections"`
}

type sectionOut struct {
	Offset sectionOffset    `json:"offset"`
	Map    *json.RawMessage `json:"map,omitempty"`
	URL    *string          `json:"url,omitempty"`
}

// Encode serializes smi to its JSON indexed Source Map v3
// representation, encoding each section's inline child map (if any) as
// a nested "map" object and passing url sections through unresolved.
func (smi *SourceMapIndex) Encode() ([]byte, error) {
	out := indexEnvelopeOut{Version: 3, Sections: make([]sectionOut, len(smi.sections))}
	if smi.hasFile {
		out.File = &smi.file
	}
	for i, s := range smi.sections {
		so := sectionOut{Offset: sectionOffset{Line: s.offsetLine, Column: s.offsetCol}}
		if s.child != nil {
			childBytes, err := s.child.Encode()
			if err != nil {
				return nil, err
			}
			raw := json.RawMessage(childBytes)
			so.Map = &raw
		}
		if s.hasURL {
			so.URL = &s.url
		}
		out.Sections[i] = so
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, wrapError(KindIO, "failed to marshal indexed sourcemap json", err)
	}
	return data, nil
}

// EncodeTo writes smi's JSON indexed Source Map v3 representation to w.
func (smi *SourceMapIndex) EncodeTo(w io.Writer) error {
	data, err := smi.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return wrapError(KindIO, "failed to write indexed sourcemap json", err)
	}
	return nil
}

// FlattenAndRewrite flattens the index and immediately applies Rewrite
// with opts, combining both passes into one call for the common case of
// producing a clean, standalone regular map from an indexed one.
func (smi *SourceMapIndex) FlattenAndRewrite(opts RewriteOptions) (*SourceMap, error) {
	flat, err := smi.Flatten()
	if err != nil {
		return nil, err
	}
	return Rewrite(flat, opts)
}
