package sourcemap

import "math"

// sentinelID marks a RawToken field as "absent" (no source / no name).
// The all-ones 32-bit value, used instead of a pointer/option type to
// keep RawToken a small, comparable, allocation-free value.
const sentinelID = math.MaxUint32

// RawToken is the six-field record the decoder, builder and encoder all
// operate on. It is immutable once produced; SourceMap never mutates a
// RawToken's coordinates after construction.
type RawToken struct {
	DstLine uint32
	DstCol  uint32
	SrcLine uint32
	SrcCol  uint32
	SrcID   uint32 // sentinelID if this token has no source
	NameID  uint32 // sentinelID if this token has no name
}

func (t RawToken) hasSource() bool { return t.SrcID != sentinelID }
func (t RawToken) hasName() bool   { return t.NameID != sentinelID }

// Token is a read-only view onto a RawToken plus the SourceMap that owns
// the sources/names tables it indexes into. It additionally carries its
// own index in the map's token list, which LookupToken's result and
// GetOriginalFunctionName's reverse walk both rely on.
type Token struct {
	raw *RawToken
	sm  *SourceMap
	idx uint32
}

// Index returns the token's position in its SourceMap's token list.
func (t Token) Index() uint32 { return t.idx }

// DstLine returns the generated (minified) line, 0-based.
func (t Token) DstLine() uint32 { return t.raw.DstLine }

// DstCol returns the generated (minified) column, 0-based, in UTF-16
// code units.
func (t Token) DstCol() uint32 { return t.raw.DstCol }

// Dst returns (DstLine, DstCol).
func (t Token) Dst() (uint32, uint32) { return t.raw.DstLine, t.raw.DstCol }

// SrcLine returns the original source line, 0-based.
func (t Token) SrcLine() uint32 { return t.raw.SrcLine }

// SrcCol returns the original source column, 0-based, in UTF-16 code units.
func (t Token) SrcCol() uint32 { return t.raw.SrcCol }

// Src returns (SrcLine, SrcCol).
func (t Token) Src() (uint32, uint32) { return t.raw.SrcLine, t.raw.SrcCol }

// SrcID returns the index into the owning map's sources table, or
// sentinelID if this token has no source.
func (t Token) SrcID() uint32 { return t.raw.SrcID }

// Source returns the source string for this token, if any.
func (t Token) Source() (string, bool) {
	if !t.raw.hasSource() {
		return "", false
	}
	return t.sm.Source(t.raw.SrcID)
}

// HasSource reports whether this token references a source.
func (t Token) HasSource() bool { return t.raw.hasSource() }

// NameID returns the index into the owning map's names table, or
// sentinelID if this token has no name.
func (t Token) NameID() uint32 { return t.raw.NameID }

// Name returns the name string for this token, if any.
func (t Token) Name() (string, bool) {
	if !t.raw.hasName() {
		return "", false
	}
	return t.sm.Name(t.raw.NameID)
}

// HasName reports whether this token has an associated name.
func (t Token) HasName() bool { return t.raw.hasName() }

// Raw returns the underlying RawToken by value.
func (t Token) Raw() RawToken { return *t.raw }

// GetMinifiedName reads the line at this token's DstLine from minifiedSource
// (lines split on ASCII LF), advances to the UTF-16 column DstCol, and
// extracts the identifier token starting there. Returns ("", false) if the
// line doesn't exist or DstCol falls past its end.
func (t Token) GetMinifiedName(minifiedSource string) (string, bool) {
	line, ok := lineAt(minifiedSource, int(t.raw.DstLine))
	if !ok {
		return "", false
	}
	byteOffset, ok := utf16ColToByteOffset(line, int(t.raw.DstCol))
	if !ok {
		return "", false
	}
	return extractIdentifier(line[byteOffset:])
}
