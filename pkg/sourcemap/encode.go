package sourcemap

import (
	"bytes"
	"encoding/json"
	"io"
)

// regularEnvelopeOut mirrors the JSON shape Encode produces for a
// regular map: version is always 3, sourceRoot is never emitted (sources
// are always written already expanded), sources/names are written as
// empty arrays rather than null when the map has none of either.
type regularEnvelopeOut struct {
	Version        int       `json:"version"`
	File           *string   `json:"file,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Encode serializes sm to its JSON Source Map v3 representation.
func (sm *SourceMap) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := sm.EncodeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes sm's JSON Source Map v3 representation to w.
func (sm *SourceMap) EncodeTo(w io.Writer) error {
	out := regularEnvelopeOut{
		Version:  3,
		Sources:  nonNilStrings(sm.Sources()),
		Names:    nonNilStrings(sm.Names()),
		Mappings: encodeMappings(sm),
	}
	if file, ok := sm.File(); ok {
		out.File = &file
	}
	if len(sm.sourcesContent) > 0 {
		out.SourcesContent = make([]*string, len(sm.sources))
		for i := range sm.sources {
			if content, ok := sm.SourceContents(uint32(i)); ok {
				v := content
				out.SourcesContent[i] = &v
			}
		}
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return wrapError(KindIO, "failed to write sourcemap json", err)
	}
	return nil
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// encodeMappings walks sm's tokens in sorted (dstLine, dstCol) order and
// produces the `mappings` string: ';' per advanced generated line, ','
// between segments on the same line, each segment 1, 4 or 5 VLQ fields,
// deltas taken against running state that resets the generated column at
// each new line but otherwise persists across the whole mapping.
func encodeMappings(sm *SourceMap) string {
	var buf bytes.Buffer
	var scratch []byte

	curLine := 0
	firstInLine := true
	var prevDstCol, prevSrcID, prevSrcLine, prevSrcCol, prevNameID int64

	for _, e := range sm.index {
		tok, ok := sm.GetToken(e.tokIdx)
		if !ok {
			continue
		}
		for curLine < int(tok.DstLine()) {
			buf.WriteByte(';')
			curLine++
			prevDstCol = 0
			firstInLine = true
		}
		if !firstInLine {
			buf.WriteByte(',')
		}
		firstInLine = false

		dstCol := int64(tok.DstCol())
		scratch = encodeVLQ(scratch[:0], dstCol-prevDstCol)
		buf.Write(scratch)
		prevDstCol = dstCol

		if tok.HasSource() {
			srcID := int64(tok.SrcID())
			srcLine := int64(tok.SrcLine())
			srcCol := int64(tok.SrcCol())

			scratch = encodeVLQ(scratch[:0], srcID-prevSrcID)
			buf.Write(scratch)
			scratch = encodeVLQ(scratch[:0], srcLine-prevSrcLine)
			buf.Write(scratch)
			scratch = encodeVLQ(scratch[:0], srcCol-prevSrcCol)
			buf.Write(scratch)
			prevSrcID, prevSrcLine, prevSrcCol = srcID, srcLine, srcCol

			if tok.HasName() {
				nameID := int64(tok.NameID())
				scratch = encodeVLQ(scratch[:0], nameID-prevNameID)
				buf.Write(scratch)
				prevNameID = nameID
			}
		}
	}

	return buf.String()
}
