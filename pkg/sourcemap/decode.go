package sourcemap

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodedMap is the result of decoding a JSON envelope: either a regular
// map or an indexed map, never both. A caller that doesn't know in
// advance which variant a file holds can still call LookupToken or
// Encode on whichever it got.
type DecodedMap struct {
	regular *SourceMap
	index   *SourceMapIndex
}

// Decode reads a JSON Source Map v3 envelope from r, tolerating an
// optional leading `)]}'`-style garbage header up to the first '{'.
func Decode(r io.Reader) (*DecodedMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapError(KindIO, "failed to read sourcemap input", err)
	}
	return DecodeSlice(data)
}

// DecodeSlice decodes a JSON Source Map v3 envelope held entirely in
// memory, tolerating the same leading garbage header as Decode.
func DecodeSlice(data []byte) (*DecodedMap, error) {
	data, err := stripGarbageHeader(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, wrapError(KindBadJSON, "invalid json envelope", err)
	}

	version, err := readVersion(raw)
	if err != nil {
		return nil, err
	}
	if version != 3 {
		return nil, newError(KindBadJSON, fmt.Sprintf("unsupported version %d, only version 3 is supported", version))
	}

	if _, ok := raw["sections"]; ok {
		idx, err := decodeIndexEnvelope(raw)
		if err != nil {
			return nil, err
		}
		return &DecodedMap{index: idx}, nil
	}

	sm, err := decodeRegularEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return &DecodedMap{regular: sm}, nil
}

// stripGarbageHeader drops any bytes preceding the first '{'.
func stripGarbageHeader(data []byte) ([]byte, error) {
	i := strings.IndexByte(string(data), '{')
	if i < 0 {
		return nil, newError(KindBadJSON, "no JSON object found in input")
	}
	return data[i:], nil
}

func readVersion(raw map[string]json.RawMessage) (int, error) {
	v, ok := raw["version"]
	if !ok {
		return 0, newError(KindBadJSON, "missing required field \"version\"")
	}
	var version int
	if err := json.Unmarshal(v, &version); err != nil {
		return 0, wrapError(KindBadJSON, "\"version\" is not a number", err)
	}
	return version, nil
}

// AsRegular returns the decoded regular map and true, or (nil, false) if
// this DecodedMap holds an indexed map instead.
func (d *DecodedMap) AsRegular() (*SourceMap, bool) {
	return d.regular, d.regular != nil
}

// AsIndex returns the decoded indexed map and true, or (nil, false) if
// this DecodedMap holds a regular map instead.
func (d *DecodedMap) AsIndex() (*SourceMapIndex, bool) {
	return d.index, d.index != nil
}

// LookupToken dispatches to whichever variant this DecodedMap holds.
func (d *DecodedMap) LookupToken(line, col uint32) (Token, bool) {
	if d.regular != nil {
		return d.regular.LookupToken(line, col)
	}
	return d.index.LookupToken(line, col)
}

// Encode dispatches to whichever variant this DecodedMap holds.
func (d *DecodedMap) Encode() ([]byte, error) {
	if d.regular != nil {
		return d.regular.Encode()
	}
	return d.index.Encode()
}

// ToRegular decodes data and requires the result to be a regular map,
// failing with ErrIndexedSourcemap otherwise.
func ToRegular(data []byte) (*SourceMap, error) {
	dm, err := DecodeSlice(data)
	if err != nil {
		return nil, err
	}
	sm, ok := dm.AsRegular()
	if !ok {
		return nil, newError(KindIndexedSourcemap, "expected a regular sourcemap, got an indexed sourcemap")
	}
	return sm, nil
}

// ToIndex decodes data and requires the result to be an indexed map,
// failing with ErrRegularSourcemap otherwise.
func ToIndex(data []byte) (*SourceMapIndex, error) {
	dm, err := DecodeSlice(data)
	if err != nil {
		return nil, err
	}
	smi, ok := dm.AsIndex()
	if !ok {
		return nil, newError(KindRegularSourcemap, "expected an indexed sourcemap, got a regular sourcemap")
	}
	return smi, nil
}

func decodeRegularEnvelope(raw map[string]json.RawMessage) (*SourceMap, error) {
	file, hasFile, err := optionalString(raw, "file")
	if err != nil {
		return nil, err
	}

	sourceRoot, hasRoot, err := optionalString(raw, "sourceRoot")
	if err != nil {
		return nil, err
	}

	rawSources, err := decodeNullableStringArray(raw, "sources")
	if err != nil {
		return nil, err
	}
	sources := make([]string, len(rawSources))
	for i, s := range rawSources {
		v := ""
		if s != nil {
			v = *s
		}
		if hasRoot {
			v = joinSourceRoot(sourceRoot, v)
		}
		sources[i] = v
	}

	var names []string
	if raw, ok := raw["names"]; ok {
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, wrapError(KindBadJSON, "\"names\" is not an array of strings", err)
		}
	}

	var mappings string
	if raw, ok := raw["mappings"]; ok {
		if err := json.Unmarshal(raw, &mappings); err != nil {
			return nil, wrapError(KindBadJSON, "\"mappings\" is not a string", err)
		}
	}

	rawContents, err := decodeNullableStringArray(raw, "sourcesContent")
	if err != nil {
		return nil, err
	}
	var sourcesContent []*string
	if rawContents != nil {
		if len(rawContents) != len(sources) {
			return nil, newError(KindBadJSON, "\"sourcesContent\" length does not match \"sources\" length")
		}
		sourcesContent = rawContents
	}

	tokens, err := decodeMappings(mappings)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		if t.hasSource() && int(t.SrcID) >= len(sources) {
			return nil, newError(KindBadJSON, "mapping references a source index out of range")
		}
		if t.hasName() && int(t.NameID) >= len(names) {
			return nil, newError(KindBadJSON, "mapping references a name index out of range")
		}
	}

	return newSourceMap(file, hasFile, tokens, sources, names, sourcesContent), nil
}

func decodeIndexEnvelope(raw map[string]json.RawMessage) (*SourceMapIndex, error) {
	file, hasFile, err := optionalString(raw, "file")
	if err != nil {
		return nil, err
	}

	var rawSections []sectionEnvelope
	if sec, ok := raw["sections"]; ok {
		if err := json.Unmarshal(sec, &rawSections); err != nil {
			return nil, wrapError(KindBadJSON, "\"sections\" is not an array", err)
		}
	}

	sections := make([]*Section, len(rawSections))
	for i, rs := range rawSections {
		sec := &Section{offsetLine: rs.Offset.Line, offsetCol: rs.Offset.Column}
		if rs.Map != nil {
			var childRaw map[string]json.RawMessage
			if err := json.Unmarshal(*rs.Map, &childRaw); err != nil {
				return nil, wrapError(KindBadJSON, "section \"map\" is not a valid object", err)
			}
			child, err := decodeRegularEnvelope(childRaw)
			if err != nil {
				return nil, err
			}
			sec.child = child
		}
		if rs.URL != nil {
			sec.url = *rs.URL
			sec.hasURL = true
		}
		sections[i] = sec
	}

	return newSourceMapIndex(file, hasFile, sections), nil
}

type sectionOffset struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

type sectionEnvelope struct {
	Offset sectionOffset    `json:"offset"`
	Map    *json.RawMessage `json:"map,omitempty"`
	URL    *string          `json:"url,omitempty"`
}

// optionalString reads a string field that may be absent. A JSON null
// value is treated the same as an absent field.
func optionalString(raw map[string]json.RawMessage, key string) (string, bool, error) {
	v, ok := raw[key]
	if !ok {
		return "", false, nil
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false, wrapError(KindBadJSON, fmt.Sprintf("%q is not a string", key), err)
	}
	if s == nil {
		return "", false, nil
	}
	return *s, true, nil
}

// decodeNullableStringArray reads an array of strings where individual
// elements may be JSON null. Returns nil if the key is absent.
func decodeNullableStringArray(raw map[string]json.RawMessage, key string) ([]*string, error) {
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var arr []*string
	if err := json.Unmarshal(v, &arr); err != nil {
		return nil, wrapError(KindBadJSON, fmt.Sprintf("%q is not an array", key), err)
	}
	return arr, nil
}

func isAbsoluteSourcePath(s string) bool {
	if strings.HasPrefix(s, "/") {
		return true
	}
	if i := strings.Index(s, "://"); i > 0 {
		return true
	}
	return false
}

// joinSourceRoot expands a non-absolute source against sourceRoot,
// inserting a single '/' separator when needed.
func joinSourceRoot(root, source string) string {
	if isAbsoluteSourcePath(source) || root == "" {
		return source
	}
	if strings.HasSuffix(root, "/") {
		return root + source
	}
	return root + "/" + source
}

// decodeMappings walks the `mappings` string, maintaining running deltas
// across segments (',') and groups (';'), and returns one RawToken per
// non-empty segment in encounter order.
func decodeMappings(mappings string) ([]RawToken, error) {
	var tokens []RawToken
	c := newVLQCursor(mappings)

	var dstLine, dstCol, srcID, srcLine, srcCol, nameID int64

	for !c.eof() {
		switch c.peek() {
		case ';':
			c.advance()
			dstLine++
			dstCol = 0
			continue
		case ',':
			c.advance()
			continue
		}

		fields, err := decodeSegmentFields(c)
		if err != nil {
			return nil, err
		}

		switch len(fields) {
		case 1:
			dstCol += fields[0]
			tokens = append(tokens, RawToken{
				DstLine: uint32(dstLine), DstCol: uint32(dstCol),
				SrcID: sentinelID, NameID: sentinelID,
			})
		case 4:
			dstCol += fields[0]
			srcID += fields[1]
			srcLine += fields[2]
			srcCol += fields[3]
			tokens = append(tokens, RawToken{
				DstLine: uint32(dstLine), DstCol: uint32(dstCol),
				SrcLine: uint32(srcLine), SrcCol: uint32(srcCol),
				SrcID: uint32(srcID), NameID: sentinelID,
			})
		case 5:
			dstCol += fields[0]
			srcID += fields[1]
			srcLine += fields[2]
			srcCol += fields[3]
			nameID += fields[4]
			tokens = append(tokens, RawToken{
				DstLine: uint32(dstLine), DstCol: uint32(dstCol),
				SrcLine: uint32(srcLine), SrcCol: uint32(srcCol),
				SrcID: uint32(srcID), NameID: uint32(nameID),
			})
		default:
			return nil, newError(KindVlqLeftover, fmt.Sprintf("segment has %d fields, expected 1, 4, or 5", len(fields)))
		}
	}

	return tokens, nil
}

// decodeSegmentFields reads VLQ integers from c until a ',' or ';'
// delimiter or end of input, without consuming the delimiter.
func decodeSegmentFields(c *vlqCursor) ([]int64, error) {
	var fields []int64
	for !c.eof() {
		switch c.peek() {
		case ',', ';':
			return fields, nil
		}
		v, err := c.decodeVLQ()
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
		if len(fields) > 5 {
			return nil, newError(KindVlqLeftover, "segment has more than 5 fields")
		}
	}
	return fields, nil
}
