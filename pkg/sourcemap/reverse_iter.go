package sourcemap

import "unicode/utf8"

// reverseTokenIter walks a SourceMap's tokens backwards by token index,
// starting from LookupToken(line, col), extracting the identifier at each
// token's generated position in source as it goes. When two consecutive
// tokens share a generated line, the byte offset for the second is found
// by walking backwards from the first token's cached offset instead of
// rescanning the line from column zero, keeping the walk linear in token
// count on pathologically long minified lines.
type reverseTokenIter struct {
	sm     *SourceMap
	source string
	cur    *Token // nil once exhausted

	haveCache    bool
	cacheLine    string
	cacheDstLine uint32
	cacheDstCol  uint32
	cacheByteOff int
}

func newReverseTokenIter(sm *SourceMap, line, col uint32, source string) *reverseTokenIter {
	it := &reverseTokenIter{sm: sm, source: source}
	if tok, ok := sm.LookupToken(line, col); ok {
		it.cur = &tok
	}
	return it
}

// next returns the next token in the backward walk along with the
// identifier extracted at its generated position (empty if none), and
// false once the walk is exhausted.
func (it *reverseTokenIter) next() (Token, string, bool) {
	if it.cur == nil {
		return Token{}, "", false
	}
	token := *it.cur

	if token.Index() > 0 {
		if prev, ok := it.sm.GetToken(token.Index() - 1); ok {
			it.cur = &prev
		} else {
			it.cur = nil
		}
	} else {
		it.cur = nil
	}

	var sourceLine string
	var lastCharOffset, lastByteOffset int
	haveLast := it.haveCache && it.cacheDstLine == token.DstLine()
	if haveLast {
		sourceLine = it.cacheLine
		lastCharOffset = int(it.cacheDstCol)
		lastByteOffset = it.cacheByteOff
	} else if line, ok := lineAt(it.source, int(token.DstLine())); ok {
		sourceLine = line
	}

	var byteOffset int
	if !haveLast {
		off, ok := utf16ColToByteOffset(sourceLine, int(token.DstCol()))
		if ok {
			byteOffset = off
		} else {
			byteOffset = len(sourceLine)
		}
	} else {
		charsToMove := lastCharOffset - int(token.DstCol())
		offset := lastByteOffset
		moved := 0
		for offset > 0 && moved < charsToMove {
			r, w := utf8.DecodeLastRuneInString(sourceLine[:offset])
			offset -= w
			moved += utf16RuneLen(r)
		}
		byteOffset = offset
	}

	it.cacheLine = sourceLine
	it.cacheDstLine = token.DstLine()
	it.cacheDstCol = token.DstCol()
	it.cacheByteOff = byteOffset
	it.haveCache = true

	if byteOffset >= len(sourceLine) {
		it.haveCache = false
		return token, "", true
	}
	ident, ok := extractIdentifier(sourceLine[byteOffset:])
	if !ok {
		return token, "", true
	}
	return token, ident, true
}
