package sourcemap

import "testing"

func twoSectionIndex(t *testing.T) *SourceMapIndex {
	t.Helper()
	b1 := NewBuilder()
	b1.AddToken(0, 0, 0, 0, "a.js", true, "", false)
	child1 := b1.IntoSourceMap()

	b2 := NewBuilder()
	b2.AddToken(0, 0, 0, 0, "b.js", true, "", false)
	child2 := b2.IntoSourceMap()

	data1, _ := child1.Encode()
	data2, _ := child2.Encode()
	c1, err := ToRegular(data1)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := ToRegular(data2)
	if err != nil {
		t.Fatal(err)
	}

	sec1 := &Section{offsetLine: 0, offsetCol: 0, child: c1}
	sec2 := &Section{offsetLine: 10, offsetCol: 0, child: c2}
	return newSourceMapIndex("combined.js", true, []*Section{sec1, sec2})
}

func TestSourceMapIndex_LookupToken(t *testing.T) {
	smi := twoSectionIndex(t)

	tok, ok := smi.LookupToken(10, 0)
	if !ok {
		t.Fatal("expected a match at 10:0")
	}
	src, _ := tok.Source()
	if src != "b.js" {
		t.Errorf("source = %q, want b.js (second section)", src)
	}

	tok, ok = smi.LookupToken(0, 0)
	if !ok {
		t.Fatal("expected a match at 0:0")
	}
	src, _ = tok.Source()
	if src != "a.js" {
		t.Errorf("source = %q, want a.js (first section)", src)
	}
}

func TestSourceMapIndex_LookupToken_TranslatesLineAndCol(t *testing.T) {
	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "a.js", true, "", false)
	b.AddToken(0, 20, 0, 0, "a.js", true, "", false)
	child := b.IntoSourceMap()
	sec := &Section{offsetLine: 10, offsetCol: 5, child: child}
	smi := newSourceMapIndex("", false, []*Section{sec})

	tok, ok := smi.LookupToken(10, 12)
	if !ok {
		t.Fatal("expected a match at 10:12")
	}
	if tok.DstLine() != 0 || tok.DstCol() != 0 {
		t.Errorf("token = (%d,%d), want (0,0) after translating to local coordinates", tok.DstLine(), tok.DstCol())
	}

	tok, ok = smi.LookupToken(12, 20)
	if !ok {
		t.Fatal("expected a match at 12:20")
	}
	if tok.DstLine() != 0 || tok.DstCol() != 20 {
		t.Errorf("token = (%d,%d), want (0,20) for a later local line", tok.DstLine(), tok.DstCol())
	}
}

func TestSourceMapIndex_LookupToken_BeforeAnySection(t *testing.T) {
	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "a.js", true, "", false)
	sec := &Section{offsetLine: 5, offsetCol: 0, child: b.IntoSourceMap()}
	smi := newSourceMapIndex("", false, []*Section{sec})

	if _, ok := smi.LookupToken(0, 0); ok {
		t.Error("expected no match before the first section's offset")
	}
}

func TestSection_SetMapReplacesChild(t *testing.T) {
	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "old.js", true, "", false)
	sec := &Section{offsetLine: 0, offsetCol: 0, url: "old.js.map", hasURL: true, child: b.IntoSourceMap()}
	smi := newSourceMapIndex("", false, []*Section{sec})

	nb := NewBuilder()
	nb.AddToken(0, 0, 0, 0, "new.js", true, "", false)
	sec.SetMap(nb.IntoSourceMap())

	tok, ok := smi.LookupToken(0, 0)
	if !ok {
		t.Fatal("expected a match after replacing the child map")
	}
	if src, _ := tok.Source(); src != "new.js" {
		t.Errorf("source = %q, want new.js (replacement child)", src)
	}

	sec.SetMap(nil)
	if _, ok := sec.Map(); ok {
		t.Error("expected no inline map after SetMap(nil)")
	}
	if _, ok := smi.LookupToken(0, 0); ok {
		t.Error("expected no match once the section has no inline map")
	}
}

func TestFlatten_ShiftsTokensBySectionOffset(t *testing.T) {
	smi := twoSectionIndex(t)

	flat, err := smi.Flatten()
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if flat.TokenCount() != 2 {
		t.Fatalf("expected 2 tokens, got %d", flat.TokenCount())
	}

	tok0, _ := flat.GetToken(0)
	if tok0.DstLine() != 0 {
		t.Errorf("first token dstLine = %d, want 0", tok0.DstLine())
	}
	tok1, _ := flat.GetToken(1)
	if tok1.DstLine() != 10 {
		t.Errorf("second token dstLine = %d, want 10 (shifted by section offset)", tok1.DstLine())
	}
}

func TestFlatten_ShiftsColumnOnEveryLine(t *testing.T) {
	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "a.js", true, "", false)
	b.AddToken(1, 3, 0, 0, "a.js", true, "", false)
	child := b.IntoSourceMap()
	sec := &Section{offsetLine: 10, offsetCol: 5, child: child}
	smi := newSourceMapIndex("", false, []*Section{sec})

	flat, err := smi.Flatten()
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	tok0, _ := flat.GetToken(0)
	if tok0.DstLine() != 10 || tok0.DstCol() != 5 {
		t.Errorf("first token = (%d,%d), want (10,5)", tok0.DstLine(), tok0.DstCol())
	}
	tok1, _ := flat.GetToken(1)
	if tok1.DstLine() != 11 || tok1.DstCol() != 8 {
		t.Errorf("second token = (%d,%d), want (11,8) (column offset applied on every line, not just the first)", tok1.DstLine(), tok1.DstCol())
	}
}

func TestFlatten_FailsWithoutInlineMap(t *testing.T) {
	sec := &Section{offsetLine: 0, offsetCol: 0, url: "remote.js.map", hasURL: true}
	smi := newSourceMapIndex("", false, []*Section{sec})

	_, err := smi.Flatten()
	if err == nil {
		t.Fatal("expected an error flattening a section without an inline map")
	}
	if smErr, ok := err.(*Error); !ok || smErr.Kind != KindCannotFlatten {
		t.Errorf("expected KindCannotFlatten, got %v", err)
	}
}

func TestFlattenAndRewrite_DedupsDuplicateSourceStrings(t *testing.T) {
	b1 := NewBuilder()
	b1.AddToken(0, 0, 0, 0, "shared.js", true, "", false)
	data1, _ := b1.IntoSourceMap().Encode()
	c1, _ := ToRegular(data1)

	b2 := NewBuilder()
	b2.AddToken(0, 0, 0, 0, "shared.js", true, "", false)
	data2, _ := b2.IntoSourceMap().Encode()
	c2, _ := ToRegular(data2)

	sec1 := &Section{offsetLine: 0, offsetCol: 0, child: c1}
	sec2 := &Section{offsetLine: 5, offsetCol: 0, child: c2}
	smi := newSourceMapIndex("", false, []*Section{sec1, sec2})

	out, err := smi.FlattenAndRewrite(DefaultRewriteOptions())
	if err != nil {
		t.Fatalf("FlattenAndRewrite failed: %v", err)
	}
	if out.SourceCount() != 1 {
		t.Errorf("expected sources deduplicated to 1 entry, got %d: %v", out.SourceCount(), out.Sources())
	}
}
