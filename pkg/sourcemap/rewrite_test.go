package sourcemap

import (
	"os"
	"testing"
)

func rewriteFixtureMap(t *testing.T) *SourceMap {
	t.Helper()
	b := NewBuilder()
	idx := b.AddToken(0, 0, 0, 0, "/build/src/a.js", true, "hello", true)
	b.SetSourceContents(idx, "console.log(1)")
	b.AddToken(0, 10, 0, 4, "/build/src/b.js", true, "", false)
	return b.IntoSourceMap()
}

func TestRewrite_DropNames(t *testing.T) {
	sm := rewriteFixtureMap(t)
	out, err := Rewrite(sm, RewriteOptions{WithNames: false, WithSourceContents: true})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if out.NameCount() != 0 {
		t.Errorf("expected no names, got %d", out.NameCount())
	}
	tok, _ := out.GetToken(0)
	if tok.HasName() {
		t.Error("expected token to have no name after WithNames=false")
	}
}

func TestRewrite_DropSourceContents(t *testing.T) {
	sm := rewriteFixtureMap(t)
	out, err := Rewrite(sm, RewriteOptions{WithNames: true, WithSourceContents: false})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if out.HasSourceContents(0) {
		t.Error("expected source contents dropped")
	}
}

func TestRewrite_StripExplicitPrefix(t *testing.T) {
	sm := rewriteFixtureMap(t)
	out, err := Rewrite(sm, RewriteOptions{WithNames: true, WithSourceContents: true, StripPrefixes: []string{"/build/"}})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	s0, _ := out.Source(0)
	if s0 != "src/a.js" {
		t.Errorf("source = %q, want src/a.js", s0)
	}
}

func TestRewrite_PrefixSentinel(t *testing.T) {
	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "/a/b/x.js", true, "", false)
	b.AddToken(0, 1, 0, 0, "/a/b/y.js", true, "", false)
	sm := b.IntoSourceMap()

	out, err := Rewrite(sm, RewriteOptions{StripPrefixes: []string{"~"}})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	want := []string{"x.js", "y.js"}
	got := out.Sources()
	if !stringSlicesEqual(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	sm := rewriteFixtureMap(t)
	opts := RewriteOptions{WithNames: true, WithSourceContents: true, StripPrefixes: []string{"/build/"}}

	once, err := Rewrite(sm, opts)
	if err != nil {
		t.Fatalf("first Rewrite failed: %v", err)
	}
	twice, err := Rewrite(once, opts)
	if err != nil {
		t.Fatalf("second Rewrite failed: %v", err)
	}

	if !stringSlicesEqual(once.Sources(), twice.Sources()) {
		t.Errorf("sources changed across idempotent rewrite: %v vs %v", once.Sources(), twice.Sources())
	}
	if once.TokenCount() != twice.TokenCount() {
		t.Errorf("token count changed: %d vs %d", once.TokenCount(), twice.TokenCount())
	}
	onceTokens, twiceTokens := once.Tokens(), twice.Tokens()
	for i := range onceTokens {
		if onceTokens[i].Raw() != twiceTokens[i].Raw() {
			t.Errorf("token %d changed across idempotent rewrite", i)
		}
	}
}

func TestRewrite_LoadLocalSourceContents(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/a.js", []byte("console.log('a')"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "a.js", true, "", false)
	sm := b.IntoSourceMap()

	out, err := Rewrite(sm, RewriteOptions{LoadLocalSourceContents: true, BasePath: dir})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	content, ok := out.SourceContents(0)
	if !ok || content != "console.log('a')" {
		t.Errorf("sourceContents(0) = %q, ok=%v", content, ok)
	}
}

func TestRewrite_LoadLocalSourceContents_MissingFileLeftAbsent(t *testing.T) {
	dir := t.TempDir()

	b := NewBuilder()
	b.AddToken(0, 0, 0, 0, "missing.js", true, "", false)
	sm := b.IntoSourceMap()

	out, err := Rewrite(sm, RewriteOptions{LoadLocalSourceContents: true, BasePath: dir})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if out.HasSourceContents(0) {
		t.Error("expected no content for a source that doesn't resolve to a file")
	}
}

