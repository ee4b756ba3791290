package sourcemap

import (
	"encoding/json"
	"testing"

	"golang.org/x/tools/txtar"
)

// fixtureFile returns the contents of name within the txtar archive at
// path, failing the test if either is missing.
func fixtureFile(t *testing.T, path, name string) []byte {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	for _, f := range ar.Files {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("%s: no file named %q in archive", path, name)
	return nil
}

func TestFixture_StripPrefixSentinel(t *testing.T) {
	const path = "testdata/strip_prefix.txtar"
	sm, err := ToRegular(fixtureFile(t, path, "input.map.json"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	out, err := Rewrite(sm, RewriteOptions{WithNames: true, WithSourceContents: true, StripPrefixes: []string{"~"}})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	var want []string
	if err := json.Unmarshal(fixtureFile(t, path, "want.sources.json"), &want); err != nil {
		t.Fatalf("parsing want.sources.json: %v", err)
	}

	got := out.Sources()
	if len(got) != len(want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFixture_FunctionNameRecovery(t *testing.T) {
	const path = "testdata/function_name.txtar"
	minified := string(fixtureFile(t, path, "minified.js"))

	sm, err := ToRegular(fixtureFile(t, path, "input.map.json"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var want struct {
		Line         uint32 `json:"line"`
		Col          uint32 `json:"col"`
		MinifiedName string `json:"minified_name"`
		OriginalName string `json:"original_name"`
	}
	if err := json.Unmarshal(fixtureFile(t, path, "want.json"), &want); err != nil {
		t.Fatalf("parsing want.json: %v", err)
	}

	got, ok := sm.GetOriginalFunctionName(want.Line, want.Col, want.MinifiedName, minified)
	if !ok {
		t.Fatal("GetOriginalFunctionName returned no match")
	}
	if got != want.OriginalName {
		t.Errorf("GetOriginalFunctionName = %q, want %q", got, want.OriginalName)
	}
}
