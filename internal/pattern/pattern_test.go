package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseForms(t *testing.T) {
	tests := []struct {
		raw    string
		kind   Kind
		onPath bool
	}{
		{"", KindNone, false},
		{"lib", KindFuzzy, false},
		{"p/src/lib", KindFuzzy, true},
		{"e/lib", KindLiteral, false},
		{"/li.?b", KindRegex, false},
		{"rp/src/.*", KindRegex, true},
	}
	for _, tt := range tests {
		p, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.raw, err)
		}
		if p.kind != tt.kind {
			t.Errorf("Parse(%q) kind = %d, want %d", tt.raw, p.kind, tt.kind)
		}
		if p.AppliesToPath() != tt.onPath {
			t.Errorf("Parse(%q) onPath = %v, want %v", tt.raw, p.AppliesToPath(), tt.onPath)
		}
	}
}

func TestParseInvalidRegex(t *testing.T) {
	if _, err := Parse("/[unclosed"); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestParseBarePrefixIsNone(t *testing.T) {
	for _, raw := range []string{"/", "e/", "p/"} {
		p, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if !p.IsNone() {
			t.Errorf("Parse(%q) should be the empty pattern", raw)
		}
	}
}

func TestFuzzyMatch(t *testing.T) {
	p := mustParse(t, "lib")

	if _, ok := p.Score("main.c", "main.c"); ok {
		t.Error("'lib' should not match main.c")
	}
	m, ok := p.Score("lib.c", "src/lib.c")
	if !ok {
		t.Fatal("'lib' should match lib.c")
	}
	if m.Score <= 0 {
		t.Errorf("match score should be positive, got %d", m.Score)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, m.Positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyMatchMultibyte(t *testing.T) {
	p := mustParse(t, "mig")

	// "é" is two bytes; positions must still index runes.
	m, ok := p.Score("émigré.c", "émigré.c")
	if !ok {
		t.Fatal("'mig' should match émigré.c")
	}
	if diff := cmp.Diff([]int{1, 2, 3}, m.Positions); diff != "" {
		t.Errorf("rune positions mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyPrefixBeatsScattered(t *testing.T) {
	p := mustParse(t, "lib")
	prefix, ok := p.Score("lib.c", "lib.c")
	if !ok {
		t.Fatal("no match for lib.c")
	}
	scattered, ok := p.Score("logs_in_base.c", "logs_in_base.c")
	if !ok {
		t.Fatal("no match for logs_in_base.c")
	}
	if prefix.Score <= scattered.Score {
		t.Errorf("prefix match (%d) should outrank scattered match (%d)",
			prefix.Score, scattered.Score)
	}
}

func TestLiteralMatch(t *testing.T) {
	p := mustParse(t, "e/EAD")
	m, ok := p.Score("README.md", "README.md")
	if !ok {
		t.Fatal("literal match should be case-insensitive")
	}
	if diff := cmp.Diff([]int{1, 2, 3}, m.Positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if _, ok := p.Score("main.c", "main.c"); ok {
		t.Error("'EAD' should not match main.c")
	}
}

func TestRegexMatch(t *testing.T) {
	p := mustParse(t, `/\.c$`)
	if _, ok := p.Score("README.md", "README.md"); ok {
		t.Error(`\.c$ should not match README.md`)
	}
	m, ok := p.Score("lib.c", "src/lib.c")
	if !ok {
		t.Fatal(`\.c$ should match lib.c`)
	}
	if diff := cmp.Diff([]int{3, 4}, m.Positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestPathPattern(t *testing.T) {
	p := mustParse(t, "p/srclib")
	if _, ok := p.Score("lib.c", "src/lib.c"); !ok {
		t.Error("path pattern should match against the sub-path")
	}
	if _, ok := p.Score("lib.c", "vendor/lib.c"); ok {
		t.Error("path pattern should not match vendor/lib.c")
	}
}

func TestScoreDeterministic(t *testing.T) {
	p := mustParse(t, "lib")
	first, ok := p.Score("lib.c", "src/lib.c")
	if !ok {
		t.Fatal("no match")
	}
	for i := 0; i < 10; i++ {
		again, ok := p.Score("lib.c", "src/lib.c")
		if !ok || again.Score != first.Score {
			t.Fatalf("score not deterministic: %v vs %v", again, first)
		}
	}
}

func mustParse(t *testing.T, raw string) Pattern {
	t.Helper()
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return p
}
