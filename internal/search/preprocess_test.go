package search

import (
	"strings"
	"testing"
)

func TestParseSections(t *testing.T) {
	md := `preamble line
## Baku
- first tip
* second tip
1. third tip
plain line

### Sub heading
| a | b |
|:--|--:|
|   | only |
## Paris
`
	secs, err := parseSections(strings.NewReader(md))
	if err != nil {
		t.Fatalf("parseSections: %v", err)
	}
	if len(secs) != 2 {
		t.Fatalf("want 2 sections, got %d", len(secs))
	}
	if secs[0].name != "Baku" || secs[1].name != "Paris" {
		t.Fatalf("names = %q, %q", secs[0].name, secs[1].name)
	}
	want := []string{"first tip", "second tip", "third tip", "plain line", "a b", "only"}
	if strings.Join(secs[0].tips, "|") != strings.Join(want, "|") {
		t.Fatalf("tips = %q, want %q", secs[0].tips, want)
	}
	if len(secs[1].tips) != 0 {
		t.Fatalf("empty section should have no tips, got %q", secs[1].tips)
	}
}

func TestParseSections_Error(t *testing.T) {
	if _, err := parseSections(boomReader{}); err == nil {
		t.Fatalf("expected scanner error")
	}
}

func TestFlattenRow(t *testing.T) {
	cases := map[string]string{
		"| a | b |":      "a b",
		"|---|:---:|":    "",
		"| : | - |":      "",
		"|  | x |":       "x",
		"| 1 - 2 | ok |": "1 - 2 ok",
	}
	for in, want := range cases {
		if got := flattenRow(in); got != want {
			t.Errorf("flattenRow(%q) = %q, want %q", in, got, want)
		}
	}
}
