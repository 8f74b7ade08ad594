package search

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type boomReader struct{}

func (boomReader) Read(_ []byte) (int, error) { return 0, errors.New("boom") }

const sampleTips = `# Tips

Intro text that belongs to no destination.

## Bakü

The Baku Metro is the cheapest way to cross the city; buy a BakuKart.
- Try plov and dolma at a local restaurant near the Old City.
Short.

## Paris

Book the Louvre online in advance to skip the long queues.
| Museum | Free day |
|---|:---:|
| Louvre | first Sunday of the month |

### Getting around
A Navigo Easy card is the simplest way to use the metro.
`

func newSample(t *testing.T, opts ...Option) Index {
	t.Helper()
	ix, err := NewIndexFromReader(strings.NewReader(sampleTips), opts...)
	if err != nil {
		t.Fatalf("NewIndexFromReader: %v", err)
	}
	return ix
}

func TestOptionsAndDefaults(t *testing.T) {
	def := defaultConfig()
	if def.minTipRunes != 20 || def.stopwords != nil {
		t.Fatalf("defaultConfig unexpected: %#v", def)
	}

	cfg := def
	WithMinTipRunes(5)(&cfg)
	WithMinTipRunes(-1)(&cfg) // ignored
	if cfg.minTipRunes != 5 {
		t.Fatalf("WithMinTipRunes = %d, want 5", cfg.minTipRunes)
	}

	WithStopwords([]string{"  The ", "", "İÇİN"})(&cfg)
	if _, ok := cfg.stopwords["the"]; !ok {
		t.Fatalf("missing folded 'the': %#v", cfg.stopwords)
	}
	if _, ok := cfg.stopwords["icin"]; !ok {
		t.Fatalf("missing folded 'icin': %#v", cfg.stopwords)
	}

	cfg2 := def
	WithStopwords(nil)(&cfg2)
	if cfg2.stopwords != nil {
		t.Fatalf("empty stopwords should remain nil")
	}
}

func TestFoldName(t *testing.T) {
	cases := map[string]string{
		"Bakü":      "baku",
		" BAKU ":    "baku",
		"İstanbul":  "istanbul",
		"Kadıköy":   "kadıkoy",
		"Saint-Émi": "saint-emi",
		"":          "",
	}
	for in, want := range cases {
		if got := FoldName(in); got != want {
			t.Errorf("FoldName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDestinationsAndSections(t *testing.T) {
	ix := newSample(t)
	got := ix.Destinations()
	if len(got) != 2 || got[0] != "Bakü" || got[1] != "Paris" {
		t.Fatalf("Destinations = %v", got)
	}
	got[0] = "mutated"
	if ix.Destinations()[0] != "Bakü" {
		t.Fatalf("Destinations must return a copy")
	}
}

func TestTopK_ScopedToDestination(t *testing.T) {
	ix := newSample(t, WithStopwords(DefaultStopwords))

	res := ix.TopK("baku", "where can I try plov", 3)
	if len(res) != 1 {
		t.Fatalf("want 1 result, got %d: %+v", len(res), res)
	}
	if res[0].Destination != "Bakü" || !strings.HasPrefix(res[0].Snippet, "Try plov") {
		t.Fatalf("unexpected top result: %+v", res[0])
	}

	// metro appears in both sections; scoping keeps Paris out.
	for _, r := range ix.TopK("Bakü", "metro", 5) {
		if r.Destination != "Bakü" {
			t.Fatalf("leaked result from %s", r.Destination)
		}
	}
}

func TestTopK_AllDestinations(t *testing.T) {
	ix := newSample(t, WithStopwords(DefaultStopwords))
	res := ix.TopK("", "metro", 5)
	if len(res) != 2 {
		t.Fatalf("want 2 metro tips, got %+v", res)
	}
	for i := 1; i < len(res); i++ {
		if res[i-1].Score < res[i].Score {
			t.Fatalf("results not sorted: %+v", res)
		}
	}
}

func TestTopK_TablesAndBullets(t *testing.T) {
	ix := newSample(t)
	res := ix.TopK("paris", "louvre free sunday", 1)
	if len(res) != 1 || res[0].Snippet != "Louvre first Sunday of the month" {
		t.Fatalf("table row not flattened: %+v", res)
	}
	for _, r := range ix.TopK("paris", "museum free day", 10) {
		if strings.Contains(r.Snippet, "---") {
			t.Fatalf("separator row indexed: %q", r.Snippet)
		}
	}
}

func TestTopK_EdgeCases(t *testing.T) {
	ix := newSample(t)
	if r := ix.TopK("paris", "   ", 3); r != nil {
		t.Fatalf("blank query should return nil, got %+v", r)
	}
	if r := ix.TopK("atlantis", "metro", 3); r != nil {
		t.Fatalf("unknown destination should return nil, got %+v", r)
	}
	if r := ix.TopK("baku", "short", 3); r != nil {
		t.Fatalf("tips under the rune minimum must be dropped, got %+v", r)
	}
	if r := ix.TopK("", "intro", 3); r != nil {
		t.Fatalf("text before the first section must be ignored, got %+v", r)
	}
	if r := ix.TopK("paris", "metro", 0); len(r) != 1 {
		t.Fatalf("k<=0 should default to 3 and find the metro tip, got %+v", r)
	}
}

func TestTopK_TieBreakDeterministic(t *testing.T) {
	ix := NewIndexFromSections(map[string][]string{
		"Paris": {
			"metro tickets bbbbbbbbbbbbbbbbbb",
			"metro tickets aaaaaaaaaaaaaaaaaa",
		},
	})
	res := ix.TopK("Paris", "metro tickets", 2)
	if len(res) != 2 || res[0].Snippet >= res[1].Snippet {
		t.Fatalf("ties must break lexicographically: %+v", res)
	}
}

func TestNewIndexFromMarkdown(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tips.md")
	if err := os.WriteFile(p, []byte(sampleTips), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ix, err := NewIndexFromMarkdown(p)
	if err != nil {
		t.Fatalf("NewIndexFromMarkdown: %v", err)
	}
	if len(ix.TopK("paris", "louvre", 3)) == 0 {
		t.Fatalf("expected results from file-backed index")
	}

	empty, err := NewIndexFromMarkdown(filepath.Join(dir, "missing.md"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if empty == nil || empty.TopK("paris", "louvre", 3) != nil || len(empty.Destinations()) != 0 {
		t.Fatalf("missing file must yield a usable empty index")
	}
}

func TestNewIndexFromReader_Error(t *testing.T) {
	ix, err := NewIndexFromReader(boomReader{})
	if err == nil {
		t.Fatalf("expected read error")
	}
	if ix == nil || ix.TopK("", "anything", 3) != nil {
		t.Fatalf("reader error must yield a usable empty index")
	}
}

func TestTopK_ConcurrentUse(t *testing.T) {
	ix := newSample(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if len(ix.TopK("Bakü", "metro city", 2)) == 0 {
				t.Errorf("no results under concurrency")
			}
		}()
	}
	wg.Wait()
}

func TestShippedTipsFile(t *testing.T) {
	ix, err := NewIndexFromMarkdown(filepath.Join("..", "..", "data", "travel_tips.md"), WithStopwords(DefaultStopwords))
	if err != nil {
		t.Fatalf("load shipped tips: %v", err)
	}
	for _, d := range []string{"Baku", "Istanbul", "Paris"} {
		if len(ix.TopK(d, "metro museum restaurant weather", 3)) == 0 {
			t.Errorf("no tips for %s", d)
		}
	}
}
