// Package search provides a deterministic, concurrency-safe in-memory index
// of destination travel tips built from a Markdown file.
//
// The source file is split into one section per "## <Destination>" heading.
// Within a section every paragraph, bullet item and table row becomes one
// tip. Destination names are folded (case and diacritics) so "Bakü", "baku"
// and "BAKU" address the same section.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Immutable after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// tip's token set: score = |Q ∩ T| / |Q ∪ T|.
package search

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result is a ranked tip with its similarity score.
type Result struct {
	Destination string  `json:"destination"`
	Snippet     string  `json:"snippet"`
	Score       float64 `json:"score"`
}

// Index answers tip lookups for a destination.
type Index interface {
	// TopK returns up to k tips of destination ranked against query. An
	// empty destination searches every section.
	TopK(destination, query string, k int) []Result
	// Destinations lists the section names in file order.
	Destinations() []string
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	minTipRunes int
	stopwords   map[string]struct{}
}

func defaultConfig() config {
	return config{minTipRunes: 20}
}

// WithMinTipRunes drops tips shorter than n runes.
func WithMinTipRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minTipRunes = n
		}
	}
}

// WithStopwords excludes words from both tips and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			if w = FoldName(w); w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// DefaultStopwords are common English and Turkish filler words.
var DefaultStopwords = []string{
	"the", "a", "an", "in", "of", "to", "and", "or", "is", "are", "for", "on", "at", "with",
	"what", "where", "how", "when", "which", "should", "i", "me", "my", "do", "can",
	"bir", "ve", "ile", "için", "bu", "şu", "ne", "nasıl", "nerede", "hangi", "mi", "mı", "mu", "mü",
}

// ----------------------------------------------------------------------------
// Implementation

type tip struct {
	text   string
	tokens map[string]struct{}
}

type section struct {
	name string
	tips []tip
}

type index struct {
	cfg      config
	order    []string
	sections map[string]*section
}

// NewIndexFromMarkdown builds an Index from the Markdown file at path. On a
// read error it returns an empty, usable index together with the error.
func NewIndexFromMarkdown(path string, opts ...Option) (Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return newIndex(nil, opts), err
	}
	return NewIndexFromReader(bytes.NewReader(b), opts...)
}

// NewIndexFromReader builds an Index from UTF-8 Markdown provided by r.
func NewIndexFromReader(r io.Reader, opts ...Option) (Index, error) {
	secs, err := parseSections(r)
	if err != nil {
		return newIndex(nil, opts), err
	}
	return newIndex(secs, opts), nil
}

// NewIndexFromSections builds an Index from already-split tips keyed by
// destination.
func NewIndexFromSections(tips map[string][]string, opts ...Option) Index {
	names := make([]string, 0, len(tips))
	for name := range tips {
		names = append(names, name)
	}
	sort.Strings(names)
	secs := make([]rawSection, 0, len(names))
	for _, n := range names {
		secs = append(secs, rawSection{name: n, tips: tips[n]})
	}
	return newIndex(secs, opts)
}

func newIndex(raw []rawSection, opts []Option) *index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	ix := &index{cfg: cfg, sections: make(map[string]*section, len(raw))}
	for _, rs := range raw {
		key := FoldName(rs.name)
		if key == "" {
			continue
		}
		sec, ok := ix.sections[key]
		if !ok {
			sec = &section{name: strings.TrimSpace(rs.name)}
			ix.sections[key] = sec
			ix.order = append(ix.order, sec.name)
		}
		for _, t := range rs.tips {
			t = strings.TrimSpace(normalizeWhitespace(t))
			if t == "" || utf8.RuneCountInString(t) < cfg.minTipRunes {
				continue
			}
			toks := tokenize(t, cfg.stopwords)
			if len(toks) == 0 {
				continue
			}
			sec.tips = append(sec.tips, tip{text: t, tokens: toks})
		}
	}
	return ix
}

func (ix *index) Destinations() []string {
	return append([]string(nil), ix.order...)
}

func (ix *index) TopK(destination, q string, k int) []Result {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, ix.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	var secs []*section
	if key := FoldName(destination); key != "" {
		sec, ok := ix.sections[key]
		if !ok {
			return nil
		}
		secs = []*section{sec}
	} else {
		for _, name := range ix.order {
			secs = append(secs, ix.sections[FoldName(name)])
		}
	}

	type scored struct {
		Result
		lenRunes int
	}
	var buf []scored
	for _, sec := range secs {
		for _, t := range sec.tips {
			over := overlap(qTokens, t.tokens)
			if over == 0 {
				continue
			}
			score := float64(over) / float64(len(qTokens)+len(t.tokens)-over)
			buf = append(buf, scored{
				Result:   Result{Destination: sec.name, Snippet: t.text, Score: score},
				lenRunes: utf8.RuneCountInString(t.text),
			})
		}
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].Snippet < buf[b].Snippet
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for i := range out {
		out[i] = buf[i].Result
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

// FoldName lower-cases s and strips combining marks, so destination names
// match regardless of case and diacritics. Transformers carry state, so the
// chain is built per call.
func FoldName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(FoldName(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
