// Package intent classifies free-text chat messages into one of a fixed set
// of intents and extracts the entities each intent needs.
//
// Classification walks an ordered list of rules, one group per intent, in
// the priority order travel_request, feedback, question, greeting. The first
// rule that accepts the message wins; a message no rule accepts is general.
// Patterns are Unicode-aware and cover Turkish and English phrasings.
//
// A Classifier is immutable after construction and safe for concurrent use.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent is the classified purpose of a message.
type Intent string

const (
	TravelRequest Intent = "travel_request"
	Feedback      Intent = "feedback"
	Question      Intent = "question"
	Greeting      Intent = "greeting"
	General       Intent = "general"
)

// Sentiment is the polarity recorded with feedback.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Entities holds values extracted from a message. Only travel_request and
// feedback populate it.
type Entities struct {
	Destination string    `json:"destination,omitempty"`
	Days        int       `json:"days,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
}

// Result is the outcome of classifying one message.
type Result struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// rule pairs an intent with a predicate that also extracts entities.
type rule struct {
	intent Intent
	match  func(text string) (Entities, bool)
}

// Classifier maps messages to intents.
type Classifier struct {
	rules     []rule
	stopwords map[string]struct{}
}

// defaultStopwords are tokens the travel patterns may capture that can never
// be a destination.
var defaultStopwords = []string{
	// Turkish connectives and trip words
	"için", "ye", "ya", "da", "de", "seyahat", "gitmek", "gideceğim", "günlük", "plan",
	"gün", "ben", "biz", "sen", "bir", "tatil", "gezi", "yap", "hazırla",
	// English fillers
	"days", "day", "nights", "night", "for", "the", "trip", "plan", "have", "want",
	"need", "spend", "stay", "staying", "going", "about", "with", "next", "only",
	"just", "around", "travel", "vacation", "holiday", "itinerary", "and", "make",
}

var (
	travelPatterns = []*regexp.Regexp{
		// bakü'ye 5 gün / paris için 4 gün / istanbul'da 3 günlük
		regexp.MustCompile(`(\p{L}+)(?:['’](?:ye|ya|a|e|da|de|ta|te|na|ne)|\s+için)?\s+(\d+)\s*gün`),
		// 5 gün bakü'ye gideceğim / 3 gün paris seyahat
		regexp.MustCompile(`(\d+)\s*gün(?:lük)?\s+(?:\p{L}+\s+)*?(\p{L}+)(?:['’]\p{L}+)?\s+(?:seyahat|gitmek|gideceğim|gezi)`),
		// istanbul 3 günlük plan
		regexp.MustCompile(`(\p{L}+)\s+(\d+)\s*günlük\s*plan`),
		// 5 days in baku / 3 day trip to paris
		regexp.MustCompile(`(\d+)[\s-]*(?:days?|nights?)\s+(?:(?:trip|plan|itinerary|holiday|vacation)\s+)?(?:in|to|at|for|around)\s+(\p{L}+)`),
		// baku for 5 days / paris 3 days
		regexp.MustCompile(`(\p{L}+)\s+(?:for\s+)?(\d+)[\s-]*(?:days?|nights?)`),
	}

	positiveFeedback = substrings("beğendim", "güzel", "harika", "mükemmel", "süper")
	positiveEnglish  = words("loved", "love it", "great", "excellent", "awesome", "amazing", "perfect", "liked")
	negativeFeedback = substrings("beğenmedim", "kötü", "berbat", "hiç iyi değil")
	negativeEnglish  = words("hated", "terrible", "awful", "bad", "disliked", "didn't like", "not good")
	ratingPattern    = regexp.MustCompile(`(\d+)\s*(?:puan|yıldız|stars?|/\s*5)`)

	// strings.ToLower maps "İ" to "i" plus a combining dot, which would
	// split words like "İstanbul".
	dottedCapitalI = strings.NewReplacer("İ", "i")

	questionPatterns = []*regexp.Regexp{
		words("nedir", "nasıl", "ne zaman", "nerede", "kim", "hangi", "what", "how", "when", "where", "which", "who"),
		regexp.MustCompile(`\?`),
		substrings("önerir misin", "tavsiye", "öneri", "recommend", "suggest"),
	}

	greetingPatterns = []*regexp.Regexp{
		words("merhaba", "selam", "hey", "hi", "hello", "good morning", "good evening"),
		words("nasılsın", "naber", "ne var ne yok"),
	}
)

// New returns a Classifier with the built-in rule set.
func New() *Classifier {
	c := &Classifier{stopwords: make(map[string]struct{}, len(defaultStopwords))}
	for _, w := range defaultStopwords {
		c.stopwords[w] = struct{}{}
	}

	for _, re := range travelPatterns {
		c.rules = append(c.rules, rule{intent: TravelRequest, match: c.travelMatcher(re)})
	}
	c.rules = append(c.rules, rule{intent: Feedback, match: matchFeedback})
	for _, re := range questionPatterns {
		c.rules = append(c.rules, rule{intent: Question, match: matchOnly(re)})
	}
	for _, re := range greetingPatterns {
		c.rules = append(c.rules, rule{intent: Greeting, match: matchOnly(re)})
	}
	return c
}

// Classify returns the intent of message and its entities. It never fails:
// text no rule accepts is General.
func (c *Classifier) Classify(message string) Result {
	text := strings.ToLower(dottedCapitalI.Replace(strings.TrimSpace(message)))
	for _, r := range c.rules {
		if ents, ok := r.match(text); ok {
			return Result{Intent: r.intent, Entities: ents}
		}
	}
	return Result{Intent: General}
}

// travelMatcher accepts a match only when it yields both a day count and a
// destination. Every match of re in the text is tried in order.
func (c *Classifier) travelMatcher(re *regexp.Regexp) func(string) (Entities, bool) {
	return func(text string) (Entities, bool) {
		for _, groups := range re.FindAllStringSubmatch(text, -1) {
			var e Entities
			for _, g := range groups[1:] {
				if g == "" {
					continue
				}
				if n, err := strconv.Atoi(g); err == nil {
					if n > 0 {
						e.Days = n
					}
					continue
				}
				if utf8.RuneCountInString(g) > 2 && !c.isStopword(g) {
					e.Destination = titleCase(g)
				}
			}
			if e.Days > 0 && e.Destination != "" {
				return e, true
			}
		}
		return Entities{}, false
	}
}

func (c *Classifier) isStopword(w string) bool {
	_, ok := c.stopwords[w]
	return ok
}

func matchFeedback(text string) (Entities, bool) {
	pos := positiveFeedback.MatchString(text) || positiveEnglish.MatchString(text)
	neg := !pos && (negativeFeedback.MatchString(text) || negativeEnglish.MatchString(text))
	m := ratingPattern.FindStringSubmatch(text)
	if !pos && !neg && m == nil {
		return Entities{}, false
	}

	var e Entities
	switch {
	case pos:
		e.Sentiment, e.Rating = Positive, 5
	case neg:
		e.Sentiment, e.Rating = Negative, 1
	default:
		e.Sentiment = Neutral
	}
	if m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			e.Rating = clampRating(n)
		}
	}
	return e, true
}

func matchOnly(re *regexp.Regexp) func(string) (Entities, bool) {
	return func(text string) (Entities, bool) {
		return Entities{}, re.MatchString(text)
	}
}

func clampRating(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 5:
		return 5
	}
	return n
}

// titleCase upper-cases the first letter of each word. A Caser is not safe
// for concurrent use, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// words matches any of ws as whole words. Go's \b is ASCII-only, so letter
// boundaries are spelled out to handle Turkish characters.
func words(ws ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}'])(?:` + alternation(ws) + `)(?:$|[^\p{L}\p{N}])`)
}

// substrings matches any of ws anywhere in the text.
func substrings(ws ...string) *regexp.Regexp {
	return regexp.MustCompile(alternation(ws))
}

func alternation(ws []string) string {
	quoted := make([]string, len(ws))
	for i, w := range ws {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
