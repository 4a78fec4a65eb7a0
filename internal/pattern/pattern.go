// Package pattern implements the search patterns used to filter trees:
// fuzzy subsequence, literal substring, and regular expression, each
// applicable to file names or to whole sub-paths.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Kind identifies the form of a pattern.
type Kind int

const (
	KindNone Kind = iota
	KindFuzzy
	KindLiteral
	KindRegex
)

// Pattern is a compiled search pattern. The zero value matches nothing
// and reports IsNone.
type Pattern struct {
	// Raw is the pattern as the user typed it, prefix included.
	Raw string

	kind   Kind
	onPath bool
	query  string
	re     *regexp.Regexp
}

// Match is a successful evaluation of a pattern against a candidate.
type Match struct {
	// Score ranks this match against others; higher is better.
	Score int

	// Positions are the rune indexes of the matched characters in the
	// candidate string, for highlighting.
	Positions []int
}

// None returns the empty pattern.
func None() Pattern {
	return Pattern{}
}

// Parse compiles a raw pattern string.
//
// Syntax:
//
//	text      fuzzy match on file names
//	p/text    fuzzy match on sub-paths
//	e/text    literal (case-insensitive) substring on file names
//	/re       regular expression on file names
//	rp/re     regular expression on sub-paths
func Parse(raw string) (Pattern, error) {
	if raw == "" {
		return None(), nil
	}
	p := Pattern{Raw: raw, kind: KindFuzzy, query: raw}
	switch {
	case strings.HasPrefix(raw, "rp/"):
		p.kind = KindRegex
		p.onPath = true
		p.query = raw[3:]
	case strings.HasPrefix(raw, "p/"):
		p.kind = KindFuzzy
		p.onPath = true
		p.query = raw[2:]
	case strings.HasPrefix(raw, "e/"):
		p.kind = KindLiteral
		p.query = raw[2:]
	case strings.HasPrefix(raw, "/"):
		p.kind = KindRegex
		p.query = raw[1:]
	}
	if p.query == "" {
		return None(), nil
	}
	if p.kind == KindRegex {
		re, err := regexp.Compile(p.query)
		if err != nil {
			return None(), fmt.Errorf("invalid regex %q: %w", p.query, err)
		}
		p.re = re
	}
	return p, nil
}

// IsNone reports whether the pattern is empty.
func (p Pattern) IsNone() bool {
	return p.kind == KindNone
}

// AppliesToPath reports whether the pattern is evaluated against the
// sub-path rather than the file name.
func (p Pattern) AppliesToPath() bool {
	return p.onPath
}

// Score evaluates the pattern against a candidate. name is the entry
// name and subPath the path relative to the tree root; the pattern form
// decides which one is used. The returned positions index into the
// chosen candidate. Equal inputs always yield equal results.
func (p Pattern) Score(name, subPath string) (Match, bool) {
	candidate := name
	if p.onPath {
		candidate = subPath
	}
	switch p.kind {
	case KindFuzzy:
		return p.scoreFuzzy(candidate)
	case KindLiteral:
		return p.scoreLiteral(candidate)
	case KindRegex:
		return p.scoreRegex(candidate)
	}
	return Match{}, false
}

// scoreFuzzy delegates subsequence matching to sahilm/fuzzy, which
// rewards contiguous runs and matches anchored at segment boundaries,
// then adds bonuses so exact and prefix matches outrank scattered ones.
func (p Pattern) scoreFuzzy(candidate string) (Match, bool) {
	results := fuzzy.Find(p.query, []string{candidate})
	if len(results) == 0 {
		return Match{}, false
	}
	m := results[0]
	score := m.Score + fuzzyBase
	lq, lc := strings.ToLower(p.query), strings.ToLower(candidate)
	if lq == lc {
		score += exactBonus
	} else if strings.HasPrefix(lc, lq) {
		score += prefixBonus
	}
	// MatchedIndexes are byte offsets; Positions are rune indexes.
	positions := make([]int, len(m.MatchedIndexes))
	for i, b := range m.MatchedIndexes {
		positions[i] = utf8.RuneCountInString(candidate[:b])
	}
	return Match{Score: score, Positions: positions}, true
}

func (p Pattern) scoreLiteral(candidate string) (Match, bool) {
	lq, lc := strings.ToLower(p.query), strings.ToLower(candidate)
	byteIdx := strings.Index(lc, lq)
	if byteIdx < 0 {
		return Match{}, false
	}
	start := len([]rune(candidate[:byteIdx]))
	n := len([]rune(p.query))
	positions := make([]int, n)
	for i := range positions {
		positions[i] = start + i
	}
	score := fuzzyBase + exactBonus/2 - start
	if start == 0 {
		score += prefixBonus
	}
	return Match{Score: score, Positions: positions}, true
}

func (p Pattern) scoreRegex(candidate string) (Match, bool) {
	loc := p.re.FindStringIndex(candidate)
	if loc == nil {
		return Match{}, false
	}
	start := len([]rune(candidate[:loc[0]]))
	n := len([]rune(candidate[loc[0]:loc[1]]))
	positions := make([]int, n)
	for i := range positions {
		positions[i] = start + i
	}
	return Match{Score: regexScore - start, Positions: positions}, true
}

// Score layering: any literal or fuzzy prefix/exact match must beat a
// scattered subsequence match, and every match must score positive.
const (
	fuzzyBase   = 1000
	prefixBonus = 500
	exactBonus  = 1000
	regexScore  = 800
)
