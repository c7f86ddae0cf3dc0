package dimension

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Token is one measurement found in recognized text.
type Token struct {
	// Value is the numeric part of the match, in Unit.
	Value float64 `json:"value"`

	// Unit is the unit family that matched.
	Unit Unit `json:"unit"`

	// RawText is the matched substring, kept for the audit trail.
	RawText string `json:"raw_text"`

	// Start and End are byte offsets of RawText in the parsed input.
	Start int `json:"start"`
	End   int `json:"end"`
}

// family is one independently scanned unit pattern.
type family struct {
	unit Unit
	re   *regexp.Regexp
	// reject reports whether a match must be dropped after inspecting the
	// surrounding text. RE2 has no lookahead, so context checks live here.
	reject func(text string, loc []int) bool
}

var families = []family{
	{
		unit:   Meter,
		re:     regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:m|meters?|metre)s?\b`),
		reject: wordRuneFollows,
	},
	{
		unit:   Foot,
		re:     regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ft|feet|foot|')`),
		reject: apostropheBeforeQuote,
	},
	{
		unit:   Inch,
		re:     regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:(?:in|inch|inches)\b|")`),
		reject: wordRuneFollows,
	},
}

// apostropheBeforeQuote drops a feet mark that is really the first half of an
// inches mark written as two apostrophes ('').
func apostropheBeforeQuote(text string, loc []int) bool {
	if text[loc[4]:loc[5]] != "'" {
		return false
	}
	return loc[1] < len(text) && text[loc[1]] == '"'
}

// wordRuneFollows drops a unit word glued to a non-ASCII letter or digit,
// such as the m in "20m²". RE2's \b only knows ASCII word characters.
func wordRuneFollows(text string, loc []int) bool {
	last, _ := utf8.DecodeLastRuneInString(text[loc[0]:loc[1]])
	if !unicode.IsLetter(last) || loc[1] >= len(text) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(text[loc[1]:])
	return unicode.IsLetter(next) || unicode.IsNumber(next) || next == '_'
}

// Parse extracts every linear dimension from text.
//
// Each unit family is scanned over the full input. Tokens are returned in
// order of appearance; tokens starting at the same offset keep the family
// order meter, foot, inch. Duplicates are kept. Text without any
// unit-bearing number yields an empty, non-nil slice.
//
// Matches whose number does not parse as a finite float are skipped.
func Parse(text string) []Token {
	tokens := make([]Token, 0)
	for _, f := range families {
		for _, loc := range f.re.FindAllStringSubmatchIndex(text, -1) {
			if f.reject != nil && f.reject(text, loc) {
				continue
			}
			v, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
			if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			tokens = append(tokens, Token{
				Value:   v,
				Unit:    f.unit,
				RawText: text[loc[0]:loc[1]],
				Start:   loc[0],
				End:     loc[1],
			})
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Start < tokens[j].Start
	})
	return tokens
}

// ParseUnitFamily scans text for a single unit family only.
func ParseUnitFamily(text string, unit Unit) []Token {
	tokens := make([]Token, 0)
	for _, t := range Parse(text) {
		if t.Unit == unit {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
