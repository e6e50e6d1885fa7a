package skills

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type span struct {
	start, end int
}

func (s span) contains(o span) bool {
	return s.start <= o.start && o.end <= s.end
}

func (s span) len() int {
	return s.end - s.start
}

// pattern matches one label as a whole word, case-insensitively. Words of a
// multi-word label may be separated by any run of whitespace. Boundaries
// are only enforced on sides where the label itself begins or ends with a
// word rune, so labels such as "C++" or "CI/CD" match as written.
type pattern struct {
	label     string
	re        *regexp.Regexp
	leftWord  bool
	rightWord bool
}

func newPattern(label string) *pattern {
	first, _ := utf8.DecodeRuneInString(label)
	last, _ := utf8.DecodeLastRuneInString(label)

	return &pattern{
		label:     label,
		re:        regexp.MustCompile(`(?i)` + labelExpr(label)),
		leftWord:  isWordRune(first),
		rightWord: isWordRune(last),
	}
}

func labelExpr(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

// find returns every boundary-respecting occurrence of the label in text,
// including overlapping ones.
func (p *pattern) find(text string) []span {
	var spans []span

	for pos := 0; pos < len(text); {
		loc := p.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}

		s := span{start: pos + loc[0], end: pos + loc[1]}
		if p.bounded(text, s) {
			spans = append(spans, s)
		}

		_, size := utf8.DecodeRuneInString(text[s.start:])
		pos = s.start + max(size, 1)
	}

	return spans
}

func (p *pattern) bounded(text string, s span) bool {
	if p.leftWord && s.start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:s.start])
		if isWordRune(before) {
			return false
		}
	}

	if p.rightWord && s.end < len(text) {
		after, _ := utf8.DecodeRuneInString(text[s.end:])
		if isWordRune(after) {
			return false
		}
	}

	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
