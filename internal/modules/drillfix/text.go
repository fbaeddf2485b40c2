package drillfix

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize folds a sentence for comparison: typographic apostrophe to ',
// whitespace runs to one space, trimmed, lower-cased.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "’", "'")
	text = strings.Join(strings.Fields(text), " ")
	return cases.Lower(language.Und).String(text)
}

// HasLetters reports whether text has an ASCII letter or a Latin-1 letter.
func HasLetters(text string) bool {
	for _, r := range text {
		if isLatinLetter(r) {
			return true
		}
	}
	return false
}

func isLatinLetter(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 'À' && r <= 'Ö', r >= 'Ø' && r <= 'ö', r >= 'ø' && r <= 'ÿ':
		return true
	}
	return false
}

// Tokenize splits text into word and punctuation tokens:
//
//	token  := word ( apos word )* | punct
//	word   := wordch+
//	wordch := letter | number | '_'
//	apos   := ' | ’
//	punct  := . , ! ? ; : ( )
//
// Any other rune separates tokens and is dropped.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	rs := []rune(text)
	var tokens []string
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case isWordRune(r):
			j := i
			for {
				for j < len(rs) && isWordRune(rs[j]) {
					j++
				}
				// an apostrophe only joins two word runs
				if j+1 < len(rs) && isApostrophe(rs[j]) && isWordRune(rs[j+1]) {
					j++
					continue
				}
				break
			}
			tokens = append(tokens, string(rs[i:j]))
			i = j
		case isPunct(r):
			tokens = append(tokens, string(r))
			i++
		default:
			i++
		}
	}
	return tokens
}

// JoinTokens joins with single spaces and drops whitespace before punctuation.
func JoinTokens(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	joined := strings.Join(tokens, " ")
	var b strings.Builder
	b.Grow(len(joined))
	pending := 0
	spaceStart := 0
	for i, r := range joined {
		if unicode.IsSpace(r) {
			if pending == 0 {
				spaceStart = i
			}
			pending++
			continue
		}
		if pending > 0 && !isPunct(r) {
			b.WriteString(joined[spaceStart:i])
		}
		pending = 0
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', '(', ')':
		return true
	}
	return false
}
