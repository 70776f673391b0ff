package IO

import (
	"strings"
	"unicode"
)

// Tokenizer splits raw text into tokens. The trainer only depends on this
// contract; word-level and BPE implementations are interchangeable.
type Tokenizer interface {
	Tokenize(text string) []string
}

// WordTokenizer lowercases, replaces non-ASCII characters with spaces, and
// splits on anything that is not a letter, digit, or apostrophe.
type WordTokenizer struct{}

func (WordTokenizer) Tokenize(text string) []string {
	// Lowercase & clean non-ASCII
	b := make([]rune, 0, len(text))
	for _, c := range text {
		if c >= 'A' && c <= 'Z' {
			c = c + 32
		}
		if c < 0x80 {
			b = append(b, c)
		} else {
			b = append(b, ' ')
		}
	}
	return strings.FieldsFunc(string(b), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
