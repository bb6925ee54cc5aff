// Package tokens estimates token counts for chunk size budgeting.
package tokens

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the tokeniser used for budgeting. It matches the OpenAI
// embedding models the pipeline targets by default.
const Encoding = "cl100k_base"

// Counter estimates how many tokens a text occupies. It uses tiktoken
// when the encoding can be loaded and falls back to a character
// heuristic otherwise, so chunk budgeting works offline.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter creates a counter. The encoding is loaded lazily on first
// use; construction never fails.
func NewCounter() *Counter {
	return &Counter{}
}

// Count returns the estimated token count for text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}

	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(Encoding)
		if err == nil {
			c.enc = enc
		}
	})

	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	return approximate(text)
}

// approximate estimates tokens without an encoding. English text runs
// close to 4 characters per token; whitespace-heavy text closer to one
// token per word. Take the larger so budgets stay conservative.
func approximate(text string) int {
	byChars := utf8.RuneCountInString(text) / 4
	byWords := len(strings.Fields(text))
	if byWords > byChars {
		return byWords
	}
	if byChars == 0 {
		return 1
	}
	return byChars
}
