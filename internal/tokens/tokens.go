// Package tokens estimates token counts for chunk size thresholds and
// prompt budgets.
package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// EncodingName is the BPE encoding used for counting.
const EncodingName = "cl100k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
)

// Count returns the number of tokens in text.
//
// Uses the cl100k_base encoding. When the encoding cannot be loaded (the
// BPE data is fetched on first use and may be unavailable offline), falls
// back to a whitespace split, which over-counts code and under-counts long
// words but keeps thresholds usable.
func Count(text string) int {
	once.Do(func() {
		e, err := tiktoken.GetEncoding(EncodingName)
		if err == nil {
			enc = e
		}
	})
	if enc == nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text whose token count does not
// exceed budget. Truncation happens at word boundaries.
func Truncate(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if Count(text) <= budget {
		return text
	}

	words := strings.Fields(text)
	lo, hi := 0, len(words)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if Count(strings.Join(words[:mid], " ")) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.Join(words[:lo], " ")
}
