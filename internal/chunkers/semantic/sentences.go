package semantic

import "unicode"

// sentence is a trimmed span of source text with its rune offsets.
type sentence struct {
	Text   string
	Offset int
	Length int
}

// splitSentences breaks text into sentence spans with rune offsets into the
// original text. Sentences end at terminal punctuation followed by
// whitespace or at line breaks, which keeps list items and headings
// separate sentences.
func splitSentences(text string) []sentence {
	runes := []rune(text)
	var out []sentence

	start := 0
	for i := 0; i < len(runes); i++ {
		end := false
		switch runes[i] {
		case '\n':
			end = true
		case '.', '!', '?':
			j := i
			for j+1 < len(runes) && isTerminal(runes[j+1]) {
				j++
			}
			if j+1 >= len(runes) || unicode.IsSpace(runes[j+1]) {
				i = j
				end = true
			}
		}
		if end {
			if s, ok := makeSentence(runes, start, i+1); ok {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s, ok := makeSentence(runes, start, len(runes)); ok {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// makeSentence trims surrounding whitespace from the span and reports
// false when nothing remains.
func makeSentence(runes []rune, start, end int) (sentence, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start >= end {
		return sentence{}, false
	}
	return sentence{
		Text:   string(runes[start:end]),
		Offset: start,
		Length: end - start,
	}, true
}

// joinSentences concatenates sentence texts with single spaces.
func joinSentences(ss []sentence) string {
	switch len(ss) {
	case 0:
		return ""
	case 1:
		return ss[0].Text
	}

	n := len(ss) - 1
	for _, s := range ss {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for i, s := range ss {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
