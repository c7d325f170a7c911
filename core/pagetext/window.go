package pagetext

import "strings"

// DefaultWindowWords bounds a context window when no size is given.
const DefaultWindowWords = 512

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ContextWindow splits text into windows of at most maxWords words.
// Each window is a contiguous run of words joined by single spaces.
// maxWords <= 0 means DefaultWindowWords.
func ContextWindow(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultWindowWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var windows []string
	for i := 0; i < len(words); i += maxWords {
		end := min(i+maxWords, len(words))
		windows = append(windows, strings.Join(words[i:end], " "))
	}
	return windows
}

// PageWindow returns the text of the pages around number, at most radius
// pages on either side, in page order. It is the context handed to the
// assistant for the page being read.
func PageWindow(pages map[int]string, number, radius int) string {
	var parts []string
	for _, p := range Ordered(pages) {
		if p.Number >= number-radius && p.Number <= number+radius {
			parts = append(parts, strings.TrimSpace(p.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}
