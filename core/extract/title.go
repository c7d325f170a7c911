package extract

import "strings"

// siteSeparators split a page title from the site or section name.
const siteSeparators = "|—-"

// CleanTitle splits a raw <title> into an article title and an author.
//
// The author is whatever follows the rightmost " by " (case-insensitive), cut at
// the first site separator. The title is what precedes it, cut at the first site
// separator. A title that would end up empty reverts to the trimmed raw title
// with no author. The returned title is a fixed point: cleaning it again
// returns it unchanged.
func CleanTitle(raw string) (title, author string) {
	s := strings.TrimSpace(raw)
	title, author = cleanOnce(s)
	if title == "" {
		return s, ""
	}

	// A title that still carries " by " would split again on a second pass.
	for {
		next, _ := cleanOnce(title)
		if next == "" || next == title {
			break
		}
		title = next
	}
	return title, author
}

func cleanOnce(s string) (title, author string) {
	title = s
	if i := lastIndexBy(title); i >= 0 {
		candidate := strings.TrimSpace(title[i+len(" by "):])
		if j := strings.IndexAny(candidate, siteSeparators); j >= 0 {
			candidate = strings.TrimSpace(candidate[:j])
		}
		author = candidate
		title = strings.TrimSpace(title[:i])
	}

	if j := strings.IndexAny(title, siteSeparators); j >= 0 {
		title = strings.TrimSpace(title[:j])
	}
	return title, author
}

// lastIndexBy finds the rightmost " by " ignoring ASCII case. The pattern is
// pure ASCII, so a byte scan never lands inside a multi-byte rune.
func lastIndexBy(s string) int {
	for i := len(s) - 4; i >= 0; i-- {
		if s[i] == ' ' && s[i+1]|0x20 == 'b' && s[i+2]|0x20 == 'y' && s[i+3] == ' ' {
			return i
		}
	}
	return -1
}
