package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantTitle  string
		wantAuthor string
	}{
		{
			name:       "title by author pipe site",
			raw:        "Foo Bar by Jane Doe | ExampleSite",
			wantTitle:  "Foo Bar",
			wantAuthor: "Jane Doe",
		},
		{
			name:       "case-insensitive separator",
			raw:        "Foo Bar BY Jane Doe",
			wantTitle:  "Foo Bar",
			wantAuthor: "Jane Doe",
		},
		{
			name:       "author cut at em dash",
			raw:        "Deep Work by Cal Newport — Blog",
			wantTitle:  "Deep Work",
			wantAuthor: "Cal Newport",
		},
		{
			name:       "site name only",
			raw:        "Article Title | Site Name",
			wantTitle:  "Article Title",
			wantAuthor: "",
		},
		{
			name:       "hyphen separator",
			raw:        "Article Title - Site Name",
			wantTitle:  "Article Title",
			wantAuthor: "",
		},
		{
			name:       "site first then title",
			raw:        "Site Name | Article Title by Jane",
			wantTitle:  "Site Name",
			wantAuthor: "Jane",
		},
		{
			name:       "plain title",
			raw:        "  Just A Title  ",
			wantTitle:  "Just A Title",
			wantAuthor: "",
		},
		{
			name:       "empty cleaned title reverts to raw",
			raw:        "| Only Site",
			wantTitle:  "| Only Site",
			wantAuthor: "",
		},
		{
			name:       "leading by reverts without author",
			raw:        " by Jane Doe",
			wantTitle:  "by Jane Doe",
			wantAuthor: "",
		},
		{
			name:       "rightmost by wins for the author",
			raw:        "Stand by Me by Rob Reiner",
			wantTitle:  "Stand",
			wantAuthor: "Rob Reiner",
		},
		{
			name:       "empty",
			raw:        "",
			wantTitle:  "",
			wantAuthor: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, author := CleanTitle(tt.raw)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantAuthor, author)
		})
	}
}

func TestCleanTitleIsFixedPoint(t *testing.T) {
	inputs := []string{
		"Foo Bar by Jane Doe | ExampleSite",
		"Stand by Me by Rob Reiner",
		"A by B by C by D",
		"| Only Site",
		" by Jane Doe | Site",
		"—",
		"Spider-Man: Far From Home",
		"Ünïcödé Tïtle — Sïte",
		"by",
		"  by  by  ",
		"Title |",
		"News - World - Europe by Reporter",
	}

	for _, raw := range inputs {
		once, _ := CleanTitle(raw)
		twice, _ := CleanTitle(once)
		assert.Equal(t, once, twice, "raw %q", raw)
	}
}
