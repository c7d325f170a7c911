package core

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseWebURL normalizes user input into an absolute http(s) URL.
// Input without a scheme gets "https://" prepended before validation.
func ParseWebURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, NewError(KindInvalidURL, ReasonNone, fmt.Errorf("empty URL"))
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	parsed, err := url.Parse(s)
	if err != nil {
		return nil, NewError(KindInvalidURL, ReasonNone, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, NewError(KindInvalidURL, ReasonNone, fmt.Errorf("missing scheme or host in %q", raw))
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, NewError(KindInvalidURL, ReasonNone, fmt.Errorf("unsupported scheme %q", parsed.Scheme))
	}
	return parsed, nil
}
