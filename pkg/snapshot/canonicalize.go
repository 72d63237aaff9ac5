package snapshot

import (
	"fmt"
	"net/url"
	"strings"
)

// trackingParams are stripped during canonicalization; they vary run to run
// for the same logical content and would otherwise defeat dedup.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"ref":          {},
}

// Canonicalize normalizes a URL for dedup and trust-tier lookup: force
// https, strip tracking query parameters, strip a trailing slash.
// Canonicalize(Canonicalize(u)) == Canonicalize(u) for any valid u.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("snapshot: parse url: %w", err)
	}
	u.Scheme = "https"

	q := u.Query()
	for key := range q {
		if _, tracked := trackingParams[key]; tracked {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	return u.String(), nil
}

// Domain extracts the host component of a canonical URL, stripping a
// leading "www." so it matches the trust-tier override keys.
func Domain(canonicalURL string) (string, error) {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return "", fmt.Errorf("snapshot: parse url: %w", err)
	}
	return strings.TrimPrefix(u.Hostname(), "www."), nil
}
