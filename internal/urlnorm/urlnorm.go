// Package urlnorm computes stable URLs used as listing dedup keys.
package urlnorm

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var localeSegment = regexp.MustCompile(`^/[a-zA-Z]{2}(-[a-zA-Z]{2})?(/|$)`)

// trackingParams are dropped by exact name, utm_* by prefix.
var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
}

// Normalize returns URL without locale prefix, tracking parameters and trailing slash,
// with remaining query parameters sorted by key.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("can't parse url %q: %w", raw, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	path := u.EscapedPath()
	for loc := localeSegment.FindStringIndex(path); loc != nil; loc = localeSegment.FindStringIndex(path) {
		path = "/" + path[loc[1]:]
	}
	path = strings.TrimRight(path, "/")

	if err := setEscapedPath(u, path); err != nil {
		return "", fmt.Errorf("can't normalize path of %q: %w", raw, err)
	}

	u.RawQuery = sortedQuery(u.Query())
	u.ForceQuery = false

	return u.String(), nil
}

// CanonicalProductURL is Normalize without query string.
func CanonicalProductURL(raw string) (string, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("can't parse normalized url %q: %w", normalized, err)
	}
	u.RawQuery = ""
	u.ForceQuery = false

	return u.String(), nil
}

// Resolve returns ref resolved against base, or false when ref is unusable.
func Resolve(base *url.URL, ref string) (*url.URL, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(strings.ToLower(ref), "javascript:") ||
		strings.HasPrefix(strings.ToLower(ref), "mailto:") {
		return nil, false
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, false
	}

	return resolved, true
}

// Origin returns scheme and host of raw URL.
func Origin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("can't parse url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}

	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

func setEscapedPath(u *url.URL, escaped string) error {
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return err
	}
	u.Path = unescaped
	u.RawPath = ""
	if u.EscapedPath() != escaped {
		u.RawPath = escaped
	}
	return nil
}

func sortedQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for key := range query {
		lower := strings.ToLower(key)
		if _, ok := trackingParams[lower]; ok || strings.HasPrefix(lower, "utm_") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range query[key] {
			parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
		}
	}

	return strings.Join(parts, "&")
}
